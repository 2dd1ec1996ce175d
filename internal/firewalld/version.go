//go:build linux
// +build linux

package firewalld

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
)

// Version is the daemon's release number.
type Version struct {
	Major int
	Minor int
	Patch int
}

// modern is assumed when the daemon does not report a usable version.
var modern = Version{Major: 1}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// dictSettings reports whether zone settings come as a dict
// (getZoneSettings2, config getSettings2) rather than the old tuple calls.
func (v Version) dictSettings() bool {
	return v.Major >= 1
}

// ParseVersion reads "major[.minor[.patch]]". Trailing text after the
// numbers of a part, as in "1.3.0-rc1", is ignored.
func ParseVersion(raw string) (Version, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Version{}, fmt.Errorf("empty version")
	}
	parts := strings.SplitN(raw, ".", 3)
	nums := make([]int, 3)
	for i, part := range parts {
		digits := part
		if end := strings.IndexFunc(part, func(r rune) bool { return r < '0' || r > '9' }); end >= 0 {
			digits = part[:end]
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return Version{}, fmt.Errorf("parse version %q: %w", raw, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (c *Client) detectVersion() {
	var v dbus.Variant
	if err := c.call("org.freedesktop.DBus.Properties.Get", &v, dbusInterface, "version"); err != nil {
		slog.Warn("firewalld version unknown, assuming dict settings", "error", err)
		c.version = modern
		return
	}
	raw, _ := v.Value().(string)
	parsed, err := ParseVersion(raw)
	if err != nil {
		slog.Warn("firewalld version unparsable, assuming dict settings", "version", raw, "error", err)
		c.version = modern
		return
	}
	c.version = parsed
	slog.Debug("firewalld detected", "version", parsed.String(), "dict_settings", parsed.dictSettings())
}
