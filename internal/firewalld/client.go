//go:build linux
// +build linux

package firewalld

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	dbusInterface  = "org.fedoraproject.FirewallD1"
	dbusPath       = "/org/fedoraproject/FirewallD1"
	dbusConfigPath = "/org/fedoraproject/FirewallD1/config"
)

// Client reads zone configuration from firewalld. It never changes it.
type Client struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	version Version
}

// NewClient connects to the system bus and fails with ErrNotRunning when
// nothing owns the firewalld name.
func NewClient() (*Client, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	running, err := nameHasOwner(conn, dbusInterface)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("check firewalld owner: %w", err)
	}
	if !running {
		conn.Close()
		return nil, ErrNotRunning
	}

	c := &Client{conn: conn, obj: conn.Object(dbusInterface, dbusPath)}
	c.detectVersion()
	return c, nil
}

func nameHasOwner(conn *dbus.Conn, name string) (bool, error) {
	var owned bool
	err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, name).Store(&owned)
	return owned, err
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) Version() Version {
	return c.version
}

// errorKinds maps dbus error names onto sentinel errors. hints catch the
// same failures when they arrive as plain text.
var errorKinds = []struct {
	sentinel error
	names    []string
	hints    []string
}{
	{
		sentinel: ErrPermissionDenied,
		names: []string{
			"org.freedesktop.DBus.Error.AccessDenied",
			"org.fedoraproject.FirewallD1.AccessDenied",
			"org.fedoraproject.FirewallD1.NotAuthorized",
			"org.fedoraproject.FirewallD1.Error.AccessDenied",
			"org.fedoraproject.FirewallD1.Error.NotAuthorized",
		},
		hints: []string{"accessdenied", "permission denied", "not authorized", "notauthorized"},
	},
	{
		sentinel: ErrInvalidZone,
		names:    []string{"org.fedoraproject.FirewallD1.Exception.INVALID_ZONE", "org.fedoraproject.FirewallD1.Error.INVALID_ZONE"},
		hints:    []string{"invalid_zone", "invalid zone"},
	},
}

// classify wraps dbus failures with the matching sentinel error. Other
// errors pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var dbusErr *dbus.Error
	hasName := errors.As(err, &dbusErr)
	text := strings.ToLower(err.Error())
	for _, kind := range errorKinds {
		if hasName {
			for _, name := range kind.names {
				if dbusErr.Name == name {
					return fmt.Errorf("%w: %v", kind.sentinel, err)
				}
			}
		}
		for _, hint := range kind.hints {
			if strings.Contains(text, hint) {
				return fmt.Errorf("%w: %v", kind.sentinel, err)
			}
		}
	}
	return err
}

func (c *Client) call(method string, out any, args ...any) error {
	return c.callObject(c.obj, method, out, args...)
}

func (c *Client) callObject(obj dbus.BusObject, method string, out any, args ...any) error {
	slog.Debug("dbus call", "method", method, "args", args)

	call := obj.Call(method, 0, args...)
	if call.Err != nil {
		slog.Error("dbus call failed", "method", method, "error", call.Err)
		return fmt.Errorf("dbus %s: %w", method, call.Err)
	}
	if out == nil {
		return nil
	}
	if err := call.Store(out); err != nil {
		return fmt.Errorf("dbus store %s: %w", method, err)
	}
	return nil
}

// ListZones returns the runtime zones, or the permanent ones when asked.
func (c *Client) ListZones(permanent bool) ([]string, error) {
	var zones []string
	var err error
	switch {
	case permanent && !c.version.dictSettings():
		return nil, ErrUnsupportedAPI
	case permanent:
		err = c.callObject(c.conn.Object(dbusInterface, dbusConfigPath), dbusInterface+".config.getZoneNames", &zones)
	case c.version.dictSettings():
		err = c.call(dbusInterface+".zone.getZones", &zones)
	default:
		err = c.call(dbusInterface+".getZones", &zones)
	}
	if err != nil {
		return nil, classify(err)
	}
	slog.Debug("zones listed", "permanent", permanent, "count", len(zones))
	return zones, nil
}

func (c *Client) DefaultZone() (string, error) {
	var zone string
	if err := c.call(dbusInterface+".getDefaultZone", &zone); err != nil {
		return "", classify(err)
	}
	return zone, nil
}
