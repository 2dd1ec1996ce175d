package backup

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"lazyportlist/internal/gmp"
	"lazyportlist/internal/validation"
)

const (
	timeFormat   = "20060102-150405"
	keepBackups  = 10
	backupFolder = ".config/lazyportlist/backups"
	maxDescLen   = 40

	namePrefix = "portlist-"
	nameExt    = ".xml"
	descSep    = "__"
)

var now = time.Now

var errEmptyPath = errors.New("backup path is empty")

// Backup is one XML snapshot of a port list on disk.
type Backup struct {
	Path        string
	PortListID  string
	Time        time.Time
	Size        int64
	Description string
}

// Dir is the snapshot directory. Under sudo it resolves to the invoking
// user's home, not root's.
func Dir() (string, error) {
	if u := os.Getenv("SUDO_USER"); u != "" && u != "root" {
		if acct, err := user.Lookup(u); err == nil && acct.HomeDir != "" {
			return filepath.Join(acct.HomeDir, backupFolder), nil
		}
	}
	home := os.Getenv("HOME")
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(home, backupFolder), nil
}

// fileName encodes the list id, snapshot time and optional description.
func fileName(id string, ts time.Time, desc string) string {
	name := namePrefix + id + "-" + ts.Format(timeFormat)
	if desc != "" {
		name += descSep + url.PathEscape(desc)
	}
	return name + nameExt
}

// parseFileName is the inverse of fileName for a known list id.
func parseFileName(id, name string) (time.Time, string, bool) {
	rest, ok := strings.CutPrefix(name, namePrefix+id+"-")
	if !ok {
		return time.Time{}, "", false
	}
	rest, ok = strings.CutSuffix(rest, nameExt)
	if !ok {
		return time.Time{}, "", false
	}
	stamp, desc, hasDesc := strings.Cut(rest, descSep)
	ts, err := time.ParseInLocation(timeFormat, stamp, time.Local)
	if err != nil {
		return time.Time{}, "", false
	}
	if hasDesc {
		if decoded, err := url.PathUnescape(desc); err == nil {
			desc = decoded
		}
	}
	return ts, desc, true
}

func CreatePortListBackup(pl *gmp.PortList) (Backup, error) {
	return CreatePortListBackupWithDescription(pl, "")
}

// CreatePortListBackupWithDescription snapshots pl as export XML. Only the
// newest keepBackups snapshots of a list are kept.
func CreatePortListBackupWithDescription(pl *gmp.PortList, description string) (Backup, error) {
	if pl == nil {
		return Backup{}, errors.New("port list is nil")
	}
	if err := validation.IsValidEntityID(pl.ID); err != nil {
		return Backup{}, fmt.Errorf("backup port list %q: %w", pl.ID, err)
	}
	data, err := gmp.MarshalPortListXML(pl)
	if err != nil {
		return Backup{}, err
	}
	dir, err := Dir()
	if err != nil {
		return Backup{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Backup{}, fmt.Errorf("create backup dir: %w", err)
	}

	b := Backup{
		PortListID:  pl.ID,
		Time:        now().Truncate(time.Second),
		Size:        int64(len(data)),
		Description: truncateDescription(strings.TrimSpace(description), maxDescLen),
	}
	b.Path = filepath.Join(dir, fileName(b.PortListID, b.Time, b.Description))
	if err := writeFileAtomic(b.Path, data); err != nil {
		return Backup{}, err
	}
	slog.Info("backup created", "port_list", pl.ID, "dest", b.Path, "ranges", len(pl.PortRanges))

	if removed, err := prune(pl.ID, keepBackups); err != nil {
		slog.Warn("backup prune failed", "port_list", pl.ID, "error", err)
	} else if removed > 0 {
		slog.Debug("old backups pruned", "port_list", pl.ID, "removed", removed)
	}
	return b, nil
}

// ListBackups returns the snapshots of one port list, newest first.
func ListBackups(id string) ([]Backup, error) {
	if err := validation.IsValidEntityID(id); err != nil {
		return nil, err
	}
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []Backup
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, desc, ok := parseFileName(id, entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, Backup{
			Path:        filepath.Join(dir, entry.Name()),
			PortListID:  id,
			Time:        ts,
			Size:        info.Size(),
			Description: desc,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Time.After(items[j].Time)
	})
	return items, nil
}

// Read parses a snapshot back into a port list.
func Read(b Backup) (*gmp.PortList, error) {
	_, pl, err := load(b)
	return pl, err
}

// ImportData turns a snapshot into an import payload. Restoring goes
// through the manager's import, which creates a new list from the file.
func ImportData(b Backup) (gmp.ImportData, error) {
	data, _, err := load(b)
	if err != nil {
		return gmp.ImportData{}, err
	}
	return gmp.ImportData{Filename: filepath.Base(b.Path), XML: data}, nil
}

func load(b Backup) ([]byte, *gmp.PortList, error) {
	if b.Path == "" {
		return nil, nil, errEmptyPath
	}
	data, err := os.ReadFile(b.Path)
	if err != nil {
		return nil, nil, err
	}
	pl, err := gmp.ParsePortListXML(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse backup %s: %w", filepath.Base(b.Path), err)
	}
	return data, pl, nil
}

// writeFileAtomic leaves either the old file or the complete new one.
func writeFileAtomic(dest string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".portlist-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// prune removes all but the newest keep snapshots of a list.
func prune(id string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	items, err := ListBackups(id)
	if err != nil || len(items) <= keep {
		return 0, err
	}
	removed := 0
	var errs []error
	for _, b := range items[keep:] {
		if err := os.Remove(b.Path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func truncateDescription(desc string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(desc) <= max {
		return desc
	}
	return string([]rune(desc)[:max])
}
