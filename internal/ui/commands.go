//go:build linux
// +build linux

package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lazyportlist/internal/backup"
	"lazyportlist/internal/editor"
	"lazyportlist/internal/firewalld"
	"lazyportlist/internal/gmp"
	"lazyportlist/internal/validation"

	tea "github.com/charmbracelet/bubbletea"
)

var errNoFirewalld = errors.New("firewalld is not available")

type portListsMsg struct {
	lists []gmp.PortList
	err   error
}

type editorOpenedMsg struct {
	id  string
	err error
}

// editorResultMsg follows every editor operation. err is only set when
// Dispatch had no handler for a range failure.
type editorResultMsg struct {
	res editor.Result
	err error
}

type backupCreatedMsg struct {
	id     string
	backup backup.Backup
	manual bool
	err    error
}

type backupsMsg struct {
	id    string
	items []backup.Backup
	err   error
}

type backupPreviewMsg struct {
	path    string
	preview string
	err     error
}

type zonesMsg struct {
	zones       []string
	defaultZone string
	permanent   bool
	err         error
}

type seedMsg struct {
	zone     string
	ranges   []validation.Range
	rejected []firewalld.Rejected
	warnings []string
	err      error
}

type idleTickMsg struct{}

type idleLogoutMsg struct{}

func fetchPortListsCmd(ctx context.Context, backend Backend) tea.Cmd {
	return func() tea.Msg {
		lists, err := backend.ListPortLists(ctx, "")
		return portListsMsg{lists: lists, err: err}
	}
}

func openEditorCmd(ctx context.Context, ctrl *editor.Controller, pl gmp.PortList) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.OpenEditor(ctx, &pl)
		return editorOpenedMsg{id: pl.ID, err: err}
	}
}

func runEditorCmd(ctrl *editor.Controller, op func() editor.Result) tea.Cmd {
	return func() tea.Msg {
		res := op()
		return editorResultMsg{res: res, err: ctrl.Dispatch(res)}
	}
}

func saveCmd(ctx context.Context, ctrl *editor.Controller, data gmp.PortListData) tea.Cmd {
	return runEditorCmd(ctrl, func() editor.Result {
		return ctrl.Save(ctx, data)
	})
}

// importFileCmd expects the import dialog to be open already.
func importFileCmd(ctx context.Context, ctrl *editor.Controller, path string) tea.Cmd {
	return runEditorCmd(ctrl, func() editor.Result {
		data, err := os.ReadFile(path)
		if err != nil {
			return editor.Result{Op: editor.OpImport, Err: fmt.Errorf("read %s: %w", path, err)}
		}
		return ctrl.Import(ctx, gmp.ImportData{Filename: filepath.Base(path), XML: data})
	})
}

func exportCmd(ctx context.Context, ctrl *editor.Controller, id, path string) tea.Cmd {
	return runEditorCmd(ctrl, func() editor.Result {
		res := ctrl.Download(ctx, id)
		if !res.OK() {
			return res
		}
		if err := writeExport(path, res.Download.Data); err != nil {
			return editor.Result{Op: editor.OpDownload, EntityID: id, Err: err}
		}
		res.Download.Filename = path
		return res
	})
}

func cloneCmd(ctx context.Context, ctrl *editor.Controller, id string) tea.Cmd {
	return runEditorCmd(ctrl, func() editor.Result {
		return ctrl.Clone(ctx, id)
	})
}

func deleteCmd(ctx context.Context, ctrl *editor.Controller, id string) tea.Cmd {
	return runEditorCmd(ctrl, func() editor.Result {
		return ctrl.Delete(ctx, id)
	})
}

// restoreBackupCmd re-imports a backup as a new port list. The import
// dialog must be open; it is closed again when the restore fails.
func restoreBackupCmd(ctx context.Context, ctrl *editor.Controller, item backup.Backup) tea.Cmd {
	return runEditorCmd(ctrl, func() editor.Result {
		data, err := backup.ImportData(item)
		if err != nil {
			ctrl.CloseImportDialog()
			return editor.Result{Op: editor.OpImport, Err: err}
		}
		res := ctrl.Import(ctx, data)
		if !res.OK() {
			ctrl.CloseImportDialog()
		}
		return res
	})
}

// backupCmd snapshots a port list. loaded is used as is when set; otherwise
// the full list is fetched so the backup carries its ranges.
func backupCmd(ctx context.Context, backend Backend, id string, loaded *gmp.PortList, description string, manual bool) tea.Cmd {
	return func() tea.Msg {
		pl := loaded
		if pl == nil {
			var err error
			pl, err = backend.GetPortList(ctx, id)
			if err != nil {
				return backupCreatedMsg{id: id, manual: manual, err: err}
			}
		}
		b, err := backup.CreatePortListBackupWithDescription(pl, description)
		return backupCreatedMsg{id: id, backup: b, manual: manual, err: err}
	}
}

func fetchBackupsCmd(id string) tea.Cmd {
	return func() tea.Msg {
		items, err := backup.ListBackups(id)
		return backupsMsg{id: id, items: items, err: err}
	}
}

func previewBackupCmd(ctx context.Context, backend Backend, item backup.Backup) tea.Cmd {
	return func() tea.Msg {
		current, err := backend.GetPortList(ctx, item.PortListID)
		if err != nil {
			slog.Debug("backup preview without current list", "id", item.PortListID, "error", err)
			current = nil
		}
		preview, err := buildBackupPreview(item, current)
		return backupPreviewMsg{path: item.Path, preview: preview, err: err}
	}
}

func fetchZonesCmd(zones ZoneSource, permanent bool) tea.Cmd {
	return func() tea.Msg {
		if zones == nil {
			return zonesMsg{permanent: permanent, err: errNoFirewalld}
		}
		names, err := zones.ListZones(permanent)
		if err != nil {
			return zonesMsg{permanent: permanent, err: err}
		}
		def, err := zones.DefaultZone()
		if err != nil {
			slog.Debug("default zone unavailable", "error", err)
		}
		return zonesMsg{zones: names, defaultZone: def, permanent: permanent}
	}
}

func seedFromZoneCmd(zones ZoneSource, zone string, permanent bool) tea.Cmd {
	return func() tea.Msg {
		if zones == nil {
			return seedMsg{zone: zone, err: errNoFirewalld}
		}
		zp, err := zones.ZonePorts(zone, permanent)
		if err != nil {
			return seedMsg{zone: zone, err: err}
		}
		ports, warnings := zp.AllPorts()
		ranges, rejected := firewalld.Ranges(ports)
		return seedMsg{zone: zone, ranges: ranges, rejected: rejected, warnings: warnings}
	}
}

func idleTickCmd(timeout time.Duration) tea.Cmd {
	if timeout <= 0 {
		return nil
	}
	interval := timeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return idleTickMsg{}
	})
}

func logoutCmd(backend Backend) tea.Cmd {
	return func() tea.Msg {
		if l, ok := backend.(interface{ Logout() }); ok {
			l.Logout()
		}
		return idleLogoutMsg{}
	}
}

func writeExport(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
