//go:build linux
// +build linux

package ui

import (
	"errors"
	"fmt"
	"strings"

	"lazyportlist/internal/editor"
	"lazyportlist/internal/gmp"
	"lazyportlist/internal/validation"

	tea "github.com/charmbracelet/bubbletea"
)

var errNameMismatch = errors.New("typed name does not match the port list")

func (m *Model) beginInput(mode inputMode, placeholder, value string) tea.Cmd {
	m.inputMode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.err = nil
	return m.input.Focus()
}

func (m *Model) clearInput() {
	m.inputMode = inputNone
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Model) cancelInput() {
	switch m.inputMode {
	case inputAddRange:
		m.editor.CloseAddRangeDialog()
	case inputImportPath:
		m.editor.CloseImportDialog()
	}
	m.clearInput()
}

func (m *Model) startNew() tea.Cmd {
	if err := m.editor.OpenEditor(m.ctx, nil); err != nil {
		m.err = err
		return nil
	}
	m.editName = ""
	m.editComment = ""
	m.rangeIndex = 0
	m.focus = focusMain
	m.notice = ""
	return m.startEditName()
}

func (m *Model) startEdit() tea.Cmd {
	pl := m.currentList()
	if pl == nil {
		return nil
	}
	m.loading = true
	m.err = nil
	return openEditorCmd(m.ctx, m.editor, *pl)
}

func (m *Model) startAddRange() tea.Cmd {
	if err := m.editor.OpenAddRangeDialog(); err != nil {
		m.err = err
		return nil
	}
	return m.beginInput(inputAddRange, "start-end/proto (e.g. 1-1024/tcp)", "")
}

func (m *Model) startEditName() tea.Cmd {
	return m.beginInput(inputEditName, "port list name", m.editName)
}

func (m *Model) startEditComment() tea.Cmd {
	return m.beginInput(inputEditComment, "comment", m.editComment)
}

func (m *Model) startImport() tea.Cmd {
	if m.dryRun {
		m.setDryRunNotice("import a port list")
		return nil
	}
	if err := m.editor.OpenImportDialog(); err != nil {
		m.err = err
		return nil
	}
	return m.beginInput(inputImportPath, "path to port list XML", "")
}

func (m *Model) startExport() tea.Cmd {
	pl := m.currentList()
	if pl == nil {
		return nil
	}
	return m.beginInput(inputExportPath, "export path", editor.DownloadFilename(pl.ID))
}

func (m *Model) startClone() tea.Cmd {
	pl := m.currentList()
	if pl == nil {
		return nil
	}
	if m.dryRun {
		m.setDryRunNotice(fmt.Sprintf("clone port list %q", pl.Name))
		return nil
	}
	m.loading = true
	m.err = nil
	return cloneCmd(m.ctx, m.editor, pl.ID)
}

func (m *Model) startDelete() tea.Cmd {
	pl := m.currentList()
	if pl == nil {
		return nil
	}
	if pl.InUse {
		m.err = fmt.Errorf("port list %q is in use by a target", pl.Name)
		return nil
	}
	return m.beginInput(inputDeleteConfirm, "type "+pl.Name+" to confirm", "")
}

func (m *Model) startBackups() tea.Cmd {
	pl := m.currentList()
	if pl == nil {
		return nil
	}
	m.backupMode = true
	m.backupItems = nil
	m.backupIndex = 0
	m.backupPreview = ""
	m.backupErr = nil
	return fetchBackupsCmd(pl.ID)
}

func (m *Model) startManualBackup() tea.Cmd {
	if m.currentList() == nil {
		return nil
	}
	return m.beginInput(inputManualBackup, "backup description (optional)", "")
}

func (m *Model) startZoneSeed() tea.Cmd {
	if m.zones == nil {
		m.err = errNoFirewalld
		return nil
	}
	m.zoneMode = true
	m.zoneIndex = 0
	m.zoneErr = nil
	return fetchZonesCmd(m.zones, m.zonePermanent)
}

func (m *Model) submitInput() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())
	switch m.inputMode {
	case inputAddRange:
		in, err := parseRangeInput(value)
		if err != nil {
			m.err = err
			return nil
		}
		r, err := m.editor.AddRange(in)
		if err != nil {
			m.err = err
			return nil
		}
		m.clearInput()
		m.notice = "Staged " + r.String()
		m.rangeIndex = max(len(m.editor.Ranges())-1, 0)
	case inputEditName:
		if err := validation.IsValidPortListName(value); err != nil {
			m.err = err
			return nil
		}
		m.editName = value
		m.clearInput()
	case inputEditComment:
		m.editComment = value
		m.clearInput()
	case inputImportPath:
		if value == "" {
			m.err = errors.New("import path is empty")
			return nil
		}
		m.clearInput()
		m.loading = true
		return importFileCmd(m.ctx, m.editor, expandHome(value))
	case inputExportPath:
		pl := m.currentList()
		m.clearInput()
		if pl == nil || value == "" {
			return nil
		}
		m.loading = true
		return exportCmd(m.ctx, m.editor, pl.ID, expandHome(value))
	case inputDeleteConfirm:
		pl := m.currentList()
		if pl == nil {
			m.clearInput()
			return nil
		}
		if value != pl.Name {
			m.err = errNameMismatch
			return nil
		}
		m.clearInput()
		if m.dryRun {
			m.setDryRunNotice(fmt.Sprintf("delete port list %q", pl.Name))
			return nil
		}
		m.loading = true
		return deleteCmd(m.ctx, m.editor, pl.ID)
	case inputManualBackup:
		pl := m.currentList()
		m.clearInput()
		if pl == nil {
			return nil
		}
		m.loading = true
		return backupCmd(m.ctx, m.backend, pl.ID, nil, value, true)
	}
	return nil
}

// commit saves the open editor. Existing lists get one backup per run
// before their first commit.
func (m *Model) commit() tea.Cmd {
	name := strings.TrimSpace(m.editName)
	if err := validation.IsValidPortListName(name); err != nil {
		m.err = err
		return nil
	}
	data := gmp.PortListData{Name: name, Comment: m.editComment}
	pl := m.editor.PortList()
	if pl != nil {
		data.ID = pl.ID
	}
	if m.dryRun {
		m.setDryRunNotice(describeCommit(data, m.editor.CreatedRanges(), m.editor.DeletedRanges()))
		return nil
	}

	m.err = nil
	m.notice = ""
	m.loading = true
	next := saveCmd(m.ctx, m.editor, data)
	if pl == nil {
		return next
	}
	return m.maybeBackup(pl, next)
}

func (m *Model) maybeBackup(pl *gmp.PortList, next tea.Cmd) tea.Cmd {
	if !m.backupBeforeCommit || m.backupDone[pl.ID] {
		return next
	}
	m.pendingMutation = next
	return backupCmd(m.ctx, m.backend, pl.ID, pl, "before commit", false)
}
