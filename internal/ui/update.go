//go:build linux
// +build linux

package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"lazyportlist/internal/editor"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchPortListsCmd(m.ctx, m.backend),
		listenEventsCmd(m.events),
		idleTickCmd(m.idleTimeout),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		m.lastInteraction = now()
	}
	if next, cmd, handled := m.handleHelpMode(msg); handled {
		return next, cmd
	}
	if next, cmd, handled := m.handleBackupMode(msg); handled {
		return next, cmd
	}
	if next, cmd, handled := m.handleZoneMode(msg); handled {
		return next, cmd
	}
	if next, cmd, handled := m.handleInputMode(msg); handled {
		return next, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.editorOpen() {
			if next, cmd, handled := m.handleEditorKeys(msg); handled {
				return next, cmd
			}
		}
		return m.handleListKeys(msg)
	case portListsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.lists = msg.lists
		if m.selected >= len(m.lists) {
			m.selected = max(len(m.lists)-1, 0)
		}
		return m, nil
	case editorOpenedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.notice = ""
		m.rangeIndex = 0
		m.focus = focusMain
		if pl := m.editor.PortList(); pl != nil {
			m.editName = pl.Name
			m.editComment = pl.Comment
		}
		return m, nil
	case editorResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = fmt.Errorf("%s: %w", msg.res.Op, msg.err)
		}
		m.syncDialog()
		return m, nil
	case editorEventMsg:
		cmd := m.handleEditorEvent(msg.event)
		return m, tea.Batch(cmd, listenEventsCmd(m.events))
	case eventsClosedMsg:
		return m, nil
	case backupCreatedMsg:
		return m.handleBackupCreated(msg)
	case backupsMsg:
		if msg.err != nil {
			m.backupErr = msg.err
			return m, nil
		}
		m.backupItems = msg.items
		m.backupIndex = 0
		m.backupErr = nil
		return m, m.previewSelectedBackup()
	case backupPreviewMsg:
		if item := m.currentBackup(); item == nil || item.Path != msg.path {
			return m, nil
		}
		if msg.err != nil {
			m.backupErr = msg.err
			m.backupPreview = ""
			return m, nil
		}
		m.backupPreview = msg.preview
		return m, nil
	case zonesMsg:
		if msg.err != nil {
			m.zoneErr = msg.err
			return m, nil
		}
		m.zoneNames = msg.zones
		m.zonePermanent = msg.permanent
		m.zoneErr = nil
		m.zoneIndex = 0
		for i, name := range m.zoneNames {
			if name == msg.defaultZone {
				m.zoneIndex = i
				break
			}
		}
		return m, nil
	case seedMsg:
		m.loading = false
		m.zoneMode = false
		if msg.err != nil {
			m.err = fmt.Errorf("seed from zone %s: %w", msg.zone, msg.err)
			return m, nil
		}
		m.applySeed(msg)
		return m, nil
	case idleTickMsg:
		if m.idleTimeout <= 0 {
			return m, nil
		}
		if now().Sub(m.lastInteraction) >= m.idleTimeout {
			slog.Info("idle timeout reached, logging out", "timeout", m.idleTimeout)
			m.editor.CloseEditor()
			m.editor.CloseImportDialog()
			m.notice = "Logged out after inactivity"
			return m, logoutCmd(m.backend)
		}
		return m, idleTickCmd(m.idleTimeout)
	case idleLogoutMsg:
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.helpMode = true
		return m, nil
	case "j", "down":
		if m.selected < len(m.lists)-1 {
			m.selected++
		}
		return m, nil
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "r":
		m.loading = true
		m.err = nil
		return m, fetchPortListsCmd(m.ctx, m.backend)
	case "n":
		return m, m.startNew()
	case "e", "enter":
		return m, m.startEdit()
	case "i":
		return m, m.startImport()
	case "ctrl+e":
		return m, m.startExport()
	case "C":
		return m, m.startClone()
	case "x":
		return m, m.startDelete()
	case "ctrl+r":
		return m, m.startBackups()
	case "b":
		return m, m.startManualBackup()
	}
	return m, nil
}

// handleEditorKeys owns the keyboard while a list is open. Only quit and
// help fall through to the list keys.
func (m Model) handleEditorKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q", "?":
		return m, nil, false
	case "esc":
		m.editor.CloseEditor()
		m.focus = focusLists
		m.err = nil
		m.notice = "Editor closed, staged changes discarded"
		return m, nil, true
	case "tab":
		if m.focus == focusMain {
			m.focus = focusLists
		} else {
			m.focus = focusMain
		}
		return m, nil, true
	case "j", "down":
		if m.rangeIndex < len(m.editor.Ranges())-1 {
			m.rangeIndex++
		}
		return m, nil, true
	case "k", "up":
		if m.rangeIndex > 0 {
			m.rangeIndex--
		}
		return m, nil, true
	case "a":
		return m, m.startAddRange(), true
	case "d":
		m.removeSelectedRange()
		return m, nil, true
	case "N":
		return m, m.startEditName(), true
	case "c":
		return m, m.startEditComment(), true
	case "f":
		return m, m.startZoneSeed(), true
	case "s":
		if m.loading {
			return m, nil, true
		}
		return m, m.commit(), true
	}
	return m, nil, true
}

func (m *Model) handleEditorEvent(ev editorEvent) tea.Cmd {
	switch ev.kind {
	case eventInteraction:
		m.lastInteraction = now()
		return nil
	case eventFailed:
		m.err = fmt.Errorf("%s failed: %w", ev.op, ev.err)
		return nil
	case eventSaved:
		m.notice = "Port list saved"
	case eventCreated:
		m.notice = fmt.Sprintf("Port list created (%s)", ev.id)
	case eventImported:
		m.notice = fmt.Sprintf("Port list imported (%s)", ev.id)
		m.backupMode = false
	case eventCloned:
		m.notice = fmt.Sprintf("Port list cloned (%s)", ev.id)
	case eventDeleted:
		m.notice = fmt.Sprintf("Port list %s moved to trashcan", ev.id)
	case eventDownloaded:
		m.notice = "Exported to " + ev.download.Filename
		return nil
	}
	m.err = nil
	m.loading = true
	return fetchPortListsCmd(m.ctx, m.backend)
}

func (m Model) handleBackupCreated(msg backupCreatedMsg) (tea.Model, tea.Cmd) {
	next := m.pendingMutation
	m.pendingMutation = nil
	if msg.err != nil {
		m.loading = false
		m.err = fmt.Errorf("backup failed: %w", msg.err)
		if next != nil {
			m.notice = "Commit aborted, backup could not be written"
		}
		return m, nil
	}
	if !msg.manual {
		m.backupDone[msg.id] = true
	}
	m.notice = "Backup saved: " + msg.backup.Path
	if next == nil {
		m.loading = false
	}
	return m, next
}

// syncDialog brings input state back in line after the editor changed its
// dialog from inside a command.
func (m *Model) syncDialog() {
	switch m.editor.Dialog() {
	case editor.DialogClosed:
		if m.focus == focusMain {
			m.focus = focusLists
		}
		if m.inputMode == inputImportPath || m.inputMode == inputAddRange {
			m.clearInput()
		}
	case editor.DialogImporting:
		// A failed import keeps the dialog open; ask for the path again.
		if m.inputMode == inputNone && !m.backupMode {
			err := m.err
			m.beginInput(inputImportPath, "path to port list XML", "")
			m.err = err
		}
	}
	if n := len(m.editor.Ranges()); m.rangeIndex >= n {
		m.rangeIndex = max(n-1, 0)
	}
}

func (m *Model) removeSelectedRange() {
	ranges := m.editor.Ranges()
	if len(ranges) == 0 || m.rangeIndex >= len(ranges) {
		return
	}
	r, err := m.editor.RemoveRange(ranges[m.rangeIndex].Token)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	if r.IsTmp {
		m.notice = "Unstaged " + r.String()
	} else {
		m.notice = "Marked " + r.String() + " for deletion"
	}
	if m.rangeIndex >= len(ranges)-1 && m.rangeIndex > 0 {
		m.rangeIndex--
	}
}

func (m *Model) applySeed(msg seedMsg) {
	added, skipped := 0, 0
	for _, r := range msg.ranges {
		_, err := m.editor.AddRange(editor.RangeInput{
			Start:    strconv.Itoa(r.Start),
			End:      strconv.Itoa(r.End),
			Protocol: r.Protocol,
		})
		if err != nil {
			if !errors.Is(err, editor.ErrEditorClosed) {
				slog.Debug("seed range skipped", "range", r.String(), "error", err)
			}
			skipped++
			continue
		}
		added++
	}
	for _, rej := range msg.rejected {
		slog.Debug("firewalld port rejected", "zone", msg.zone, "port", rej.String())
	}
	for _, w := range msg.warnings {
		slog.Warn("firewalld service lookup", "zone", msg.zone, "warning", w)
	}
	skipped += len(msg.rejected)
	m.err = nil
	m.notice = fmt.Sprintf("Staged %d range(s) from zone %s", added, msg.zone)
	if skipped > 0 {
		m.notice += fmt.Sprintf(", %d skipped", skipped)
	}
}
