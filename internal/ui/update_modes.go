//go:build linux
// +build linux

package ui

import (
	"lazyportlist/internal/backup"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleHelpMode(msg tea.Msg) (Model, tea.Cmd, bool) {
	if !m.helpMode {
		return m, nil, false
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch key.String() {
	case "?", "esc", "q":
		m.helpMode = false
	case "ctrl+c":
		return m, tea.Quit, true
	}
	return m, nil, true
}

func (m Model) handleBackupMode(msg tea.Msg) (Model, tea.Cmd, bool) {
	if !m.backupMode {
		return m, nil, false
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch key.String() {
	case "esc", "ctrl+r", "q":
		m.backupMode = false
		m.backupPreview = ""
		m.backupErr = nil
	case "ctrl+c":
		return m, tea.Quit, true
	case "j", "down":
		if m.backupIndex < len(m.backupItems)-1 {
			m.backupIndex++
			return m, m.previewSelectedBackup(), true
		}
	case "k", "up":
		if m.backupIndex > 0 {
			m.backupIndex--
			return m, m.previewSelectedBackup(), true
		}
	case "enter":
		return m, m.restoreSelectedBackup(), true
	}
	return m, nil, true
}

func (m Model) handleZoneMode(msg tea.Msg) (Model, tea.Cmd, bool) {
	if !m.zoneMode {
		return m, nil, false
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch key.String() {
	case "esc", "f", "q":
		m.zoneMode = false
		m.zoneErr = nil
	case "ctrl+c":
		return m, tea.Quit, true
	case "j", "down":
		if m.zoneIndex < len(m.zoneNames)-1 {
			m.zoneIndex++
		}
	case "k", "up":
		if m.zoneIndex > 0 {
			m.zoneIndex--
		}
	case "P":
		m.zoneIndex = 0
		return m, fetchZonesCmd(m.zones, !m.zonePermanent), true
	case "enter":
		if len(m.zoneNames) == 0 {
			return m, nil, true
		}
		m.loading = true
		return m, seedFromZoneCmd(m.zones, m.zoneNames[m.zoneIndex], m.zonePermanent), true
	}
	return m, nil, true
}

func (m Model) handleInputMode(msg tea.Msg) (Model, tea.Cmd, bool) {
	if m.inputMode == inputNone {
		return m, nil, false
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch key.String() {
	case "esc":
		m.cancelInput()
		return m, nil, true
	case "enter":
		return m, m.submitInput(), true
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, true
}

func (m *Model) currentBackup() *backup.Backup {
	if !m.backupMode || m.backupIndex < 0 || m.backupIndex >= len(m.backupItems) {
		return nil
	}
	return &m.backupItems[m.backupIndex]
}

func (m *Model) previewSelectedBackup() tea.Cmd {
	item := m.currentBackup()
	if item == nil {
		m.backupPreview = ""
		return nil
	}
	m.backupPreview = "Loading preview..."
	return previewBackupCmd(m.ctx, m.backend, *item)
}

func (m *Model) restoreSelectedBackup() tea.Cmd {
	item := m.currentBackup()
	if item == nil {
		return nil
	}
	if m.dryRun {
		m.setDryRunNotice("restore backup " + item.Path + " as a new port list")
		return nil
	}
	if err := m.editor.OpenImportDialog(); err != nil {
		m.backupErr = err
		return nil
	}
	m.loading = true
	m.backupErr = nil
	return restoreBackupCmd(m.ctx, m.editor, *item)
}
