//go:build linux
// +build linux

package ui

import (
	"context"
	"strings"
	"testing"

	"lazyportlist/internal/backup"
	"lazyportlist/internal/editor"

	tea "github.com/charmbracelet/bubbletea"
)

func TestHandleHelpMode(t *testing.T) {
	m := Model{helpMode: true}

	next, cmd, handled := m.handleHelpMode(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !handled {
		t.Fatalf("expected help mode to handle key")
	}
	if next.helpMode {
		t.Fatalf("help mode should be disabled after '?'")
	}
	if cmd != nil {
		t.Fatalf("expected nil command on help close")
	}
}

func TestHandleHelpModeIgnoresOtherMessages(t *testing.T) {
	m := Model{helpMode: true}
	if _, _, handled := m.handleHelpMode(tea.WindowSizeMsg{Width: 80}); handled {
		t.Fatalf("window size should pass through help mode")
	}
}

func TestHandleBackupModeDryRunRestore(t *testing.T) {
	m := NewModel(newFakeBackend(), nil, Options{DryRun: true})
	m.backupMode = true
	m.backupItems = []backup.Backup{{Path: "/tmp/portlist-pl1.xml", PortListID: "pl1"}}

	next, cmd, handled := m.handleBackupMode(tea.KeyMsg{Type: tea.KeyEnter})
	if !handled {
		t.Fatalf("expected backup mode to handle enter")
	}
	if cmd != nil {
		t.Fatalf("expected nil command for dry-run restore")
	}
	if !strings.HasPrefix(next.notice, "Dry-run") {
		t.Fatalf("expected dry-run notice, got %q", next.notice)
	}
	if next.editor.Dialog() != editor.DialogClosed {
		t.Fatalf("dry-run restore must not open the import dialog")
	}
}

func TestHandleBackupModeMoveRequestsPreview(t *testing.T) {
	m := NewModel(newFakeBackend(), nil, Options{})
	m.backupMode = true
	m.backupItems = []backup.Backup{{Path: "a"}, {Path: "b"}}

	next, cmd, _ := m.handleBackupMode(tea.KeyMsg{Type: tea.KeyDown})
	if next.backupIndex != 1 {
		t.Fatalf("backup index = %d, want 1", next.backupIndex)
	}
	if cmd == nil {
		t.Fatalf("expected preview command after move")
	}
}

func TestHandleZoneModeTogglePermanent(t *testing.T) {
	m := Model{zoneMode: true, zoneNames: []string{"public", "work"}, zoneIndex: 1}

	next, cmd, handled := m.handleZoneMode(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'P'}})
	if !handled || cmd == nil {
		t.Fatalf("expected zone refetch on P")
	}
	if next.zoneIndex != 0 {
		t.Fatalf("zone index should reset, got %d", next.zoneIndex)
	}
	msg, ok := cmd().(zonesMsg)
	if !ok {
		t.Fatalf("expected zonesMsg")
	}
	if !msg.permanent || msg.err == nil {
		t.Fatalf("nil zone source should fail for permanent request, got %+v", msg)
	}
}

func TestHandleInputModeEscClosesAddRange(t *testing.T) {
	m := NewModel(newFakeBackend(), nil, Options{})
	if err := m.editor.OpenEditor(context.Background(), nil); err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}
	m.startAddRange()
	if m.editor.Dialog() != editor.DialogAddingRange {
		t.Fatalf("dialog = %s, want adding range", m.editor.Dialog())
	}

	next, _, handled := m.handleInputMode(tea.KeyMsg{Type: tea.KeyEsc})
	if !handled {
		t.Fatalf("expected input mode to handle esc")
	}
	if next.inputMode != inputNone {
		t.Fatalf("input mode should reset on esc")
	}
	if next.editor.Dialog() != editor.DialogEditingList {
		t.Fatalf("dialog = %s, want editing", next.editor.Dialog())
	}
}

func TestHandleInputModeEscClosesImport(t *testing.T) {
	m := NewModel(newFakeBackend(), nil, Options{})
	m.startImport()
	if m.editor.Dialog() != editor.DialogImporting {
		t.Fatalf("dialog = %s, want importing", m.editor.Dialog())
	}
	next, _, _ := m.handleInputMode(tea.KeyMsg{Type: tea.KeyEsc})
	if next.editor.Dialog() != editor.DialogClosed {
		t.Fatalf("dialog = %s, want closed", next.editor.Dialog())
	}
}
