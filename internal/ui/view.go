//go:build linux
// +build linux

package ui

import (
	"fmt"
	"strings"

	"lazyportlist/internal/gmp"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	addedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	deletedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Strikethrough(true)
	inputStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	statusStyle   = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("250")).Padding(0, 1)
	sidebarStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	mainStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

func (m Model) View() string {
	sidebarWidth := 28
	if m.width > 0 {
		if m.width/4 > sidebarWidth {
			sidebarWidth = m.width / 4
		}
		if sidebarWidth > 40 {
			sidebarWidth = 40
		}
	}

	mainWidth := 80
	if m.width > 0 {
		mainWidth = m.width - sidebarWidth - 1
		if mainWidth < 40 {
			mainWidth = 40
		}
	}

	sidebar := renderSidebar(m, sidebarWidth)
	main := renderMain(m, mainWidth)
	content := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)

	return lipgloss.JoinVertical(lipgloss.Left, content, renderStatus(m))
}

func renderSidebar(m Model, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Port Lists"))
	b.WriteString("\n")

	if len(m.lists) == 0 {
		b.WriteString(dimStyle.Render("No port lists"))
		return sidebarStyle.Width(width).Render(b.String())
	}

	for i, pl := range m.lists {
		prefix := "  "
		line := fmt.Sprintf("%s (%d)", pl.Name, pl.Count.All)
		if i == m.selected {
			prefix = "› "
			if m.focus == focusLists {
				line = selectedStyle.Render(line)
			} else {
				line = titleStyle.Render(line)
			}
		}
		b.WriteString(prefix + line + "\n")
	}

	return sidebarStyle.Width(width).Render(b.String())
}

func renderMain(m Model, width int) string {
	var b strings.Builder

	header := "Port List"
	switch {
	case m.helpMode:
		header = "Help"
	case m.backupMode:
		header = "Backups"
	case m.zoneMode:
		header = "Seed from firewalld"
	case m.editorOpen():
		header = m.editor.Title()
	}
	if m.loading {
		header = fmt.Sprintf("%s %s Loading...", header, m.spinner.View())
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	switch {
	case m.helpMode:
		renderHelp(&b)
	case m.backupMode:
		renderBackups(&b, m)
	case m.zoneMode:
		renderZones(&b, m)
	case m.editorOpen():
		renderEditor(&b, m)
	default:
		renderDetails(&b, m.currentList())
	}

	if m.inputMode != inputNone {
		b.WriteString("\n")
		b.WriteString(renderInput(m))
	}

	return mainStyle.Width(width).Render(b.String())
}

func renderDetails(b *strings.Builder, pl *gmp.PortList) {
	if pl == nil {
		b.WriteString(dimStyle.Render("No port list selected"))
		return
	}
	fmt.Fprintf(b, "Name:    %s\n", pl.Name)
	fmt.Fprintf(b, "Comment: %s\n", emptyAsNone(pl.Comment))
	fmt.Fprintf(b, "Owner:   %s\n", emptyAsNone(pl.Owner))
	fmt.Fprintf(b, "Ports:   %d (tcp %d, udp %d)\n", pl.Count.All, pl.Count.TCP, pl.Count.UDP)
	if pl.InUse {
		b.WriteString(dimStyle.Render("In use by a target"))
		b.WriteString("\n")
	}
	if !pl.Writable {
		b.WriteString(dimStyle.Render("Read-only"))
		b.WriteString("\n")
	}
}

func renderEditor(b *strings.Builder, m Model) {
	fmt.Fprintf(b, "Name:    %s\n", emptyAsNone(m.editName))
	fmt.Fprintf(b, "Comment: %s\n\n", emptyAsNone(m.editComment))

	ranges := m.editor.Ranges()
	b.WriteString(titleStyle.Render("Port Ranges"))
	b.WriteString("\n")
	if len(ranges) == 0 {
		b.WriteString(dimStyle.Render("No port ranges"))
		b.WriteString("\n")
	}
	for i, r := range ranges {
		prefix := "  "
		line := r.String()
		if r.IsTmp {
			line = addedStyle.Render("+ " + line)
		} else {
			line = "  " + line
		}
		if i == m.rangeIndex && m.focus == focusMain {
			prefix = "› "
			line = selectedStyle.Render(line)
		}
		b.WriteString(prefix + line + "\n")
	}

	if deleted := m.editor.DeletedRanges(); len(deleted) > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Pending deletion"))
		b.WriteString("\n")
		for _, r := range deleted {
			b.WriteString("  " + deletedStyle.Render("- "+r.String()) + "\n")
		}
	}
}

func renderBackups(b *strings.Builder, m Model) {
	if m.backupErr != nil {
		b.WriteString(errorStyle.Render("Error: " + m.backupErr.Error()))
		b.WriteString("\n\n")
	}
	if len(m.backupItems) == 0 {
		b.WriteString(dimStyle.Render("No backups"))
		return
	}
	for i, item := range m.backupItems {
		line := item.Time.Format("2006-01-02 15:04:05")
		if item.Description != "" {
			line += "  " + item.Description
		}
		prefix := "  "
		if i == m.backupIndex {
			prefix = "› "
			line = selectedStyle.Render(line)
		}
		b.WriteString(prefix + line + "\n")
	}
	if m.backupPreview != "" {
		b.WriteString("\n")
		b.WriteString(m.backupPreview)
		b.WriteString("\n")
	}
}

func renderZones(b *strings.Builder, m Model) {
	mode := "runtime"
	if m.zonePermanent {
		mode = "permanent"
	}
	b.WriteString(dimStyle.Render("Configuration: " + mode))
	b.WriteString("\n\n")
	if m.zoneErr != nil {
		b.WriteString(errorStyle.Render("Error: " + m.zoneErr.Error()))
		b.WriteString("\n")
		return
	}
	if len(m.zoneNames) == 0 {
		b.WriteString(dimStyle.Render("No zones"))
		return
	}
	for i, zone := range m.zoneNames {
		prefix := "  "
		line := zone
		if i == m.zoneIndex {
			prefix = "› "
			line = selectedStyle.Render(zone)
		}
		b.WriteString(prefix + line + "\n")
	}
}

func renderHelp(b *strings.Builder) {
	b.WriteString(`Port lists
  j/k       move            enter/e  edit
  n         new list        i        import XML
  ctrl+e    export XML      C        clone
  x         delete          b        backup now
  ctrl+r    backups         r        refresh
  tab       focus           q        quit

Editor
  a         add range       d        remove range
  N         name            c        comment
  f         seed from firewalld zone
  s         save            esc      discard and close

Backups
  enter     restore as new list
`)
}

func renderInput(m Model) string {
	label := ""
	switch m.inputMode {
	case inputAddRange:
		label = "Add range: "
	case inputEditName:
		label = "Name: "
	case inputEditComment:
		label = "Comment: "
	case inputImportPath:
		label = "Import file: "
	case inputExportPath:
		label = "Export to: "
	case inputDeleteConfirm:
		label = "Delete: "
	case inputManualBackup:
		label = "Backup note: "
	}
	return inputStyle.Render(label) + m.input.View()
}

func renderStatus(m Model) string {
	mode := ""
	if m.dryRun {
		mode = " | DRY-RUN"
	}
	var keys string
	switch {
	case m.backupMode:
		keys = "j/k: move  enter: restore  esc: close"
	case m.zoneMode:
		keys = "j/k: move  enter: seed  P: runtime/permanent  esc: close"
	case m.editorOpen():
		keys = fmt.Sprintf("a: add  d: remove  N: name  c: comment  f: firewalld  s: save  esc: close | +%d -%d",
			len(m.editor.CreatedRanges()), len(m.editor.DeletedRanges()))
	default:
		keys = "n: new  e: edit  i: import  ctrl+e: export  C: clone  x: delete  ctrl+r: backups  ?: help  q: quit"
	}
	return statusStyle.Render(keys + mode)
}
