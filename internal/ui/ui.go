//go:build linux
// +build linux

package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func RunWithContext(ctx context.Context, backend Backend, zones ZoneSource, opts Options) error {
	if opts.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	model := NewModel(backend, zones, opts)
	model.ctx = ctx
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func Run(backend Backend, zones ZoneSource, opts Options) error {
	return RunWithContext(context.Background(), backend, zones, opts)
}
