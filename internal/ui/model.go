//go:build linux
// +build linux

package ui

import (
	"context"
	"time"

	"lazyportlist/internal/backup"
	"lazyportlist/internal/editor"
	"lazyportlist/internal/firewalld"
	"lazyportlist/internal/gmp"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Backend is the manager API as the console uses it.
type Backend interface {
	editor.Backend
	ListPortLists(ctx context.Context, filter string) ([]gmp.PortList, error)
}

// ZoneSource supplies local firewalld ports for seeding. It is nil when
// firewalld is not reachable.
type ZoneSource interface {
	ListZones(permanent bool) ([]string, error)
	DefaultZone() (string, error)
	ZonePorts(zone string, permanent bool) (*firewalld.ZonePorts, error)
}

type Options struct {
	DryRun             bool
	NoColor            bool
	BackupBeforeCommit bool
	IdleTimeout        time.Duration
}

type focusArea int

const (
	focusLists focusArea = iota
	focusMain
)

type inputMode int

const (
	inputNone inputMode = iota
	inputAddRange
	inputEditName
	inputEditComment
	inputImportPath
	inputExportPath
	inputDeleteConfirm
	inputManualBackup
)

const eventBuffer = 64

var now = time.Now

type Model struct {
	ctx     context.Context
	backend Backend
	zones   ZoneSource
	editor  *editor.Controller
	events  chan editorEvent

	lists    []gmp.PortList
	selected int
	focus    focusArea

	rangeIndex  int
	editName    string
	editComment string

	helpMode bool

	zoneMode      bool
	zoneNames     []string
	zoneIndex     int
	zonePermanent bool
	zoneErr       error

	backupMode      bool
	backupItems     []backup.Backup
	backupIndex     int
	backupPreview   string
	backupErr       error
	backupDone      map[string]bool
	pendingMutation tea.Cmd

	dryRun             bool
	backupBeforeCommit bool
	idleTimeout        time.Duration
	lastInteraction    time.Time

	loading bool
	notice  string
	err     error

	width     int
	height    int
	spinner   spinner.Model
	input     textinput.Model
	inputMode inputMode
}

func NewModel(backend Backend, zones ZoneSource, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Line

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40
	ti.Prompt = ""

	events := make(chan editorEvent, eventBuffer)

	return Model{
		ctx:                context.Background(),
		backend:            backend,
		zones:              zones,
		editor:             editor.New(backend, newCallbacks(events)),
		events:             events,
		focus:              focusLists,
		loading:            true,
		spinner:            sp,
		input:              ti,
		inputMode:          inputNone,
		dryRun:             opts.DryRun,
		backupBeforeCommit: opts.BackupBeforeCommit,
		idleTimeout:        opts.IdleTimeout,
		lastInteraction:    now(),
		backupDone:         make(map[string]bool),
	}
}

func (m *Model) currentList() *gmp.PortList {
	if len(m.lists) == 0 || m.selected < 0 || m.selected >= len(m.lists) {
		return nil
	}
	return &m.lists[m.selected]
}

func (m *Model) editorOpen() bool {
	switch m.editor.Dialog() {
	case editor.DialogEditingList, editor.DialogAddingRange:
		return true
	default:
		return false
	}
}
