//go:build linux
// +build linux

package ui

import (
	"log/slog"

	"lazyportlist/internal/editor"
	"lazyportlist/internal/gmp"

	tea "github.com/charmbracelet/bubbletea"
)

type eventKind int

const (
	eventSaved eventKind = iota
	eventCreated
	eventImported
	eventCloned
	eventDeleted
	eventDownloaded
	eventFailed
	eventInteraction
)

// editorEvent carries one editor callback into the update loop.
type editorEvent struct {
	kind     eventKind
	op       editor.Op
	resp     *gmp.Response
	id       string
	download editor.Download
	err      error
}

type editorEventMsg struct {
	event editorEvent
}

type eventsClosedMsg struct{}

// newCallbacks turns editor callbacks into events on ch. Sends never block:
// callbacks run inside commands and a full buffer only loses notices.
func newCallbacks(ch chan<- editorEvent) editor.Callbacks {
	send := func(ev editorEvent) {
		select {
		case ch <- ev:
		default:
			slog.Warn("editor event dropped", "kind", ev.kind, "op", ev.op)
		}
	}
	success := func(kind eventKind, op editor.Op) func(*gmp.Response) {
		return func(resp *gmp.Response) {
			ev := editorEvent{kind: kind, op: op, resp: resp}
			if resp != nil {
				ev.id = resp.ID
			}
			send(ev)
		}
	}
	failed := func(op editor.Op) func(error) {
		return func(err error) {
			send(editorEvent{kind: eventFailed, op: op, err: err})
		}
	}

	return editor.Callbacks{
		OnSaved:       success(eventSaved, editor.OpSave),
		OnSaveError:   failed(editor.OpSave),
		OnCreated:     success(eventCreated, editor.OpCreate),
		OnCreateError: failed(editor.OpCreate),
		OnImported:    success(eventImported, editor.OpImport),
		OnImportError: failed(editor.OpImport),
		OnCloned:      success(eventCloned, editor.OpClone),
		OnCloneError:  failed(editor.OpClone),
		OnDeleted: func(id string) {
			send(editorEvent{kind: eventDeleted, op: editor.OpDelete, id: id})
		},
		OnDeleteError: failed(editor.OpDelete),
		OnDownloaded: func(d editor.Download) {
			send(editorEvent{kind: eventDownloaded, op: editor.OpDownload, download: d})
		},
		OnDownloadError: failed(editor.OpDownload),
		OnInteraction: func() {
			send(editorEvent{kind: eventInteraction})
		},
	}
}

func listenEventsCmd(ch <-chan editorEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return editorEventMsg{event: ev}
	}
}
