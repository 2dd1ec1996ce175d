package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"lazyportlist/internal/gmp"
	"lazyportlist/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const titleNameLimit = 60

type DialogState int

const (
	DialogClosed DialogState = iota
	DialogEditingList
	DialogImporting
	DialogAddingRange
)

func (d DialogState) String() string {
	switch d {
	case DialogClosed:
		return "closed"
	case DialogEditingList:
		return "editing"
	case DialogImporting:
		return "importing"
	case DialogAddingRange:
		return "adding range"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidTransition = errors.New("dialog transition not allowed")
	ErrEditorClosed      = errors.New("port list editor is not open")
	ErrCommitInProgress  = errors.New("a commit of this port list is already running")
)

// Backend is the part of the manager API the editor drives.
type Backend interface {
	GetPortList(ctx context.Context, id string) (*gmp.PortList, error)
	CreatePortList(ctx context.Context, data gmp.PortListData) (*gmp.Response, error)
	SavePortList(ctx context.Context, data gmp.PortListData) (*gmp.Response, error)
	ClonePortList(ctx context.Context, id string) (*gmp.Response, error)
	DeletePortList(ctx context.Context, id string) error
	ExportPortList(ctx context.Context, id string) ([]byte, error)
	ImportPortList(ctx context.Context, data gmp.ImportData) (*gmp.Response, error)
	CreatePortRange(ctx context.Context, req gmp.CreatePortRangeRequest) (*gmp.Response, error)
	DeletePortRange(ctx context.Context, id string) error
}

// SaveFunc persists the parent port list once all range operations are done.
type SaveFunc func(ctx context.Context, data gmp.PortListData) (*gmp.Response, error)

// RangeInput is a candidate range as typed into the add-range dialog.
type RangeInput struct {
	Start    string
	End      string
	Protocol string
}

// Controller owns one port list editing session and the dialog state around
// it. It is safe for concurrent use; commit goroutines update staging
// through it.
type Controller struct {
	backend   Backend
	callbacks Callbacks
	newToken  func() string

	mu         sync.Mutex
	dialog     DialogState
	title      string
	portList   *gmp.PortList
	staged     staging
	committing bool
}

func New(backend Backend, callbacks Callbacks) *Controller {
	return &Controller{
		backend:   backend,
		callbacks: callbacks,
		newToken:  uuid.NewString,
		staged:    newStaging(),
	}
}

func (c *Controller) Dialog() DialogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialog
}

func (c *Controller) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// PortList returns the entity being edited, nil in create mode.
func (c *Controller) PortList() *gmp.PortList {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.portList == nil {
		return nil
	}
	pl := *c.portList
	return &pl
}

func (c *Controller) Ranges() []Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged.list()
}

func (c *Controller) CreatedRanges() []Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged.pendingCreated()
}

func (c *Controller) DeletedRanges() []Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged.pendingDeleted()
}

// OpenEditor starts a session. A nil port list opens the create dialog;
// otherwise the full entity is fetched first.
func (c *Controller) OpenEditor(ctx context.Context, pl *gmp.PortList) error {
	if state := c.Dialog(); state != DialogClosed {
		return fmt.Errorf("open editor while %s: %w", state, ErrInvalidTransition)
	}

	var fetched *gmp.PortList
	if pl != nil {
		var err error
		fetched, err = c.backend.GetPortList(ctx, pl.ID)
		if err != nil {
			return fmt.Errorf("load port list %s: %w", pl.ID, err)
		}
	}

	c.mu.Lock()
	if c.dialog != DialogClosed {
		state := c.dialog
		c.mu.Unlock()
		return fmt.Errorf("open editor while %s: %w", state, ErrInvalidTransition)
	}
	if fetched != nil {
		c.portList = fetched
		c.staged.seed(fetched.PortRanges, c.newToken)
		c.title = "Edit Port List " + shorten(fetched.Name, titleNameLimit)
	} else {
		c.portList = nil
		c.staged.seed(nil, c.newToken)
		c.title = "New Port List"
	}
	c.dialog = DialogEditingList
	c.mu.Unlock()

	slog.Debug("port list editor opened", "title", c.Title())
	c.callbacks.interaction()
	return nil
}

// CloseEditor hides the dialog. Staged ranges are left as they are; the
// next OpenEditor replaces them.
func (c *Controller) CloseEditor() {
	c.mu.Lock()
	if c.dialog == DialogEditingList || c.dialog == DialogAddingRange {
		c.dialog = DialogClosed
	}
	c.mu.Unlock()
	c.callbacks.interaction()
}

func (c *Controller) OpenImportDialog() error {
	err := c.transition(DialogClosed, DialogImporting)
	c.callbacks.interaction()
	return err
}

func (c *Controller) CloseImportDialog() {
	_ = c.transition(DialogImporting, DialogClosed)
	c.callbacks.interaction()
}

func (c *Controller) OpenAddRangeDialog() error {
	err := c.transition(DialogEditingList, DialogAddingRange)
	c.callbacks.interaction()
	return err
}

func (c *Controller) CloseAddRangeDialog() {
	_ = c.transition(DialogAddingRange, DialogEditingList)
	c.callbacks.interaction()
}

func (c *Controller) transition(from, to DialogState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog != from {
		return fmt.Errorf("%s -> %s while %s: %w", from, to, c.dialog, ErrInvalidTransition)
	}
	c.dialog = to
	return nil
}

// AddRange validates a candidate against the staged ranges of the same
// protocol and stages it as a temporary range. Nothing is sent to the
// backend until commit.
func (c *Controller) AddRange(in RangeInput) (Range, error) {
	candidate, err := validation.NewRange(in.Start, in.End, in.Protocol)
	if err != nil {
		return Range{}, err
	}

	c.mu.Lock()
	if c.dialog != DialogEditingList && c.dialog != DialogAddingRange {
		c.mu.Unlock()
		return Range{}, ErrEditorClosed
	}
	if err := validation.CheckOverlap(candidate, c.staged.spans()); err != nil {
		c.mu.Unlock()
		return Range{}, err
	}

	r := &Range{
		Token:      c.newToken(),
		Start:      candidate.Start,
		End:        candidate.End,
		Protocol:   candidate.Protocol,
		EntityType: gmp.EntityTypePortRange,
		IsTmp:      true,
	}
	c.staged.add(r)
	closed := c.dialog == DialogAddingRange
	if closed {
		c.dialog = DialogEditingList
	}
	staged := *r
	c.mu.Unlock()

	slog.Debug("port range staged", "range", staged.String(), "token", staged.Token)
	if closed {
		c.callbacks.interaction()
	}
	return staged, nil
}

// RemoveRange drops a range from the session. A temporary range vanishes;
// a persisted one is queued for deletion at commit.
func (c *Controller) RemoveRange(token string) (Range, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, err := c.staged.remove(token)
	if err != nil {
		return Range{}, err
	}
	slog.Debug("port range removed", "range", r.String(), "tmp", r.IsTmp)
	return r, nil
}

// Save commits the session through the create or save command, chosen by
// whether data carries an id. Staged ranges of a new list travel in the
// create payload since there is no list to attach them to yet.
func (c *Controller) Save(ctx context.Context, data gmp.PortListData) Result {
	if data.ID != "" {
		return c.Commit(ctx, c.backend.SavePortList, data)
	}
	if err := c.beginCommit(); err != nil {
		return Result{Op: OpCreate, Phase: PhaseRanges, Err: err}
	}
	defer c.endCommit()

	c.mu.Lock()
	if data.PortRange == "" {
		data.PortRange = gmp.FormatPortRangeSpec(c.staged.portRanges())
	}
	c.mu.Unlock()

	slog.Info("creating port list", "name", data.Name, "port_range", data.PortRange)
	resp, err := c.backend.CreatePortList(ctx, data)
	if err == nil {
		c.mu.Lock()
		c.staged.foldCreated()
		c.mu.Unlock()
	}
	c.CloseEditor()
	return entityResult(OpCreate, data.ID, resp, err)
}

// Commit sends every outstanding range create and delete concurrently and
// waits for all of them. Only when all succeeded is save called. Ranges
// confirmed by the backend leave the pending sets right away, so a retry
// after a partial failure only repeats what is still outstanding. A second
// call while one is running fails with ErrCommitInProgress.
func (c *Controller) Commit(ctx context.Context, save SaveFunc, data gmp.PortListData) Result {
	op := OpSave
	if data.ID == "" {
		op = OpCreate
	}
	if err := c.beginCommit(); err != nil {
		return Result{Op: op, Phase: PhaseRanges, EntityID: data.ID, Err: err}
	}
	defer c.endCommit()

	c.mu.Lock()
	created := c.staged.pendingCreated()
	deleted := c.staged.pendingDeleted()
	c.mu.Unlock()

	slog.Info("committing port list", "id", data.ID, "create", len(created), "delete", len(deleted))

	if err := c.commitRanges(ctx, data.ID, created, deleted); err != nil {
		slog.Error("port range commit failed", "id", data.ID, "error", err)
		return Result{Op: op, Phase: PhaseRanges, EntityID: data.ID, Err: err}
	}

	resp, err := save(ctx, data)
	c.CloseEditor()
	return entityResult(op, data.ID, resp, err)
}

func (c *Controller) beginCommit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.committing {
		return ErrCommitInProgress
	}
	c.committing = true
	return nil
}

func (c *Controller) endCommit() {
	c.mu.Lock()
	c.committing = false
	c.mu.Unlock()
}

func entityResult(op Op, id string, resp *gmp.Response, err error) Result {
	res := Result{Op: op, Phase: PhaseEntity, EntityID: id, Response: resp, Err: err}
	if err == nil && resp != nil && resp.ID != "" {
		res.EntityID = resp.ID
	}
	return res
}

func (c *Controller) commitRanges(ctx context.Context, listID string, created, deleted []Range) error {
	var g errgroup.Group
	for _, r := range created {
		r := r
		g.Go(func() error {
			resp, err := c.backend.CreatePortRange(ctx, gmp.CreatePortRangeRequest{
				PortListID: listID,
				Start:      r.Start,
				End:        r.End,
				PortType:   r.Protocol,
				Comment:    r.Comment,
			})
			if err != nil {
				return fmt.Errorf("create port range %s: %w", r.String(), err)
			}
			id := ""
			if resp != nil {
				id = resp.ID
			}
			c.mu.Lock()
			c.staged.confirmCreated(r.Token, id)
			c.mu.Unlock()
			return nil
		})
	}
	for _, r := range deleted {
		r := r
		g.Go(func() error {
			if err := c.backend.DeletePortRange(ctx, r.ID); err != nil {
				return fmt.Errorf("delete port range %s: %w", r.String(), err)
			}
			c.mu.Lock()
			c.staged.confirmDeleted(r.Token)
			c.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// Import hands the payload to the backend. The import dialog closes only on
// success.
func (c *Controller) Import(ctx context.Context, data gmp.ImportData) Result {
	resp, err := c.backend.ImportPortList(ctx, data)
	if err != nil {
		return Result{Op: OpImport, Err: err}
	}
	c.CloseImportDialog()
	res := Result{Op: OpImport, Response: resp}
	if resp != nil {
		res.EntityID = resp.ID
	}
	return res
}

func (c *Controller) Clone(ctx context.Context, id string) Result {
	resp, err := c.backend.ClonePortList(ctx, id)
	res := Result{Op: OpClone, EntityID: id, Response: resp, Err: err}
	if err == nil && resp != nil && resp.ID != "" {
		res.EntityID = resp.ID
	}
	return res
}

// Delete moves a port list to the trashcan.
func (c *Controller) Delete(ctx context.Context, id string) Result {
	err := c.backend.DeletePortList(ctx, id)
	return Result{Op: OpDelete, EntityID: id, Err: err}
}

func (c *Controller) Download(ctx context.Context, id string) Result {
	data, err := c.backend.ExportPortList(ctx, id)
	if err != nil {
		return Result{Op: OpDownload, EntityID: id, Err: err}
	}
	return Result{
		Op:       OpDownload,
		EntityID: id,
		Download: &Download{Filename: DownloadFilename(id), Data: data},
	}
}

// Dispatch routes a result to the registered callbacks.
func (c *Controller) Dispatch(res Result) error {
	return c.callbacks.Dispatch(res)
}

func DownloadFilename(id string) string {
	return "portlist-" + id + ".xml"
}

func shorten(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}
