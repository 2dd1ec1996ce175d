package editor

import (
	"fmt"

	"lazyportlist/internal/gmp"
)

type Op int

const (
	OpCreate Op = iota
	OpSave
	OpImport
	OpClone
	OpDelete
	OpDownload
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpSave:
		return "save"
	case OpImport:
		return "import"
	case OpClone:
		return "clone"
	case OpDelete:
		return "delete"
	case OpDownload:
		return "download"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Phase tells which part of a commit produced the result.
type Phase int

const (
	PhaseEntity Phase = iota
	PhaseRanges
)

type Download struct {
	Filename string
	Data     []byte
}

// Result is the outcome of one editor operation.
type Result struct {
	Op       Op
	Phase    Phase
	EntityID string
	Response *gmp.Response
	Download *Download
	Err      error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Callbacks are the caller's handlers. A nil handler drops its event,
// except for range failures of a commit, which Dispatch returns instead.
type Callbacks struct {
	OnCloned        func(*gmp.Response)
	OnCloneError    func(error)
	OnCreated       func(*gmp.Response)
	OnCreateError   func(error)
	OnDeleted       func(id string)
	OnDeleteError   func(error)
	OnDownloaded    func(Download)
	OnDownloadError func(error)
	OnInteraction   func()
	OnSaved         func(*gmp.Response)
	OnSaveError     func(error)
	OnImported      func(*gmp.Response)
	OnImportError   func(error)
}

func (cb Callbacks) Dispatch(res Result) error {
	if res.Err != nil {
		handler := cb.errorHandler(res.Op)
		if handler == nil {
			if res.Phase == PhaseRanges {
				return res.Err
			}
			return nil
		}
		handler(res.Err)
		return nil
	}

	switch res.Op {
	case OpCreate:
		if cb.OnCreated != nil {
			cb.OnCreated(res.Response)
		}
	case OpSave:
		if cb.OnSaved != nil {
			cb.OnSaved(res.Response)
		}
	case OpImport:
		if cb.OnImported != nil {
			cb.OnImported(res.Response)
		}
	case OpClone:
		if cb.OnCloned != nil {
			cb.OnCloned(res.Response)
		}
	case OpDelete:
		if cb.OnDeleted != nil {
			cb.OnDeleted(res.EntityID)
		}
	case OpDownload:
		if cb.OnDownloaded != nil && res.Download != nil {
			cb.OnDownloaded(*res.Download)
		}
	}
	return nil
}

func (cb Callbacks) errorHandler(op Op) func(error) {
	switch op {
	case OpCreate:
		return cb.OnCreateError
	case OpSave:
		return cb.OnSaveError
	case OpImport:
		return cb.OnImportError
	case OpClone:
		return cb.OnCloneError
	case OpDelete:
		return cb.OnDeleteError
	case OpDownload:
		return cb.OnDownloadError
	default:
		return nil
	}
}

func (cb Callbacks) interaction() {
	if cb.OnInteraction != nil {
		cb.OnInteraction()
	}
}
