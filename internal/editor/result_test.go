package editor

import (
	"testing"

	"lazyportlist/internal/gmp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchRoutesRangeFailureByMode(t *testing.T) {
	var saveErr, createErr error
	cb := Callbacks{
		OnSaveError:   func(err error) { saveErr = err },
		OnCreateError: func(err error) { createErr = err },
	}

	require.NoError(t, cb.Dispatch(Result{Op: OpSave, Phase: PhaseRanges, Err: errBackend}))
	assert.ErrorIs(t, saveErr, errBackend)
	assert.NoError(t, createErr)

	require.NoError(t, cb.Dispatch(Result{Op: OpCreate, Phase: PhaseRanges, Err: errBackend}))
	assert.ErrorIs(t, createErr, errBackend)
}

func TestDispatchRethrowsUnhandledRangeFailure(t *testing.T) {
	err := Callbacks{}.Dispatch(Result{Op: OpSave, Phase: PhaseRanges, Err: errBackend})
	assert.ErrorIs(t, err, errBackend)

	err = Callbacks{}.Dispatch(Result{Op: OpSave, Phase: PhaseEntity, Err: errBackend})
	assert.NoError(t, err, "entity failures without a handler are dropped")

	err = Callbacks{}.Dispatch(Result{Op: OpImport, Err: errBackend})
	assert.NoError(t, err)
}

func TestDispatchSuccessHandlers(t *testing.T) {
	var got []string
	cb := Callbacks{
		OnSaved:      func(*gmp.Response) { got = append(got, "saved") },
		OnCreated:    func(*gmp.Response) { got = append(got, "created") },
		OnImported:   func(*gmp.Response) { got = append(got, "imported") },
		OnCloned:     func(*gmp.Response) { got = append(got, "cloned") },
		OnDeleted:    func(id string) { got = append(got, "deleted "+id) },
		OnDownloaded: func(d Download) { got = append(got, "downloaded "+d.Filename) },
	}

	results := []Result{
		{Op: OpSave},
		{Op: OpCreate},
		{Op: OpImport},
		{Op: OpClone},
		{Op: OpDelete, EntityID: "pl1"},
		{Op: OpDownload, Download: &Download{Filename: "portlist-pl1.xml"}},
	}
	for _, res := range results {
		require.NoError(t, cb.Dispatch(res))
	}

	assert.Equal(t, []string{"saved", "created", "imported", "cloned", "deleted pl1", "downloaded portlist-pl1.xml"}, got)
}

func TestDispatchErrorHandlers(t *testing.T) {
	var got []string
	record := func(name string) func(error) {
		return func(error) { got = append(got, name) }
	}
	cb := Callbacks{
		OnCloneError:    record("clone"),
		OnDeleteError:   record("delete"),
		OnDownloadError: record("download"),
		OnImportError:   record("import"),
	}

	for _, op := range []Op{OpClone, OpDelete, OpDownload, OpImport} {
		require.NoError(t, cb.Dispatch(Result{Op: op, Err: errBackend}))
	}
	assert.Equal(t, []string{"clone", "delete", "download", "import"}, got)
}

func TestStagingCompactsTombstones(t *testing.T) {
	s := newStaging()
	n := 0
	token := func() string {
		n++
		return string(rune('a' + n))
	}
	s.seed([]gmp.PortRange{
		{ID: "r1", Start: 1, End: 1, Protocol: "tcp"},
		{ID: "r2", Start: 2, End: 2, Protocol: "tcp"},
		{ID: "r3", Start: 3, End: 3, Protocol: "tcp"},
	}, token)

	for _, r := range s.list()[:2] {
		_, err := s.remove(r.Token)
		require.NoError(t, err)
	}

	assert.Len(t, s.order, 1, "order should be compacted")
	assert.Len(t, s.pendingDeleted(), 2)
	require.Len(t, s.list(), 1)
	assert.Equal(t, "r3", s.list()[0].ID)
}
