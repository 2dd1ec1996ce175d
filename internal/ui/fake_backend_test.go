//go:build linux
// +build linux

package ui

import (
	"context"
	"fmt"
	"sync"

	"lazyportlist/internal/gmp"
)

type fakeBackend struct {
	mu sync.Mutex

	lists     map[string]*gmp.PortList
	order     []string
	saves     []gmp.PortListData
	creates   []gmp.PortListData
	imports   []gmp.ImportData
	rangeOps  int
	loggedOut bool
	nextID    int
	importErr error
}

func newFakeBackend(lists ...*gmp.PortList) *fakeBackend {
	f := &fakeBackend{lists: make(map[string]*gmp.PortList)}
	for _, pl := range lists {
		f.lists[pl.ID] = pl
		f.order = append(f.order, pl.ID)
	}
	return f
}

func (f *fakeBackend) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeBackend) ListPortLists(context.Context, string) ([]gmp.PortList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]gmp.PortList, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.lists[id])
	}
	return out, nil
}

func (f *fakeBackend) GetPortList(_ context.Context, id string) (*gmp.PortList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pl, ok := f.lists[id]
	if !ok {
		return nil, gmp.ErrNotFound
	}
	cp := *pl
	cp.PortRanges = append([]gmp.PortRange(nil), pl.PortRanges...)
	return &cp, nil
}

func (f *fakeBackend) CreatePortList(_ context.Context, data gmp.PortListData) (*gmp.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, data)
	return &gmp.Response{ID: f.newID("pl")}, nil
}

func (f *fakeBackend) SavePortList(_ context.Context, data gmp.PortListData) (*gmp.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, data)
	return &gmp.Response{ID: data.ID}, nil
}

func (f *fakeBackend) ClonePortList(context.Context, string) (*gmp.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &gmp.Response{ID: f.newID("clone")}, nil
}

func (f *fakeBackend) DeletePortList(context.Context, string) error {
	return nil
}

func (f *fakeBackend) ExportPortList(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pl, ok := f.lists[id]
	if !ok {
		return nil, gmp.ErrNotFound
	}
	return gmp.MarshalPortListXML(pl)
}

func (f *fakeBackend) ImportPortList(_ context.Context, data gmp.ImportData) (*gmp.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports = append(f.imports, data)
	if f.importErr != nil {
		return nil, f.importErr
	}
	return &gmp.Response{ID: f.newID("import")}, nil
}

func (f *fakeBackend) CreatePortRange(context.Context, gmp.CreatePortRangeRequest) (*gmp.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rangeOps++
	return &gmp.Response{ID: f.newID("range")}, nil
}

func (f *fakeBackend) DeletePortRange(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rangeOps++
	return nil
}

func (f *fakeBackend) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = true
}

func webList() *gmp.PortList {
	return &gmp.PortList{
		ID:       "pl1",
		Name:     "Web",
		Writable: true,
		Count:    gmp.PortCount{All: 2, TCP: 2},
		PortRanges: []gmp.PortRange{
			{ID: "r1", Start: 80, End: 80, Protocol: "tcp", EntityType: gmp.EntityTypePortRange},
			{ID: "r2", Start: 443, End: 443, Protocol: "tcp", EntityType: gmp.EntityTypePortRange},
		},
	}
}
