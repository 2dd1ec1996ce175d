package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lazyportlist/internal/gmp"
)

type fakeBackend struct {
	mu sync.Mutex

	lists map[string]*gmp.PortList

	createRangeCalls []gmp.CreatePortRangeRequest
	deleteRangeCalls []string
	saveCalls        []gmp.PortListData
	createListCalls  []gmp.PortListData
	importCalls      []gmp.ImportData
	cloneCalls       []string
	deleteListCalls  []string

	failCreateStart map[int]error
	failDeleteID    map[string]error
	getErr          error
	saveErr         error
	importErr       error
	cloneErr        error
	deleteListErr   error
	exportErr       error
	nextID          int

	// rangeEntered and rangeGate, when set, hold CreatePortRange open after
	// the call is recorded.
	rangeEntered chan struct{}
	rangeGate    chan struct{}
}

func newFakeBackend(lists ...*gmp.PortList) *fakeBackend {
	f := &fakeBackend{
		lists:           make(map[string]*gmp.PortList),
		failCreateStart: make(map[int]error),
		failDeleteID:    make(map[string]error),
	}
	for _, pl := range lists {
		f.lists[pl.ID] = pl
	}
	return f
}

func (f *fakeBackend) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeBackend) GetPortList(_ context.Context, id string) (*gmp.PortList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
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
	f.createListCalls = append(f.createListCalls, data)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &gmp.Response{Action: "Create Port List", ID: f.id("pl"), Message: "OK"}, nil
}

func (f *fakeBackend) SavePortList(_ context.Context, data gmp.PortListData) (*gmp.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls = append(f.saveCalls, data)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &gmp.Response{Action: "Save Port List", ID: data.ID, Message: "OK"}, nil
}

func (f *fakeBackend) ClonePortList(_ context.Context, id string) (*gmp.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cloneCalls = append(f.cloneCalls, id)
	if f.cloneErr != nil {
		return nil, f.cloneErr
	}
	return &gmp.Response{Action: "Clone Port List", ID: f.id("clone"), Message: "OK"}, nil
}

func (f *fakeBackend) DeletePortList(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteListCalls = append(f.deleteListCalls, id)
	return f.deleteListErr
}

func (f *fakeBackend) ExportPortList(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	pl, ok := f.lists[id]
	if !ok {
		return nil, gmp.ErrNotFound
	}
	return gmp.MarshalPortListXML(pl)
}

func (f *fakeBackend) ImportPortList(_ context.Context, data gmp.ImportData) (*gmp.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.importCalls = append(f.importCalls, data)
	if f.importErr != nil {
		return nil, f.importErr
	}
	return &gmp.Response{Action: "Import Port List", ID: f.id("import"), Message: "OK"}, nil
}

func (f *fakeBackend) CreatePortRange(_ context.Context, req gmp.CreatePortRangeRequest) (*gmp.Response, error) {
	f.mu.Lock()
	f.createRangeCalls = append(f.createRangeCalls, req)
	entered, gate := f.rangeEntered, f.rangeGate
	f.mu.Unlock()
	if gate != nil {
		entered <- struct{}{}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failCreateStart[req.Start]; err != nil {
		return nil, err
	}
	return &gmp.Response{Action: "Create Port Range", ID: f.id("range"), Message: "OK"}, nil
}

func (f *fakeBackend) DeletePortRange(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteRangeCalls = append(f.deleteRangeCalls, id)
	return f.failDeleteID[id]
}

func (f *fakeBackend) calls() (creates []gmp.CreatePortRangeRequest, deletes []string, saves []gmp.PortListData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gmp.CreatePortRangeRequest(nil), f.createRangeCalls...),
		append([]string(nil), f.deleteRangeCalls...),
		append([]gmp.PortListData(nil), f.saveCalls...)
}

var errBackend = errors.New("backend unavailable")
