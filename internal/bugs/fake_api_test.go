package bugs

import (
	"context"
	"fmt"
	"sync"

	"github.com/h0rv/bugdrop/internal/domain"
)

// fakeAPI records every call in order and fails the ones it is told to.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	createItemErr error
	updateErr     map[string]error // keyed by update body prefix: "details" or AttachmentsUpdateBody
	uploadErr     map[string]error // keyed by file name

	inFlight    int
	maxInFlight int
	uploads     [][]byte
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		updateErr: map[string]error{},
		uploadErr: map[string]error{},
	}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) CreateItem(ctx context.Context, boardID, groupID, name string) (domain.Item, error) {
	f.record("create_item:" + name)
	if f.createItemErr != nil {
		return domain.Item{}, f.createItemErr
	}
	return domain.Item{
		ID:   "item-1",
		Name: name,
		URL:  fmt.Sprintf("https://acme.monday.com/boards/%s/pulses/item-1", boardID),
	}, nil
}

func (f *fakeAPI) CreateUpdate(ctx context.Context, itemID, body string) (domain.Update, error) {
	key := "details"
	if body == AttachmentsUpdateBody {
		key = AttachmentsUpdateBody
	}
	f.record("create_update:" + key)
	if err := f.updateErr[key]; err != nil {
		return domain.Update{}, err
	}
	return domain.Update{ID: "update-" + key}, nil
}

func (f *fakeAPI) AddFileToUpdate(ctx context.Context, updateID, name string, data []byte) (domain.Asset, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.uploads = append(f.uploads, data)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	f.record("add_file:" + name)
	if err := f.uploadErr[name]; err != nil {
		return domain.Asset{}, err
	}
	return domain.Asset{ID: "asset-" + name, Name: name}, nil
}
