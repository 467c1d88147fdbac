package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/bugdrop/internal/domain"
	"github.com/h0rv/bugdrop/internal/store"
)

// mockClient implements Client with canned data.
type mockClient struct {
	mu sync.Mutex

	boards    []domain.Board
	boardsErr error
	items     []domain.ItemSummary
	itemsErr  error
	createErr error

	created []string
}

func (m *mockClient) ListBoards(ctx context.Context) ([]domain.Board, error) {
	return m.boards, m.boardsErr
}

func (m *mockClient) ListItems(ctx context.Context, boardID, groupID string, limit int) ([]domain.ItemSummary, error) {
	return m.items, m.itemsErr
}

func (m *mockClient) CreateItem(ctx context.Context, boardID, groupID, name string) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return domain.Item{}, m.createErr
	}
	m.created = append(m.created, name)
	return domain.Item{ID: "991", Name: name, URL: "https://acme.monday.com/boards/" + boardID + "/pulses/991"}, nil
}

func (m *mockClient) CreateUpdate(ctx context.Context, itemID, body string) (domain.Update, error) {
	return domain.Update{ID: "u1"}, nil
}

func (m *mockClient) AddFileToUpdate(ctx context.Context, updateID, name string, data []byte) (domain.Asset, error) {
	if name == "broken.png" {
		return domain.Asset{}, errors.New("failed to upload broken.png: too large")
	}
	return domain.Asset{ID: "a-" + name, Name: name}, nil
}

func testBoards() []domain.Board {
	return []domain.Board{
		{
			ID:        "1",
			Name:      "Web Bugs",
			Workspace: &domain.Workspace{ID: "w2", Name: "Web"},
			Groups:    []domain.Group{{ID: "topics", Title: "Incoming"}, {ID: "triaged", Title: "Triaged"}},
		},
		{
			ID:        "2",
			Name:      "Mobile Bugs",
			Workspace: &domain.Workspace{ID: "w1", Name: "Mobile"},
			Groups:    []domain.Group{{ID: "new", Title: "New"}},
		},
		{ID: "3", Name: "Scratch", Groups: []domain.Group{}},
	}
}

func testItems() []domain.ItemSummary {
	return []domain.ItemSummary{
		{ID: "11", Name: "Crash on save", BoardID: "1", CreatedAt: "2024-05-01T10:00:00Z",
			Columns: []domain.ColumnValue{{ID: "status", Text: "Stuck"}}},
		{ID: "12", Name: "Login button misaligned", BoardID: "1", CreatedAt: "2024-05-03T10:00:00Z",
			Columns: []domain.ColumnValue{{ID: "status", Text: "Done"}}},
		{ID: "13", Name: "Typo in footer", BoardID: "1", CreatedAt: "2024-06-10T10:00:00Z"},
	}
}

func createTestStore() *store.Store {
	s := store.New()
	s.SetBoards(testBoards())
	s.SetItems(testItems())
	return s
}

// runCmd executes cmd and returns every message it produces, flattening
// batches.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(t, c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// findMsg returns the first message of type T.
func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// stubOpenURL records URLs instead of launching a browser.
func stubOpenURL(t *testing.T) *[]string {
	t.Helper()
	var opened []string
	prev := openURL
	openURL = func(url string) error {
		opened = append(opened, url)
		return nil
	}
	t.Cleanup(func() { openURL = prev })
	return &opened
}
