package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/bugdrop/internal/domain"
	"github.com/h0rv/bugdrop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecent(s *store.Store, client Client) RecentModel {
	board := testBoards()[0]
	m := NewRecentModel(s, client, context.Background(), board, board.Groups[0], 10)
	m.loading = false
	(&m).applyFilter()
	return m
}

func TestRecentModel_ApplyFilter(t *testing.T) {
	m := newTestRecent(createTestStore(), nil)
	assert.Len(t, m.filtered, 3)

	m.filterText = "stuck"
	(&m).applyFilter()
	require.Len(t, m.filtered, 1)
	assert.Equal(t, "Crash on save", m.filtered[0].Name)

	m.filterText = "6/10/2024"
	(&m).applyFilter()
	require.Len(t, m.filtered, 1)
	assert.Equal(t, "Typo in footer", m.filtered[0].Name)
}

func TestRecentModel_TypingFilters(t *testing.T) {
	m := newTestRecent(createTestStore(), nil)

	model, _ := m.Update(keyRunes("/"))
	m = model.(RecentModel)
	require.True(t, m.filterMode)

	model, _ = m.Update(keyRunes("login"))
	m = model.(RecentModel)
	assert.Equal(t, "login", m.filterText)
	require.Len(t, m.filtered, 1)
	assert.Contains(t, m.View(), "1 of 3")

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = model.(RecentModel)
	assert.False(t, m.filterMode)
	assert.Empty(t, m.filterText)
	assert.Len(t, m.filtered, 3)
}

func TestRecentModel_EnterKeepsFilter(t *testing.T) {
	m := newTestRecent(createTestStore(), nil)

	model, _ := m.Update(keyRunes("/"))
	model, _ = model.Update(keyRunes("typo"))
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(RecentModel)

	assert.False(t, m.filterMode)
	assert.Equal(t, "typo", m.filterText)
	assert.Len(t, m.filtered, 1)
}

func TestRecentModel_Navigation(t *testing.T) {
	m := newTestRecent(createTestStore(), nil)
	assert.Equal(t, 0, m.selected)

	model, _ := m.Update(keyRunes("j"))
	m = model.(RecentModel)
	assert.Equal(t, 1, m.selected)

	model, _ = m.Update(keyRunes("G"))
	m = model.(RecentModel)
	assert.Equal(t, 2, m.selected)

	model, _ = m.Update(keyRunes("j"))
	m = model.(RecentModel)
	assert.Equal(t, 2, m.selected, "should not move past the last bug")

	model, _ = m.Update(keyRunes("g"))
	m = model.(RecentModel)
	assert.Equal(t, 0, m.selected)

	model, _ = m.Update(keyRunes("k"))
	m = model.(RecentModel)
	assert.Equal(t, 0, m.selected, "should not move before the first bug")
}

func TestRecentModel_SelectionClampedAfterFilter(t *testing.T) {
	m := newTestRecent(createTestStore(), nil)
	m.selected = 2

	m.filterText = "crash"
	(&m).applyFilter()

	assert.Equal(t, 0, m.selected)
}

func TestRecentModel_OpenInBrowser(t *testing.T) {
	opened := stubOpenURL(t)
	m := newTestRecent(createTestStore(), nil)

	model, _ := m.Update(keyRunes("j"))
	model, _ = model.Update(keyRunes("o"))

	assert.Equal(t, []string{"https://monday.com/boards/1/pulses/12"}, *opened)
	_ = model
}

func TestRecentModel_OpenOnEmptyList(t *testing.T) {
	opened := stubOpenURL(t)
	m := newTestRecent(store.New(), nil)

	m.Update(keyRunes("o"))

	assert.Empty(t, *opened)
}

func TestRecentModel_KeysEmitTransitions(t *testing.T) {
	m := newTestRecent(createTestStore(), nil)

	_, cmd := m.Update(keyRunes("n"))
	_, ok := findMsg[openFormMsg](runCmd(t, cmd))
	assert.True(t, ok, "n opens the form")

	_, cmd = m.Update(keyRunes("b"))
	_, ok = findMsg[changeBoardMsg](runCmd(t, cmd))
	assert.True(t, ok, "b changes the board")
}

func TestRecentModel_LoadAndRefresh(t *testing.T) {
	s := store.New()
	client := &mockClient{items: testItems()}
	board := testBoards()[0]
	m := NewRecentModel(s, client, context.Background(), board, board.Groups[0], 10)

	assert.Contains(t, m.View(), "Loading bugs")

	loaded, ok := findMsg[itemsLoadedMsg](runCmd(t, m.Init()))
	require.True(t, ok)

	model, _ := m.Update(loaded)
	m = model.(RecentModel)
	assert.False(t, m.loading)
	assert.Len(t, s.Items(), 3)
	assert.Contains(t, m.View(), "3 bugs")

	client.items = testItems()[:1]
	model, cmd := m.Update(keyRunes("r"))
	m = model.(RecentModel)
	assert.True(t, m.loading)

	loaded, ok = findMsg[itemsLoadedMsg](runCmd(t, cmd))
	require.True(t, ok)
	model, _ = m.Update(loaded)
	m = model.(RecentModel)
	assert.Contains(t, m.View(), "1 bug")
}

func TestRecentModel_LoadError(t *testing.T) {
	board := testBoards()[0]
	client := &mockClient{itemsErr: errors.New("rate limited")}
	m := NewRecentModel(store.New(), client, context.Background(), board, board.Groups[0], 10)

	failed, ok := findMsg[itemsErrorMsg](runCmd(t, m.loadItems()))
	require.True(t, ok)

	model, _ := m.Update(failed)
	m = model.(RecentModel)

	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "Load failed: rate limited")
}

func TestRecentModel_EmptyStates(t *testing.T) {
	m := newTestRecent(store.New(), nil)
	assert.Contains(t, m.View(), "No bugs yet")

	m = newTestRecent(createTestStore(), nil)
	m.filterText = "zzz"
	(&m).applyFilter()
	assert.Contains(t, m.View(), "No bugs match")
}

func TestRecentModel_HelpToggle(t *testing.T) {
	m := newTestRecent(createTestStore(), nil)

	model, _ := m.Update(keyRunes("?"))
	m = model.(RecentModel)
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "file a new bug")

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = model.(RecentModel)
	assert.False(t, m.showHelp)
}

func TestRecentModel_ScrollKeepsSelectionVisible(t *testing.T) {
	s := store.New()
	var items []domain.ItemSummary
	for i := 0; i < 30; i++ {
		items = append(items, domain.ItemSummary{ID: string(rune('a' + i%26)), Name: "bug", BoardID: "1"})
	}
	s.SetItems(items)

	m := newTestRecent(s, nil)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = model.(RecentModel)

	for i := 0; i < 20; i++ {
		model, _ = m.Update(keyRunes("j"))
		m = model.(RecentModel)
	}

	assert.Equal(t, 20, m.selected)
	assert.LessOrEqual(t, m.offset, m.selected)
	assert.Less(t, m.selected, m.offset+m.visibleRows())
}

func TestRecentModel_FormatRowTruncates(t *testing.T) {
	m := newTestRecent(createTestStore(), nil)
	it := domain.ItemSummary{
		Name:      strings.Repeat("very long bug title ", 10),
		CreatedAt: "2024-05-01T10:00:00Z",
	}

	row := m.formatRow(it, 60, false)

	assert.Contains(t, row, "…")
	assert.Contains(t, row, "Unknown")
	assert.Contains(t, row, "5/1/2024")
}

func TestRecentModel_View_NotPanic(t *testing.T) {
	m := newTestRecent(createTestStore(), nil)

	sizes := []struct{ w, h int }{{0, 0}, {20, 5}, {80, 24}, {200, 60}}
	for _, size := range sizes {
		model, _ := m.Update(tea.WindowSizeMsg{Width: size.w, Height: size.h})
		assert.NotPanics(t, func() { _ = model.View() })
	}
}
