package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardPickerModel_OrderedByWorkspace(t *testing.T) {
	m := NewBoardPickerModel(testBoards())

	items := m.list.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Mobile Bugs", items[0].(boardItem).board.Name)
	assert.Equal(t, "Scratch", items[1].(boardItem).board.Name, "No Workspace sorts between Mobile and Web")
	assert.Equal(t, "Web Bugs", items[2].(boardItem).board.Name)
}

func TestBoardPickerModel_View(t *testing.T) {
	m := NewBoardPickerModel(testBoards())

	view := m.View()

	assert.Contains(t, view, "Select a Board")
	assert.Contains(t, view, "Showing all 3 boards")
	assert.Contains(t, view, "Mobile · 1 group")
}

func TestBoardPickerModel_Enter(t *testing.T) {
	m := NewBoardPickerModel(testBoards())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	selected, ok := findMsg[BoardSelectedMsg](runCmd(t, cmd))
	require.True(t, ok)
	assert.Equal(t, "2", selected.Board.ID)
}

func TestBoardItem_FilterValueIncludesWorkspace(t *testing.T) {
	item := boardItem{board: testBoards()[0]}

	assert.Contains(t, item.FilterValue(), "Web Bugs")
	assert.Contains(t, item.FilterValue(), "Web")
}

func TestGroupPickerModel(t *testing.T) {
	m := NewGroupPickerModel(testBoards()[0])
	assert.Contains(t, m.View(), "Select a Group on Web Bugs")

	model, _ := m.Update(keyRunes("j"))
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	selected, ok := findMsg[GroupSelectedMsg](runCmd(t, cmd))
	require.True(t, ok)
	assert.Equal(t, "triaged", selected.Group.ID)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_, ok = findMsg[changeBoardMsg](runCmd(t, cmd))
	assert.True(t, ok)
}
