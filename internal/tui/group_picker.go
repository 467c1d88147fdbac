package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/bugdrop/internal/domain"
)

// groupItem wraps a domain.Group for use in bubbles/list.
type groupItem struct {
	group domain.Group
}

func (i groupItem) FilterValue() string {
	return i.group.Title
}

// groupDelegate renders one group title per line.
type groupDelegate struct{}

func (d groupDelegate) Height() int                             { return 1 }
func (d groupDelegate) Spacing() int                            { return 0 }
func (d groupDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d groupDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(groupItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.group.Title)
	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
	}
}

// GroupPickerModel displays the groups of one board. Escape returns to the
// board picker.
type GroupPickerModel struct {
	list list.Model
}

// NewGroupPickerModel creates a picker over the groups of board.
func NewGroupPickerModel(board domain.Board) GroupPickerModel {
	items := make([]list.Item, len(board.Groups))
	for i, g := range board.Groups {
		items[i] = groupItem{group: g}
	}

	l := list.New(items, groupDelegate{}, 80, 20)
	l.Title = fmt.Sprintf("Select a Group on %s", board.Name)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = TitleStyle

	return GroupPickerModel{list: l}
}

// Init initializes the model.
func (m GroupPickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m GroupPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 2)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, func() tea.Msg { return QuitMsg{} }
		case "esc":
			return m, func() tea.Msg { return changeBoardMsg{} }
		case "enter":
			if item, ok := m.list.SelectedItem().(groupItem); ok {
				return m, func() tea.Msg {
					return GroupSelectedMsg{Group: item.group}
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m GroupPickerModel) View() string {
	return m.list.View() + "\n" + HelpStyle.Render("enter: select  esc: back to boards  q: quit")
}
