package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/bugdrop/internal/domain"
	"github.com/h0rv/bugdrop/internal/store"
)

// boardItem wraps a domain.Board for use in bubbles/list.
type boardItem struct {
	board domain.Board
}

// FilterValue matches on board and workspace names, like store.FilterBoards.
func (i boardItem) FilterValue() string {
	return i.board.Name + " " + i.board.WorkspaceName()
}

func (i boardItem) Title() string {
	return i.board.Name
}

func (i boardItem) Description() string {
	return fmt.Sprintf("%s · %d %s", i.board.WorkspaceName(), len(i.board.Groups), groupNoun(len(i.board.Groups)))
}

func groupNoun(n int) string {
	if n == 1 {
		return "group"
	}
	return "groups"
}

// boardDelegate renders a board with its workspace underneath.
type boardDelegate struct{}

func (d boardDelegate) Height() int                             { return 2 }
func (d boardDelegate) Spacing() int                            { return 1 }
func (d boardDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d boardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(boardItem)
	if !ok {
		return
	}

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+i.Title()))
		fmt.Fprint(w, "\n  "+NormalItemStyle.Render(i.Description()))
		return
	}
	fmt.Fprint(w, NormalItemStyle.Render("  "+i.Title()))
	fmt.Fprint(w, "\n  "+DimStyle.Render(i.Description()))
}

// BoardPickerModel lists boards ordered by workspace for the user to select.
type BoardPickerModel struct {
	list list.Model
	err  error
}

// NewBoardPickerModel creates a picker over boards, sorted by workspace and
// then by name.
func NewBoardPickerModel(boards []domain.Board) BoardPickerModel {
	var items []list.Item
	for _, ws := range store.GroupByWorkspace(boards) {
		for _, b := range ws.Boards {
			items = append(items, boardItem{board: b})
		}
	}

	l := list.New(items, boardDelegate{}, 80, 20)
	l.Title = "Select a Board"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle

	return BoardPickerModel{list: l}
}

// Init initializes the model.
func (m BoardPickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m BoardPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 3) // count line
		return m, nil

	case tea.KeyMsg:
		// While typing a filter every key belongs to the list.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg { return QuitMsg{} }
		case "enter":
			if item, ok := m.list.SelectedItem().(boardItem); ok {
				return m, func() tea.Msg {
					return BoardSelectedMsg{Board: item.board}
				}
			}
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m BoardPickerModel) View() string {
	view := m.list.View()
	view += "\n" + DimStyle.Render(store.BoardCountLabel(len(m.list.VisibleItems()), len(m.list.Items())))

	if m.err != nil {
		view += ErrorStyle.Render(fmt.Sprintf("\nError: %v", m.err))
	}

	return view
}
