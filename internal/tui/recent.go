package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/bugdrop/internal/domain"
	"github.com/h0rv/bugdrop/internal/store"
	"github.com/muesli/reflow/truncate"
	"github.com/pkg/browser"
)

const (
	statusWidth = 14
	dateWidth   = 10
)

var (
	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))
)

// openURL is swapped out in tests.
var openURL = browser.OpenURL

// RecentModel lists the latest bugs in the selected group.
type RecentModel struct {
	// Dependencies
	store  *store.Store
	client Client
	ctx    context.Context

	board domain.Board
	group domain.Group
	limit int

	// UI components
	keymap      KeyMap
	keys        keyReference
	spinner     spinner.Model
	filterInput textinput.Model

	// List state
	filtered []domain.ItemSummary
	selected int
	offset   int

	// View state
	width      int
	height     int
	showHelp   bool
	filterMode bool
	filterText string
	loading    bool
	errorToast string
}

// NewRecentModel creates the recent bugs list for one board group.
func NewRecentModel(s *store.Store, client Client, ctx context.Context, board domain.Board, group domain.Group, limit int) RecentModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Search by name, status or date..."
	ti.Prompt = "/ "

	return RecentModel{
		store:       s,
		client:      client,
		ctx:         ctx,
		board:       board,
		group:       group,
		limit:       limit,
		keymap:      DefaultKeyMap(),
		keys:        newKeyReference("Bug list", DefaultKeyMap()),
		spinner:     sp,
		filterInput: ti,
		loading:     true,
	}
}

// Init starts loading the group's items.
func (m RecentModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
		m.loadItems(),
	)
}

// Update handles messages.
func (m RecentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		(&m).clampScroll()
		return m, nil

	case itemsLoadedMsg:
		m.loading = false
		m.errorToast = ""
		m.store.SetItems(msg.items)
		(&m).applyFilter()
		return m, nil

	case itemsErrorMsg:
		m.loading = false
		m.errorToast = fmt.Sprintf("Load failed: %v", msg.err)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m RecentModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Filter mode: the list narrows as the user types.
	if m.filterMode {
		switch msg.String() {
		case "enter":
			m.filterMode = false
			m.filterInput.Blur()
			return m, nil
		case "esc":
			m.filterMode = false
			m.filterInput.Blur()
			m.filterInput.SetValue("")
			m.filterText = ""
			(&m).applyFilter()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.filterText = m.filterInput.Value()
			(&m).applyFilter()
			return m, cmd
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "/":
		m.filterMode = true
		cmd := m.filterInput.Focus()
		return m, cmd
	case "j", "down":
		(&m).moveSelection(1)
	case "k", "up":
		(&m).moveSelection(-1)
	case "g":
		(&m).moveSelection(-len(m.filtered))
	case "G":
		(&m).moveSelection(len(m.filtered))
	case "o", "enter":
		if item := m.selectedItem(); item != nil {
			if err := openURL(item.PulseURL()); err != nil {
				m.errorToast = fmt.Sprintf("Open failed: %v", err)
			}
		}
	case "n":
		return m, func() tea.Msg { return openFormMsg{} }
	case "r":
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadItems())
	case "b":
		return m, func() tea.Msg { return changeBoardMsg{} }
	}

	return m, nil
}

// loadItems fetches the newest items of the group.
func (m RecentModel) loadItems() tea.Cmd {
	client, ctx := m.client, m.ctx
	boardID, groupID, limit := m.board.ID, m.group.ID, m.limit
	return func() tea.Msg {
		items, err := client.ListItems(ctx, boardID, groupID, limit)
		if err != nil {
			return itemsErrorMsg{err: err}
		}
		return itemsLoadedMsg{items: items}
	}
}

// applyFilter recomputes the visible rows from the store.
func (m *RecentModel) applyFilter() {
	m.filtered = m.store.FilterItems(m.filterText)
	if m.selected >= len(m.filtered) {
		m.selected = len(m.filtered) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.clampScroll()
}

func (m *RecentModel) moveSelection(delta int) {
	if len(m.filtered) == 0 {
		return
	}
	m.selected += delta
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= len(m.filtered) {
		m.selected = len(m.filtered) - 1
	}
	m.clampScroll()
}

// clampScroll keeps the selected row inside the visible window.
func (m *RecentModel) clampScroll() {
	rows := m.visibleRows()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m RecentModel) visibleRows() int {
	height := m.height
	if height == 0 {
		height = 24
	}
	rows := height - 3 // header, hint bar, filter
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (m RecentModel) selectedItem() *domain.ItemSummary {
	if m.selected < 0 || m.selected >= len(m.filtered) {
		return nil
	}
	return &m.filtered[m.selected]
}

// View renders the list.
func (m RecentModel) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	sections := []string{m.renderHeader(width), m.renderHints(width)}
	if m.filterMode {
		sections = append(sections, m.filterInput.View())
	}

	var body string
	switch {
	case m.showHelp:
		body = m.keys.box(width)
	case m.loading && len(m.store.Items()) == 0:
		body = m.spinner.View() + " Loading bugs..."
	case len(m.filtered) == 0 && m.filterText != "":
		body = DimStyle.Render("No bugs match your search.")
	case len(m.filtered) == 0:
		body = DimStyle.Render("No bugs yet. Press 'n' to file one.")
	default:
		body = m.renderRows(width)
	}
	sections = append(sections, body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the board/group title with the count on the right.
func (m RecentModel) renderHeader(width int) string {
	title := fmt.Sprintf("%s / %s", m.board.Name, m.group.Title)

	var status []string
	if m.loading {
		status = append(status, m.spinner.View()+"loading")
	}
	if count := store.CountLabel(len(m.filtered), len(m.store.Items()), "bug"); count != "" {
		status = append(status, count)
	}
	if m.filterText != "" {
		status = append(status, "/"+m.filterText)
	}
	status = append(status, "[?]help")
	right := strings.Join(status, " | ")

	padding := width - lipgloss.Width(title) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return TitleStyle.UnsetMarginBottom().Render(title) + strings.Repeat(" ", padding) + DimStyle.Render(right)
}

// renderHints renders key hints, or the last error in its place.
func (m RecentModel) renderHints(width int) string {
	if m.errorToast != "" {
		return ErrorStyle.Render(truncate.StringWithTail(m.errorToast, uint(width), "…"))
	}
	return DimStyle.Render("j/k:move o:open n:new /:search r:refresh b:board q:quit")
}

func (m RecentModel) renderRows(width int) string {
	rows := m.visibleRows()
	end := m.offset + rows
	if end > len(m.filtered) {
		end = len(m.filtered)
	}

	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.formatRow(m.filtered[i], width, i == m.selected))
	}
	return strings.Join(lines, "\n")
}

// formatRow lays out name, status and date, truncating the name to fit.
func (m RecentModel) formatRow(it domain.ItemSummary, width int, selected bool) string {
	nameWidth := width - statusWidth - dateWidth - 6
	if nameWidth < 10 {
		nameWidth = 10
	}

	name := truncate.StringWithTail(it.Name, uint(nameWidth), "…")
	status := truncate.StringWithTail(store.StatusLabel(it), statusWidth, "…")
	date := store.DateLabel(it.CreatedAt)

	name += strings.Repeat(" ", nameWidth-lipgloss.Width(name))
	status += strings.Repeat(" ", statusWidth-lipgloss.Width(status))

	if selected {
		return selectedRowStyle.Render("> "+name) + "  " + statusStyle.Render(status) + "  " + DimStyle.Render(date)
	}
	return rowStyle.Render("  "+name) + "  " + statusStyle.Render(status) + "  " + DimStyle.Render(date)
}
