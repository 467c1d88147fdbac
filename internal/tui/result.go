package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/bugdrop/internal/bridge"
	"github.com/h0rv/bugdrop/internal/bugs"
	"github.com/muesli/reflow/wordwrap"
)

// ResultModel shows a filed bug: its URL and anything that went wrong after
// the item was created.
type ResultModel struct {
	result     *bugs.Result
	width      int
	errorToast string
}

// NewResultModel creates the result screen for a created item.
func NewResultModel(result *bugs.Result) ResultModel {
	return ResultModel{result: result}
}

// Init initializes the model.
func (m ResultModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages.
func (m ResultModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "o":
			if err := openURL(m.result.Item.URL); err != nil {
				m.errorToast = fmt.Sprintf("Open failed: %v", err)
			}
		case "n":
			return m, func() tea.Msg { return openFormMsg{} }
		case "enter", "esc", "q":
			return m, func() tea.Msg { return closeResultMsg{} }
		}
	}
	return m, nil
}

// View renders the model.
func (m ResultModel) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	var b strings.Builder
	if m.result.Complete() {
		b.WriteString(SuccessStyle.Render("Bug filed"))
	} else {
		b.WriteString(WarningStyle.Render("Bug filed with problems"))
	}
	b.WriteString("\n\n")
	b.WriteString(LabelStyle.Render(m.result.Item.Name) + "\n")
	b.WriteString(DimStyle.Render(m.result.Item.URL) + "\n")

	if n := len(m.result.Attachments); n > 0 {
		b.WriteString(fmt.Sprintf("\n%d of %d attachments uploaded\n", countUploaded(m.result), n))
	}

	if len(m.result.Diagnostics) > 0 {
		b.WriteString("\n" + WarningStyle.Render("Problems:") + "\n")
		for _, d := range m.result.Diagnostics {
			b.WriteString(wordwrap.String("- "+bridge.DiagnosticText(d), width-2) + "\n")
		}
	}

	if m.errorToast != "" {
		b.WriteString("\n" + ErrorStyle.Render(m.errorToast) + "\n")
	}

	b.WriteString(HelpStyle.Render("o: open in browser  n: file another  enter: back to bugs"))
	return b.String()
}

func countUploaded(r *bugs.Result) int {
	n := 0
	for _, o := range r.Attachments {
		if o.OK() {
			n++
		}
	}
	return n
}
