package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

var keysBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(0, 2).
	MarginTop(1)

// keyReference renders one screen's bindings as a hint line or a titled box.
type keyReference struct {
	title string
	keys  help.KeyMap
	help  help.Model
}

func newKeyReference(title string, keys help.KeyMap) keyReference {
	h := help.New()
	h.ShortSeparator = " · "
	h.Styles.ShortKey = LabelStyle
	h.Styles.FullKey = LabelStyle
	h.Styles.ShortDesc = DimStyle
	h.Styles.FullDesc = DimStyle

	return keyReference{title: title, keys: keys, help: h}
}

// line is the short form, cut with an ellipsis past width.
func (r keyReference) line(width int) string {
	r.help.ShowAll = false
	r.help.Width = width
	return r.help.View(r.keys)
}

// box is the full form under the screen title.
func (r keyReference) box(width int) string {
	r.help.ShowAll = true
	r.help.Width = max(width-6, 0)
	body := lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render(r.title),
		"",
		r.help.View(r.keys),
	)
	return keysBoxStyle.Render(body)
}
