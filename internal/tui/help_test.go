package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestKeyReference_Box(t *testing.T) {
	ref := newKeyReference("Bug form", DefaultFormKeyMap())

	out := ref.box(80)

	assert.Contains(t, out, "Bug form")
	assert.Contains(t, out, "ctrl+s")
	assert.Contains(t, out, "shift+tab")
}

func TestKeyReference_LineFitsWidth(t *testing.T) {
	ref := newKeyReference("Bug list", DefaultKeyMap())

	wide := ref.line(200)
	assert.Contains(t, wide, "?")
	assert.NotContains(t, wide, "\n")

	narrow := ref.line(20)
	assert.LessOrEqual(t, lipgloss.Width(narrow), 20)
}

func TestRecentModel_HelpShowsBugListKeys(t *testing.T) {
	m := newTestRecent(createTestStore(), nil)
	m.width, m.height = 100, 30
	m.showHelp = true

	assert.Contains(t, m.View(), "Bug list")
}
