// Package tui provides Bubble Tea models for the interactive bug filer.
package tui

import (
	"github.com/h0rv/bugdrop/internal/bugs"
	"github.com/h0rv/bugdrop/internal/domain"
)

// BoardSelectedMsg is emitted when the user picks a board.
type BoardSelectedMsg struct {
	Board domain.Board
}

// GroupSelectedMsg is emitted when the user picks a group on the chosen board.
type GroupSelectedMsg struct {
	Group domain.Group
}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}

// Internal transition messages.
type (
	boardsLoadedMsg struct {
		boards []domain.Board
	}

	itemsLoadedMsg struct {
		items []domain.ItemSummary
	}

	itemsErrorMsg struct {
		err error
	}

	changeBoardMsg struct{}

	openFormMsg struct{}

	closeFormMsg struct{}

	// bugFiledMsg carries the outcome of a submit. err is set only when
	// the item itself could not be created.
	bugFiledMsg struct {
		report domain.BugReport
		result *bugs.Result
		err    error
	}

	closeResultMsg struct{}
)
