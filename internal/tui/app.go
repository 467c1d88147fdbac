package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/bugdrop/internal/bridge"
	"github.com/h0rv/bugdrop/internal/bugs"
	"github.com/h0rv/bugdrop/internal/domain"
	"github.com/h0rv/bugdrop/internal/monday"
	"github.com/h0rv/bugdrop/internal/store"
	"go.uber.org/zap"
)

// Client is the monday surface the TUI needs.
type Client interface {
	bugs.API
	ListBoards(ctx context.Context) ([]domain.Board, error)
	ListItems(ctx context.Context, boardID, groupID string, limit int) ([]domain.ItemSummary, error)
}

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenLoading AppScreen = iota
	ScreenBoardPicker
	ScreenGroupPicker
	ScreenBugs
	ScreenForm
	ScreenResult
)

// Options carries pre-filled values and hooks for the app.
type Options struct {
	// BoardID and GroupID skip the pickers on startup when both resolve.
	BoardID string
	GroupID string
	// Limit caps the recent bugs list.
	Limit int
	// OnSelect persists a board/group choice. Errors are logged only.
	OnSelect func(boardID, groupID string) error
	// Recorder, when set, logs every filed bug.
	Recorder bridge.Recorder
	Logger   *zap.Logger
}

// AppModel is the root Bubble Tea model that manages screen transitions.
// It runs board selection -> group selection -> recent bugs -> bug form.
type AppModel struct {
	// Dependencies
	client  Client
	store   *store.Store
	ctx     context.Context
	creator *bugs.Creator
	logger  *zap.Logger

	// Startup selection, consumed once
	boardFlag string
	groupFlag string
	limit     int
	onSelect  func(boardID, groupID string) error
	recorder  bridge.Recorder

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	err           error
	loadingMsg    string

	board domain.Board
	group domain.Group

	// Cached so the list keeps its search and position across the form
	recentModel *RecentModel
}

// NewAppModel creates the root model.
func NewAppModel(client Client, s *store.Store, ctx context.Context, opts Options) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = monday.DefaultItemsLimit
	}

	return AppModel{
		client:        client,
		store:         s,
		ctx:           ctx,
		creator:       bugs.NewCreator(client, logger),
		logger:        logger,
		boardFlag:     opts.BoardID,
		groupFlag:     opts.GroupID,
		limit:         limit,
		onSelect:      opts.OnSelect,
		recorder:      opts.Recorder,
		currentScreen: ScreenLoading,
		loadingMsg:    "Connecting to monday.com...",
	}
}

// Init starts loading boards.
func (m AppModel) Init() tea.Cmd {
	return m.fetchBoards()
}

// Screen returns the active screen.
func (m AppModel) Screen() AppScreen {
	return m.currentScreen
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.err != nil && msg.String() == "q" {
			return m, tea.Quit
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case boardsLoadedMsg:
		m.store.SetBoards(msg.boards)
		if len(msg.boards) == 0 {
			m.err = errors.New("no boards found for this account")
			return m, nil
		}

		if m.boardFlag != "" {
			boardID := m.boardFlag
			m.boardFlag = ""
			board, err := m.store.Board(boardID)
			if err != nil {
				m.err = fmt.Errorf("board %s: %w", boardID, err)
				return m, nil
			}
			return m.selectBoard(board)
		}
		return m.showBoardPicker()

	case BoardSelectedMsg:
		return m.selectBoard(msg.Board)

	case GroupSelectedMsg:
		return m.selectGroup(msg.Group)

	case changeBoardMsg:
		return m.showBoardPicker()

	case openFormMsg:
		m.currentScreen = ScreenForm
		target := bugs.Target{BoardID: m.board.ID, GroupID: m.group.ID}
		form := NewFormModel(m.creator, target, m.ctx, fmt.Sprintf("%s / %s", m.board.Name, m.group.Title))
		m.currentModel = form
		return m, form.Init()

	case closeFormMsg:
		return m.showRecent()

	case bugFiledMsg:
		if msg.err != nil {
			// Stay on the form so the report can be resubmitted.
			break
		}
		m.store.PrependItem(domain.ItemSummary{
			ID:        msg.result.Item.ID,
			Name:      msg.result.Item.Name,
			BoardID:   m.board.ID,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		})
		if m.recentModel != nil {
			m.recentModel.applyFilter()
		}
		m.currentScreen = ScreenResult
		result := NewResultModel(msg.result)
		m.currentModel = result
		return m, tea.Batch(result.Init(), m.record(msg.result))

	case closeResultMsg:
		return m.showRecent()
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		if m.currentScreen == ScreenBugs {
			if rm, ok := m.currentModel.(RecentModel); ok {
				m.recentModel = &rm
			}
		}
		return m, cmd
	}

	return m, nil
}

func (m AppModel) showBoardPicker() (tea.Model, tea.Cmd) {
	m.currentScreen = ScreenBoardPicker
	picker := NewBoardPickerModel(m.store.Boards())
	m.currentModel = picker
	return m, picker.Init()
}

// selectBoard moves to the group picker, or straight to the bugs list when a
// group flag or a single group makes the choice.
func (m AppModel) selectBoard(board domain.Board) (tea.Model, tea.Cmd) {
	m.board = board
	if len(board.Groups) == 0 {
		m.err = fmt.Errorf("board %q has no groups", board.Name)
		return m, nil
	}

	if m.groupFlag != "" {
		groupID := m.groupFlag
		m.groupFlag = ""
		group, err := m.store.Group(board.ID, groupID)
		if err != nil {
			m.err = fmt.Errorf("group %s on board %s: %w", groupID, board.ID, err)
			return m, nil
		}
		return m.selectGroup(group)
	}
	if len(board.Groups) == 1 {
		return m.selectGroup(board.Groups[0])
	}

	m.currentScreen = ScreenGroupPicker
	picker := NewGroupPickerModel(board)
	m.currentModel = picker
	return m, picker.Init()
}

func (m AppModel) selectGroup(group domain.Group) (tea.Model, tea.Cmd) {
	m.group = group
	if m.onSelect != nil {
		if err := m.onSelect(m.board.ID, group.ID); err != nil {
			m.logger.Warn("failed to save selection",
				zap.String("board_id", m.board.ID),
				zap.String("group_id", group.ID),
				zap.Error(err))
		}
	}

	m.store.SetItems(nil)
	m.currentScreen = ScreenBugs
	recent := NewRecentModel(m.store, m.client, m.ctx, m.board, group, m.limit)
	m.recentModel = &recent
	m.currentModel = recent
	return m, recent.Init()
}

func (m AppModel) showRecent() (tea.Model, tea.Cmd) {
	if m.recentModel == nil {
		return m.selectGroup(m.group)
	}
	m.currentScreen = ScreenBugs
	m.currentModel = *m.recentModel
	return m, tea.WindowSize()
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q or Ctrl+C to quit", m.err))
	}

	if m.currentModel != nil {
		return m.currentModel.View()
	}

	return m.loadingMsg + "\n\nPress Ctrl+C to quit"
}

// fetchBoards creates a command to load the board catalog.
func (m AppModel) fetchBoards() tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		boards, err := client.ListBoards(ctx)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to load boards: %w", err)}
		}
		return boardsLoadedMsg{boards: boards}
	}
}

// record stores a filed bug in history. Failures are logged only.
func (m AppModel) record(result *bugs.Result) tea.Cmd {
	if m.recorder == nil {
		return nil
	}
	recorder, ctx, logger := m.recorder, m.ctx, m.logger
	target := bugs.Target{BoardID: m.board.ID, GroupID: m.group.ID}
	return func() tea.Msg {
		if _, err := recorder.Record(ctx, bridge.NewEntry(target, result)); err != nil {
			logger.Warn("failed to record filing", zap.String("item_id", result.Item.ID), zap.Error(err))
		}
		return nil
	}
}
