// Package store provides an in-memory cache of monday catalog data for the
// UI surfaces. It holds the boards and recent bugs last fetched and answers
// the search and grouping questions the pickers and lists ask.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/h0rv/bugdrop/internal/domain"
)

var (
	// ErrBoardNotFound indicates the requested board is not cached.
	ErrBoardNotFound = errors.New("board not found")
	// ErrGroupNotFound indicates the board has no group with that id.
	ErrGroupNotFound = errors.New("group not found")
)

// Store caches the catalog for one session. It is not safe for concurrent
// use; the TUI owns it from its update loop.
type Store struct {
	boards []domain.Board
	byID   map[string]int // board ID -> index into boards

	items []domain.ItemSummary

	viewer *domain.User
}

// New creates a new empty Store instance.
func New() *Store {
	return &Store{
		byID: make(map[string]int),
	}
}

// SetBoards replaces the cached boards.
func (s *Store) SetBoards(boards []domain.Board) {
	s.boards = make([]domain.Board, len(boards))
	copy(s.boards, boards)

	s.byID = make(map[string]int, len(boards))
	for i, b := range s.boards {
		s.byID[b.ID] = i
	}
}

// Boards returns a copy of the cached boards in fetch order.
func (s *Store) Boards() []domain.Board {
	out := make([]domain.Board, len(s.boards))
	copy(out, s.boards)
	return out
}

// Board looks up a cached board by id.
func (s *Store) Board(id string) (domain.Board, error) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Board{}, fmt.Errorf("%w: %s", ErrBoardNotFound, id)
	}
	return s.boards[i], nil
}

// Group looks up a group on a cached board.
func (s *Store) Group(boardID, groupID string) (domain.Group, error) {
	board, err := s.Board(boardID)
	if err != nil {
		return domain.Group{}, err
	}
	for _, g := range board.Groups {
		if g.ID == groupID {
			return g, nil
		}
	}
	return domain.Group{}, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
}

// FilterBoards returns the boards whose name or workspace name contains term,
// ignoring case. A blank term returns every board.
func (s *Store) FilterBoards(term string) []domain.Board {
	term = normalizeTerm(term)
	if term == "" {
		return s.Boards()
	}

	var out []domain.Board
	for _, b := range s.boards {
		if strings.Contains(strings.ToLower(b.Name), term) ||
			strings.Contains(strings.ToLower(workspaceOf(b)), term) {
			out = append(out, b)
		}
	}
	return out
}

// WorkspaceBoards is one workspace heading and its boards.
type WorkspaceBoards struct {
	Workspace string
	Boards    []domain.Board
}

// GroupByWorkspace buckets boards under their workspace name, sorted by
// workspace. Boards without a workspace go under domain.NoWorkspace. Board
// order inside a bucket is preserved.
func GroupByWorkspace(boards []domain.Board) []WorkspaceBoards {
	buckets := make(map[string][]domain.Board)
	for _, b := range boards {
		name := b.WorkspaceName()
		buckets[name] = append(buckets[name], b)
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]WorkspaceBoards, 0, len(names))
	for _, name := range names {
		out = append(out, WorkspaceBoards{Workspace: name, Boards: buckets[name]})
	}
	return out
}

// BoardsByWorkspace groups every cached board by workspace.
func (s *Store) BoardsByWorkspace() []WorkspaceBoards {
	return GroupByWorkspace(s.boards)
}

// SetItems replaces the cached recent items.
func (s *Store) SetItems(items []domain.ItemSummary) {
	s.items = make([]domain.ItemSummary, len(items))
	copy(s.items, items)
}

// Items returns a copy of the cached items.
func (s *Store) Items() []domain.ItemSummary {
	out := make([]domain.ItemSummary, len(s.items))
	copy(out, s.items)
	return out
}

// PrependItem adds a freshly filed item to the front of the cache so it shows
// up without a refetch.
func (s *Store) PrependItem(item domain.ItemSummary) {
	s.items = append([]domain.ItemSummary{item}, s.items...)
}

// FilterItems returns the items whose name, status text or creation date
// contains term, ignoring case. A blank term returns every item.
func (s *Store) FilterItems(term string) []domain.ItemSummary {
	term = normalizeTerm(term)
	if term == "" {
		return s.Items()
	}

	var out []domain.ItemSummary
	for _, it := range s.items {
		if MatchItem(it, term) {
			out = append(out, it)
		}
	}
	return out
}

// MatchItem reports whether an item matches an already lower-cased term.
func MatchItem(it domain.ItemSummary, term string) bool {
	if strings.Contains(strings.ToLower(it.Name), term) ||
		strings.Contains(strings.ToLower(it.Status()), term) {
		return true
	}
	for _, d := range dateForms(it.CreatedAt) {
		if strings.Contains(d, term) {
			return true
		}
	}
	return false
}

// SetViewer records the authenticated user.
func (s *Store) SetViewer(user domain.User) {
	s.viewer = &user
}

// Viewer returns the authenticated user, or nil before the connection test.
func (s *Store) Viewer() *domain.User {
	return s.viewer
}

// Reset empties the store.
func (s *Store) Reset() {
	s.boards = nil
	s.byID = make(map[string]int)
	s.items = nil
	s.viewer = nil
}

// DateLabel formats an ISO8601 timestamp as a short calendar date, or
// returns the input unchanged when it does not parse.
func DateLabel(iso string) string {
	t, err := parseTime(iso)
	if err != nil {
		return iso
	}
	return t.Format("1/2/2006")
}

// StatusLabel returns the status text, or "Unknown" when the item has none.
func StatusLabel(it domain.ItemSummary) string {
	if s := it.Status(); s != "" {
		return s
	}
	return "Unknown"
}

// CountLabel describes a filtered list: "3 bugs", "1 bug", "2 of 5", or ""
// when there is nothing at all.
func CountLabel(filtered, total int, noun string) string {
	switch {
	case total == 0:
		return ""
	case filtered == total:
		return fmt.Sprintf("%d %s", total, plural(noun, total))
	default:
		return fmt.Sprintf("%d of %d", filtered, total)
	}
}

// BoardCountLabel describes the board picker: "Showing all 4 boards" or
// "Showing 1 of 4 boards".
func BoardCountLabel(filtered, total int) string {
	if filtered == total {
		return fmt.Sprintf("Showing all %d %s", total, plural("board", total))
	}
	return fmt.Sprintf("Showing %d of %d boards", filtered, total)
}

// Connection is how far setup has progressed.
type Connection int

const (
	// Disconnected means no token is stored.
	Disconnected Connection = iota
	// NeedsSelection means a token exists but no board and group are chosen.
	NeedsSelection
	// Connected means token, board and group are all set.
	Connected
)

// String returns the status line shown for the state.
func (c Connection) String() string {
	switch c {
	case Connected:
		return "Connected to Monday.com"
	case NeedsSelection:
		return "Please select board and group"
	default:
		return "Not connected to Monday.com"
	}
}

// ConnectionState derives the connection state from stored settings.
func ConnectionState(hasToken bool, boardID, groupID string) Connection {
	switch {
	case hasToken && boardID != "" && groupID != "":
		return Connected
	case hasToken:
		return NeedsSelection
	default:
		return Disconnected
	}
}

func workspaceOf(b domain.Board) string {
	if b.Workspace == nil {
		return ""
	}
	return b.Workspace.Name
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func plural(noun string, n int) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}

func parseTime(iso string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, iso)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05 MST", iso)
}

// dateForms returns the searchable renderings of a timestamp.
func dateForms(iso string) []string {
	t, err := parseTime(iso)
	if err != nil {
		return nil
	}
	return []string{
		t.Format("1/2/2006"),
		t.Format("2006-01-02"),
		strings.ToLower(t.Format("Jan 2, 2006")),
	}
}
