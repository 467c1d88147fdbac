// Package bridge answers {action, ...} envelopes from the browser extension
// with {success, data|error} envelopes.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/h0rv/bugdrop/internal/auth"
	"github.com/h0rv/bugdrop/internal/bugs"
	"github.com/h0rv/bugdrop/internal/domain"
	"github.com/h0rv/bugdrop/internal/history"
	"github.com/h0rv/bugdrop/internal/monday"
	"go.uber.org/zap"
)

// Actions understood by the dispatcher.
const (
	ActionCreateBug       = "createBug"
	ActionFetchRecentBugs = "fetchRecentBugs"
	ActionFetchWorkspaces = "fetchWorkspaces"
	ActionTestConnection  = "testMondayConnection"
)

var (
	// ErrNoToken is returned when neither the request nor the settings carry a token.
	ErrNoToken = errors.New("monday.com token not configured")
	// ErrNoBoard is returned when no board and group are selected.
	ErrNoBoard = errors.New("board and group not selected; choose them in settings")
	// ErrNoReport is returned by createBug without a bug payload.
	ErrNoReport = errors.New("bug report missing from request")
)

// Request is an inbound envelope. Empty Token, BoardID and GroupID fall back
// to the saved settings.
type Request struct {
	Action      string              `json:"action"`
	Token       string              `json:"token,omitempty"`
	BoardID     string              `json:"boardId,omitempty"`
	GroupID     string              `json:"groupId,omitempty"`
	Bug         *domain.BugReport   `json:"bug,omitempty"`
	Attachments []domain.Attachment `json:"attachments,omitempty"`
	Limit       int                 `json:"limit,omitempty"`
}

// Response is an outbound envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(data interface{}) Response {
	return Response{Success: true, Data: data}
}

func fail(err error) Response {
	return Response{Success: false, Error: err.Error()}
}

// API is the monday surface the dispatcher drives.
type API interface {
	bugs.API
	ListBoards(ctx context.Context) ([]domain.Board, error)
	ListItems(ctx context.Context, boardID, groupID string, limit int) ([]domain.ItemSummary, error)
	Me(ctx context.Context) (domain.User, error)
}

// ClientFactory builds an API client for a credential.
type ClientFactory func(auth.Credential) API

// MondayClients returns a factory producing monday clients with opts.
func MondayClients(opts ...monday.Option) ClientFactory {
	return func(c auth.Credential) API {
		return monday.New(c, opts...)
	}
}

// Defaults are the saved settings applied to requests that omit them.
type Defaults struct {
	Token   string
	BoardID string
	GroupID string
}

// Recorder stores filed bugs.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

// ConnectionInfo is the data returned by testMondayConnection.
type ConnectionInfo struct {
	User       domain.User    `json:"user"`
	Workspaces []domain.Board `json:"workspaces"`
}

// Dispatcher routes requests to the monday client.
type Dispatcher struct {
	clients  ClientFactory
	defaults Defaults
	recorder Recorder
	logger   *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDefaults sets the fallback token and selection.
func WithDefaults(d Defaults) Option {
	return func(x *Dispatcher) { x.defaults = d }
}

// WithRecorder records successful createBug calls.
func WithRecorder(r Recorder) Option {
	return func(x *Dispatcher) { x.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(x *Dispatcher) { x.logger = l }
}

// NewDispatcher creates a dispatcher that builds clients with clients.
func NewDispatcher(clients ClientFactory, opts ...Option) *Dispatcher {
	d := &Dispatcher{clients: clients, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle answers one request. It never returns a transport-level error: every
// failure is reported as Success false with a message.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Response {
	switch req.Action {
	case ActionCreateBug:
		return d.createBug(ctx, req)
	case ActionFetchRecentBugs:
		return d.fetchRecentBugs(ctx, req)
	case ActionFetchWorkspaces:
		return d.fetchWorkspaces(ctx, req)
	case ActionTestConnection:
		return d.testConnection(ctx, req)
	default:
		return fail(fmt.Errorf("unknown action %q", req.Action))
	}
}

func (d *Dispatcher) client(req Request) (API, error) {
	token := req.Token
	if token == "" {
		token = d.defaults.Token
	}
	credential := auth.New(token)
	if !credential.Present() {
		return nil, ErrNoToken
	}
	return d.clients(credential), nil
}

func (d *Dispatcher) target(req Request) (bugs.Target, error) {
	t := bugs.Target{BoardID: req.BoardID, GroupID: req.GroupID}
	if t.BoardID == "" {
		t.BoardID = d.defaults.BoardID
	}
	if t.GroupID == "" {
		t.GroupID = d.defaults.GroupID
	}
	if t.Validate() != nil {
		return t, ErrNoBoard
	}
	return t, nil
}

func (d *Dispatcher) createBug(ctx context.Context, req Request) Response {
	if req.Bug == nil {
		return fail(ErrNoReport)
	}
	client, err := d.client(req)
	if err != nil {
		return fail(err)
	}
	target, err := d.target(req)
	if err != nil {
		return fail(err)
	}

	result, err := bugs.NewCreator(client, d.logger).Create(ctx, target, *req.Bug, req.Attachments)
	if err != nil {
		d.logger.Error("failed to create bug", zap.Error(err))
		return fail(err)
	}

	d.record(ctx, target, result)
	return ok(result)
}

func (d *Dispatcher) record(ctx context.Context, target bugs.Target, result *bugs.Result) {
	if d.recorder == nil {
		return
	}

	entry := NewEntry(target, result)
	if _, err := d.recorder.Record(ctx, entry); err != nil {
		d.logger.Warn("failed to record filing", zap.String("item_id", result.Item.ID), zap.Error(err))
	}
}

// NewEntry builds the history entry for a filed bug.
func NewEntry(target bugs.Target, result *bugs.Result) history.Entry {
	entry := history.Entry{
		ItemID:  result.Item.ID,
		Name:    result.Item.Name,
		URL:     result.Item.URL,
		BoardID: target.BoardID,
		GroupID: target.GroupID,
	}
	for _, diag := range result.Diagnostics {
		entry.Diagnostics = append(entry.Diagnostics, DiagnosticText(diag))
	}
	return entry
}

// DiagnosticText renders a diagnostic as one line.
func DiagnosticText(diag bugs.Diagnostic) string {
	if diag.Name != "" {
		return fmt.Sprintf("%s %s: %s", diag.Step, diag.Name, diag.Message)
	}
	return fmt.Sprintf("%s: %s", diag.Step, diag.Message)
}

func (d *Dispatcher) fetchRecentBugs(ctx context.Context, req Request) Response {
	client, err := d.client(req)
	if err != nil {
		return fail(err)
	}
	target, err := d.target(req)
	if err != nil {
		return fail(err)
	}

	items, err := client.ListItems(ctx, target.BoardID, target.GroupID, req.Limit)
	if err != nil {
		return fail(err)
	}
	return ok(items)
}

func (d *Dispatcher) fetchWorkspaces(ctx context.Context, req Request) Response {
	client, err := d.client(req)
	if err != nil {
		return fail(err)
	}

	boards, err := client.ListBoards(ctx)
	if err != nil {
		return fail(err)
	}
	return ok(boards)
}

func (d *Dispatcher) testConnection(ctx context.Context, req Request) Response {
	client, err := d.client(req)
	if err != nil {
		return fail(err)
	}

	user, err := client.Me(ctx)
	if err != nil {
		return fail(err)
	}
	boards, err := client.ListBoards(ctx)
	if err != nil {
		return fail(err)
	}
	return ok(ConnectionInfo{User: user, Workspaces: boards})
}
