// Package domain defines the normalized domain types for filing bugs on monday.com boards.
// These types represent the core concepts independent of the monday GraphQL API structure.
package domain

import "fmt"

// DefaultItemName is used as the item title when a report has no description.
const DefaultItemName = "New Bug"

// BugReport is the structured input for filing a bug.
// Only Description is promoted into the item itself; every other field
// lives in the details update.
type BugReport struct {
	Description      string `json:"description"`
	Platform         string `json:"platform,omitempty"`
	Environment      string `json:"env,omitempty"`
	Version          string `json:"version,omitempty"`
	StepsToReproduce string `json:"stepsToReproduce,omitempty"`
	ActualResult     string `json:"actualResult,omitempty"`
	ExpectedResult   string `json:"expectedResult,omitempty"`
}

// Title returns the item name derived from the report.
func (r BugReport) Title() string {
	if r.Description == "" {
		return DefaultItemName
	}
	return r.Description
}

// Attachment is a file to upload alongside a report.
// Payload is binary encoded as text: a data URL or bare base64.
type Attachment struct {
	Name    string `json:"name"`
	Payload string `json:"dataUrl"`
}

// Item is a created monday item (pulse).
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Update is a note attached to an item.
type Update struct {
	ID string `json:"id"`
}

// Asset is a file stored on an update.
type Asset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Workspace groups boards in the monday account.
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Group is a named subdivision of a board.
type Group struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Board is a top-level collection of items.
type Board struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Workspace *Workspace `json:"workspace,omitempty"` // nil for boards outside any workspace
	Groups    []Group    `json:"groups"`
}

// WorkspaceName returns the workspace display name, or NoWorkspace.
func (b Board) WorkspaceName() string {
	if b.Workspace == nil || b.Workspace.Name == "" {
		return NoWorkspace
	}
	return b.Workspace.Name
}

// NoWorkspace labels boards that do not belong to a workspace.
const NoWorkspace = "No Workspace"

// ColumnValue is a single column cell on an item.
type ColumnValue struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Value string `json:"value"`
}

// ItemSummary is an item as listed in a group, with its column values.
type ItemSummary struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	BoardID   string        `json:"board_id"`
	CreatedAt string        `json:"created_at"` // ISO8601
	UpdatedAt string        `json:"updated_at"` // ISO8601
	Columns   []ColumnValue `json:"column_values"`
}

// StatusColumnID is the column id monday uses for the default status column.
const StatusColumnID = "status"

// Status returns the text of the status column, or an empty string.
func (i ItemSummary) Status() string {
	for _, c := range i.Columns {
		if c.ID == StatusColumnID {
			return c.Text
		}
	}
	return ""
}

// PulseURL builds the browser URL for the item.
func (i ItemSummary) PulseURL() string {
	return fmt.Sprintf("https://monday.com/boards/%s/pulses/%s", i.BoardID, i.ID)
}

// User is the authenticated monday account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
