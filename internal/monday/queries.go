package monday

import (
	"context"
	"errors"
	"fmt"

	"github.com/h0rv/bugdrop/internal/domain"
)

// DefaultItemsLimit is the page size used when ListItems gets a non-positive limit.
const DefaultItemsLimit = 10

// ListBoards returns every board visible to the token, with its workspace and groups.
func (c *Client) ListBoards(ctx context.Context) ([]domain.Board, error) {
	var resp struct {
		Boards []struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			Workspace *struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"workspace"`
			Groups []struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"groups"`
		} `json:"boards"`
	}

	if err := c.Execute(ctx, opListBoards, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}

	boards := make([]domain.Board, 0, len(resp.Boards))
	for _, b := range resp.Boards {
		board := domain.Board{
			ID:     b.ID,
			Name:   b.Name,
			Groups: make([]domain.Group, 0, len(b.Groups)),
		}
		if b.Workspace != nil {
			board.Workspace = &domain.Workspace{ID: b.Workspace.ID, Name: b.Workspace.Name}
		}
		for _, g := range b.Groups {
			board.Groups = append(board.Groups, domain.Group{ID: g.ID, Title: g.Title})
		}
		boards = append(boards, board)
	}

	return boards, nil
}

// itemsResponse is the partial shape of a ListItems response. Every level is
// optional; extractItems walks it and yields nothing on a mismatch.
type itemsResponse struct {
	Boards []struct {
		ID     string `json:"id"`
		Groups []struct {
			ItemsPage *struct {
				Items []struct {
					ID           string `json:"id"`
					Name         string `json:"name"`
					CreatedAt    string `json:"created_at"`
					UpdatedAt    string `json:"updated_at"`
					ColumnValues []struct {
						ID    string  `json:"id"`
						Text  *string `json:"text"`
						Value *string `json:"value"`
					} `json:"column_values"`
				} `json:"items"`
			} `json:"items_page"`
		} `json:"groups"`
	} `json:"boards"`
}

// ListItems returns up to limit items from a board group.
// A board or group missing from the response yields an empty slice, not an error.
func (c *Client) ListItems(ctx context.Context, boardID, groupID string, limit int) ([]domain.ItemSummary, error) {
	if limit <= 0 {
		limit = DefaultItemsLimit
	}

	vars := map[string]interface{}{
		"boardId": []string{boardID},
		"groupId": []string{groupID},
		"limit":   limit,
	}

	var resp itemsResponse
	if err := c.Execute(ctx, opListItems, vars, &resp); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	return extractItems(resp, boardID), nil
}

func extractItems(resp itemsResponse, boardID string) []domain.ItemSummary {
	if len(resp.Boards) == 0 || len(resp.Boards[0].Groups) == 0 {
		return []domain.ItemSummary{}
	}
	board := resp.Boards[0]
	page := board.Groups[0].ItemsPage
	if page == nil {
		return []domain.ItemSummary{}
	}
	if board.ID != "" {
		boardID = board.ID
	}

	items := make([]domain.ItemSummary, 0, len(page.Items))
	for _, it := range page.Items {
		item := domain.ItemSummary{
			ID:        it.ID,
			Name:      it.Name,
			BoardID:   boardID,
			CreatedAt: it.CreatedAt,
			UpdatedAt: it.UpdatedAt,
			Columns:   make([]domain.ColumnValue, 0, len(it.ColumnValues)),
		}
		for _, cv := range it.ColumnValues {
			item.Columns = append(item.Columns, domain.ColumnValue{
				ID:    cv.ID,
				Text:  deref(cv.Text),
				Value: deref(cv.Value),
			})
		}
		items = append(items, item)
	}
	return items
}

// Me returns the account that owns the token. It doubles as a connection test.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var resp struct {
		Me *struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"me"`
	}

	if err := c.Execute(ctx, opMe, nil, &resp); err != nil {
		return domain.User{}, fmt.Errorf("failed to fetch current user: %w", err)
	}
	if resp.Me == nil {
		return domain.User{}, errors.New("failed to fetch current user: empty response")
	}

	return domain.User{ID: resp.Me.ID, Name: resp.Me.Name, Email: resp.Me.Email}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
