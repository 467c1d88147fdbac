package monday

import (
	"context"
	"errors"
	"fmt"

	"github.com/h0rv/bugdrop/internal/domain"
)

// CreateItem creates an item named name in the given board group.
// The returned error is the executor's error, unwrapped, so callers can
// inspect *TransportError and *GraphQLError directly.
func (c *Client) CreateItem(ctx context.Context, boardID, groupID, name string) (domain.Item, error) {
	vars := map[string]interface{}{
		"boardId":  boardID,
		"groupId":  groupID,
		"itemName": name,
	}

	var resp struct {
		CreateItem *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"create_item"`
	}

	if err := c.Execute(ctx, opCreateItem, vars, &resp); err != nil {
		return domain.Item{}, err
	}
	if resp.CreateItem == nil || resp.CreateItem.ID == "" {
		return domain.Item{}, errors.New("create_item returned no item")
	}

	return domain.Item{
		ID:   resp.CreateItem.ID,
		Name: resp.CreateItem.Name,
		URL:  resp.CreateItem.URL,
	}, nil
}

// CreateUpdate posts body as an update (note) on an item.
func (c *Client) CreateUpdate(ctx context.Context, itemID, body string) (domain.Update, error) {
	vars := map[string]interface{}{
		"itemId": itemID,
		"body":   body,
	}

	var resp struct {
		CreateUpdate *struct {
			ID string `json:"id"`
		} `json:"create_update"`
	}

	if err := c.Execute(ctx, opCreateUpdate, vars, &resp); err != nil {
		return domain.Update{}, fmt.Errorf("failed to create update: %w", err)
	}
	if resp.CreateUpdate == nil || resp.CreateUpdate.ID == "" {
		return domain.Update{}, errors.New("failed to create update: empty response")
	}

	return domain.Update{ID: resp.CreateUpdate.ID}, nil
}

// AddFileToUpdate uploads data as a file named name on an existing update.
func (c *Client) AddFileToUpdate(ctx context.Context, updateID, name string, data []byte) (domain.Asset, error) {
	vars := map[string]interface{}{
		"updateId": updateID,
	}

	var resp struct {
		AddFileToUpdate *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"add_file_to_update"`
	}

	if err := c.Upload(ctx, opAddFileToUpdate, vars, File{Name: name, Data: data}, &resp); err != nil {
		return domain.Asset{}, fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if resp.AddFileToUpdate == nil {
		return domain.Asset{Name: name}, nil
	}

	return domain.Asset{ID: resp.AddFileToUpdate.ID, Name: resp.AddFileToUpdate.Name}, nil
}
