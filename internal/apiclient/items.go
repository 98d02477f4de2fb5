package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"pos_terminal/internal/models"
)

func (c *Client) ListItems(ctx context.Context) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	if err := c.do(ctx, http.MethodGet, "items", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItemByItemID resolves an item by its business id, not its storage id.
func (c *Client) GetItemByItemID(ctx context.Context, itemID int64) (*models.CatalogItem, error) {
	var item models.CatalogItem
	path := "items/item-id/" + strconv.FormatInt(itemID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateInventoryQuantity(ctx context.Context, id string, quantity int) error {
	path := "inventory/items/" + url.PathEscape(id) + "/quantity"
	query := url.Values{"quantity": []string{strconv.Itoa(quantity)}}
	return c.do(ctx, http.MethodPut, path, query, nil, nil)
}
