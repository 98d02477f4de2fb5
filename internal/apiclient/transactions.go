package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"pos_terminal/internal/models"
)

func (c *Client) CreateSale(ctx context.Context, req models.SaleRequest) (*models.Sale, error) {
	var sale models.Sale
	if err := c.do(ctx, http.MethodPost, "sales", nil, req, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (c *Client) CreateRental(ctx context.Context, req models.RentalRequest) error {
	return c.do(ctx, http.MethodPost, "rentals", nil, req, nil)
}

func (c *Client) OutstandingRentals(ctx context.Context, customerPhone string) ([]models.OutstandingRental, error) {
	var rentals []models.OutstandingRental
	path := "rentals/outstanding/" + url.PathEscape(customerPhone)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &rentals); err != nil {
		return nil, err
	}
	return rentals, nil
}

func (c *Client) CreateReturn(ctx context.Context, req models.ReturnRequest) error {
	return c.do(ctx, http.MethodPost, "returns", nil, req, nil)
}
