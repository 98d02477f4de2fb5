package apiclient

import (
	"context"
	"net/http"

	"pos_terminal/internal/models"
)

func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
