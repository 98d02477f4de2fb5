package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"pos_terminal/internal/models"
)

func (c *Client) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := c.do(ctx, http.MethodGet, "employees", nil, nil, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func (c *Client) CreateEmployee(ctx context.Context, input models.EmployeeInput) error {
	return c.do(ctx, http.MethodPost, "employees", nil, input, nil)
}

// UpdateEmployee leaves the password unchanged when input.Password is empty.
func (c *Client) UpdateEmployee(ctx context.Context, id string, input models.EmployeeInput) error {
	input.Username = ""
	return c.do(ctx, http.MethodPut, "employees/"+url.PathEscape(id), nil, input, nil)
}

func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "employees/"+url.PathEscape(id), nil, nil, nil)
}
