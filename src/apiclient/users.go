package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/username/tradejournal/src/models"
)

// ListUsers requires an admin token.
func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	users := []models.User{}
	if err := c.sendJSON(ctx, token, http.MethodGet, "/users/", nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, in models.UserCreate) (*models.User, error) {
	var u models.User
	if err := c.sendJSON(ctx, token, http.MethodPost, "/users/", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser is the admin edit of any account.
func (c *Client) UpdateUser(ctx context.Context, token string, id int64, in models.UserUpdate) (*models.User, error) {
	var u models.User
	if err := c.sendJSON(ctx, token, http.MethodPut, fmt.Sprintf("/users/%d", id), in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile edits the caller's own account.
func (c *Client) UpdateProfile(ctx context.Context, token string, id int64, in models.UserUpdate) (*models.User, error) {
	var u models.User
	if err := c.sendJSON(ctx, token, http.MethodPut, fmt.Sprintf("/api/users/%d", id), in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
