package backend

import (
	"context"
	"net/http"

	"omnisearch/gateway/internal/model"
)

// Credentials is the sign-in request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the account-creation request body.
type Registration struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Login exchanges credentials for a backend bearer token.
func (c *Client) Login(ctx context.Context, creds *Credentials) (*model.Token, error) {
	body, err := jsonBody(creds)
	if err != nil {
		return nil, err
	}
	var token model.Token
	err = c.request(ctx, "/api/v1/auth/login", requestOptions{method: http.MethodPost, body: body, noAuth: true}, &token)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg *Registration) (*model.User, error) {
	body, err := jsonBody(reg)
	if err != nil {
		return nil, err
	}
	var user model.User
	err = c.request(ctx, "/api/v1/auth/register", requestOptions{method: http.MethodPost, body: body, noAuth: true}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the account behind the current session's token.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	err := c.request(ctx, "/api/v1/auth/me", requestOptions{}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh trades the current token for a fresh one.
func (c *Client) Refresh(ctx context.Context) (*model.Token, error) {
	var token model.Token
	err := c.request(ctx, "/api/v1/auth/refresh", requestOptions{method: http.MethodPost}, &token)
	if err != nil {
		return nil, err
	}
	return &token, nil
}
