package apiclient

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/username/tradejournal/src/models"
)

// LoginResult is the remote API's answer to a password login.
type LoginResult struct {
	AccessToken string
	TokenType   string
	Role        string
}

// Login exchanges credentials for a remote access token using the OAuth2
// password grant the remote API implements at /login.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/login",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			apiErr := errorFromResponse(re.Response.StatusCode, re.Body)
			// A rejected login is always a credentials problem to the caller.
			if apiErr.Status == http.StatusBadRequest {
				apiErr.Kind = KindUnauthorized
			}
			return nil, apiErr
		}
		return nil, &Error{Kind: KindNetwork, Message: "login request failed", Err: err}
	}

	res := &LoginResult{AccessToken: tok.AccessToken, TokenType: tok.TokenType}
	if role, ok := tok.Extra("role").(string); ok {
		res.Role = strings.ToLower(role)
	}
	if res.Role == "" {
		res.Role = models.RoleUser
	}
	return res, nil
}

// Me returns the account that owns token.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := c.sendJSON(ctx, token, http.MethodGet, "/api/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangePassword changes the password of the account that owns token.
func (c *Client) ChangePassword(ctx context.Context, token string, in models.PasswordChange) error {
	return c.sendJSON(ctx, token, http.MethodPost, "/api/users/me/change-password", in, nil)
}
