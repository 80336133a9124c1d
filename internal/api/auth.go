package api

import (
	"context"
	"net/http"

	"storefront-client/internal/domain"
)

// Login returns the token issued for creds. An empty token means the
// backend refused the credentials without an error status.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	var resp domain.LoginResponse
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/auth/login",
		endpoint: "auth.login",
		body:     creds,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Register(ctx context.Context, creds domain.Credentials) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/auth/register",
		endpoint: "auth.register",
		body:     creds,
	}, nil)
}

func (c *Client) Profile(ctx context.Context, token string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/auth/profile",
		endpoint: "auth.profile",
		token:    token,
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, profile *domain.UserProfile) error {
	return c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/auth/profile",
		endpoint: "auth.update_profile",
		token:    token,
		body:     profile,
	}, nil)
}
