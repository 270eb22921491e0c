package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/campusmart/webclient/internal/core/domain"
)

// loginResponse is the body of GET auth/google/login.
type loginResponse struct {
	AuthURL string `json:"auth_url"`
}

// GetGoogleAuthURL fetches the provider authorization URL the browser must
// be sent to. Unauthenticated call.
func (c *Client) GetGoogleAuthURL(ctx context.Context) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodGet, "/auth/google/login", "", nil, "", &resp); err != nil {
		return "", err
	}
	if resp.AuthURL == "" {
		return "", fmt.Errorf("auth/google/login: %w", &StatusError{Status: http.StatusOK, Body: "empty auth_url"})
	}
	return resp.AuthURL, nil
}

// CallbackURL returns the backend callback the browser is forwarded to with
// the provider authorization code. The code passes through opaquely; this
// client never exchanges it.
func (c *Client) CallbackURL(code string) string {
	return c.baseURL + "/auth/google/callback?code=" + url.QueryEscape(code)
}

// GetCurrentUser fetches the authoritative identity for the given token.
func (c *Client) GetCurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, "", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a gender/hostel patch server-side.
func (c *Client) UpdateProfile(ctx context.Context, token string, patch domain.ProfilePatch) (*domain.User, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode profile patch: %w", err)
	}

	var user domain.User
	if err := c.do(ctx, http.MethodPatch, "/auth/me", token, bytes.NewReader(body), "application/json", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout tells the API to discard the session. Callers treat failures as
// best-effort; local state is cleared regardless.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, "", nil)
}
