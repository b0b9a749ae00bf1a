package upstream

import (
	"context"

	"github.com/worldofdc/portal-gateway/internal/models"
)

// Login performs generic credential-based authentication.
func (c *Client) Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResponse, error) {
	resp, err := doJSON[models.AuthResponse](ctx, c, "auth_login", "POST", "/auth/login", creds)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the server-side session for the current token.
func (c *Client) Logout(ctx context.Context) error {
	return doAck(ctx, c, "auth_logout", "POST", "/auth/logout", nil)
}

// Me fetches the full profile for the current token. This is the trusted
// counterpart to the optimistic claims decode: profile data from here may
// overwrite anything synthesized client-side.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	user, err := doJSON[models.User](ctx, c, "auth_me", "GET", "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh exchanges the current token for a fresh one.
func (c *Client) Refresh(ctx context.Context) (*models.AuthResponse, error) {
	resp, err := doJSON[models.AuthResponse](ctx, c, "auth_refresh", "POST", "/auth/refresh", nil)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
