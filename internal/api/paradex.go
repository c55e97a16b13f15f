package api

import (
	"context"
	"fmt"
	"net/http"
)

// GetSystemConfig fetches the exchange configuration. The endpoint is
// public and needs no token.
func (c *Client) GetSystemConfig(ctx context.Context) (*SystemConfig, error) {
	var resp SystemConfig
	if err := c.get(ctx, "/system/config", nil, &resp); err != nil {
		return nil, fmt.Errorf("get system config: %w", err)
	}
	return &resp, nil
}

// Auth exchanges signed onboarding headers for a short-lived JWT. The
// caller produces the PARADEX-STARKNET-* headers; the returned token is
// installed on the client for subsequent requests.
func (c *Client) Auth(ctx context.Context, headers http.Header) (*AuthResult, error) {
	var resp AuthResult
	if err := c.post(ctx, "/auth", headers, &resp); err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	c.token = resp.JWTToken
	return &resp, nil
}
