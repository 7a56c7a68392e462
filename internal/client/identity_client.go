package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/seltra-ai/be-cpq-quotes/internal/httpclient"
)

// IdentityClient resolves user roles from the platform identity service.
// Only used for the optional local pre-check that surfaces an authorization
// failure before the remote call — the gateway remains the enforcement point.
type IdentityClient struct {
	client *httpclient.Client
}

// NewIdentityClient creates a new identity service client.
func NewIdentityClient(baseURL string) *IdentityClient {
	return &IdentityClient{client: httpclient.NewClient(baseURL)}
}

type userRolesResponse struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

// GetUserRoles returns the role names a user holds.
func (c *IdentityClient) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	path := fmt.Sprintf("/api/v1/users/roles?user_id=%s", url.QueryEscape(userID))

	var resp userRolesResponse
	if err := c.client.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}
	return resp.Roles, nil
}
