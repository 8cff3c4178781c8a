// Package identity resolves display profiles (Farcaster handle, avatar) for
// wallet addresses from the identity service. Lookups are best effort;
// callers treat failures as missing identity.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tradequest/rewards-backend/internal/rewards/types"
	httppkg "github.com/tradequest/rewards-backend/pkg/http"
	"github.com/tradequest/rewards-backend/pkg/logging"
)

type Client struct {
	logger     logging.Logger
	serviceURL string
	httpClient *httppkg.HTTPClient
}

func NewClient(logger logging.Logger, serviceURL string) (*Client, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if serviceURL == "" {
		return nil, fmt.Errorf("identity service URL cannot be empty")
	}

	httpClient, err := httppkg.NewHTTPClient(httppkg.DefaultHTTPRetryConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		logger:     logger,
		serviceURL: serviceURL,
		httpClient: httpClient,
	}, nil
}

type lookupResponse struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"pfp_url"`
}

// LookupByAddress returns the identity for the address, or (nil, nil) when
// the service has none.
func (c *Client) LookupByAddress(ctx context.Context, address string) (*types.UpdateProfileIdentityRequest, error) {
	url := fmt.Sprintf("%s/api/identity/%s", c.serviceURL, address)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity lookup failed: status code %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	return &types.UpdateProfileIdentityRequest{
		UserAddress: address,
		FID:         body.FID,
		Username:    body.Username,
		DisplayName: body.DisplayName,
		AvatarURL:   body.AvatarURL,
	}, nil
}

// HealthCheck checks if the identity service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", c.serviceURL)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status code %d", resp.StatusCode)
	}
	return nil
}

// Close closes the HTTP client.
func (c *Client) Close() {
	c.httpClient.Close()
}
