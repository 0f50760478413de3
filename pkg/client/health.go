package client

import "context"

// HealthStatus is the server's health probe response
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Health checks server liveness
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.doRequest(ctx, "GET", "/healthz", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ready checks server readiness including database connectivity
func (c *Client) Ready(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.doRequest(ctx, "GET", "/readyz", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
