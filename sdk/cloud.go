package sdk

import (
	"context"
	"fmt"
)

// Cloud describes the H2O cluster behind the client.
type Cloud struct {
	Version   string `json:"version"`
	Name      string `json:"cloud_name"`
	Size      int    `json:"cloud_size"`
	Healthy   bool   `json:"cloud_healthy"`
	Consensus bool   `json:"consensus"`
	Locked    bool   `json:"locked"`
	Uptime    int64  `json:"cloud_uptime_millis"`
}

// Cloud returns the cluster status.
func (c *Client) Cloud(ctx context.Context) (*Cloud, error) {
	var cloud Cloud
	if err := c.API(ctx, "GET /3/Cloud", nil, &cloud); err != nil {
		return nil, err
	}
	return &cloud, nil
}

// Ping checks that the server answers and reports a healthy cloud.
func (c *Client) Ping(ctx context.Context) (*Cloud, error) {
	cloud, err := c.Cloud(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", c.URL(), err)
	}
	if !cloud.Healthy {
		return cloud, fmt.Errorf("connect to %s: %w", c.URL(), ErrCloudUnhealthy)
	}
	return cloud, nil
}
