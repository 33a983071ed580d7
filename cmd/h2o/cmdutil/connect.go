// Package cmdutil holds helpers shared by the h2o subcommands.
package cmdutil

import (
	"context"
	"fmt"
	"log/slog"

	"h2o/config"
	"h2o/sdk"
)

// DefaultURL is the server used when nothing else is configured.
const DefaultURL = config.DefaultURL

// Flags are the root connection flags.
type Flags struct {
	URL     string
	Context string
}

// Env returns the environment overrides.
func Env() (config.Env, error) {
	return config.ParseEnv()
}

// Resolve works out which server the flags, environment and contexts point to.
func Resolve(flags *Flags) (config.Target, error) {
	env, err := Env()
	if err != nil {
		return config.Target{}, err
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Target{}, err
	}

	var url, name string
	if flags != nil {
		url, name = flags.URL, flags.Context
	}
	return cfg.Resolve(env, url, name)
}

// NewClient builds a client for the resolved server without contacting it.
func NewClient(flags *Flags, opts ...sdk.ClientOption) (*sdk.Client, error) {
	target, err := Resolve(flags)
	if err != nil {
		return nil, err
	}
	if target.Username != "" {
		opts = append(opts, sdk.WithBasicAuth(target.Username, target.Password))
	}
	client, err := sdk.NewClient(target.URL, opts...)
	if err != nil {
		return nil, err
	}
	slog.Debug("Resolved h2o server.", "url", client.URL(), "context", target.Context)
	return client, nil
}

// Connect builds a client and checks that the server is healthy.
func Connect(ctx context.Context, flags *Flags, opts ...sdk.ClientOption) (*sdk.Client, *sdk.Cloud, error) {
	client, err := NewClient(flags, opts...)
	if err != nil {
		return nil, nil, err
	}
	cloud, err := client.Ping(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (is H2O running? set --url or H2O_URL)", err)
	}
	return client, cloud, nil
}
