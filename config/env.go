package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DefaultURL is used when neither flags, environment nor contexts name a
// server.
const DefaultURL = "http://localhost:54321"

// Env holds the environment overrides.
type Env struct {
	URL      string `env:"H2O_URL"`
	Context  string `env:"H2O_CONTEXT"`
	Username string `env:"H2O_USERNAME"`
	Password string `env:"H2O_PASSWORD"`
	DataDir  string `env:"H2O_DATA_DIR"`
	LogLevel string `env:"H2O_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads the environment overrides.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Target is a resolved server connection.
type Target struct {
	// Context is the name of the context used, empty if none.
	Context  string
	URL      string
	Username string
	Password string
}

// Resolve picks the server to talk to. The URL comes from, in order: the
// flag, H2O_URL, the context named by the flag or H2O_CONTEXT, the current
// context, DefaultURL. H2O_USERNAME and H2O_PASSWORD override context
// credentials.
func (c *Config) Resolve(e Env, flagURL, flagContext string) (Target, error) {
	var t Target

	name := flagContext
	if name == "" {
		name = e.Context
	}
	switch {
	case name != "":
		ctx, ok := c.Contexts[name]
		if !ok {
			return Target{}, fmt.Errorf("resolve %q: %w", name, ErrContextNotFound)
		}
		t = Target{Context: name, URL: ctx.URL, Username: ctx.Username, Password: ctx.Password}
	default:
		if name, ctx, ok := c.Current(); ok {
			t = Target{Context: name, URL: ctx.URL, Username: ctx.Username, Password: ctx.Password}
		}
	}

	switch {
	case flagURL != "":
		t.URL = flagURL
	case e.URL != "":
		t.URL = e.URL
	case t.URL == "":
		t.URL = DefaultURL
	}
	if e.Username != "" {
		t.Username = e.Username
	}
	if e.Password != "" {
		t.Password = e.Password
	}
	return t, nil
}
