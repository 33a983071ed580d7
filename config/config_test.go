package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CurrentContext != "" || len(cfg.Contexts) != 0 {
		t.Fatalf("Load() = %+v, want empty config", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := &Config{}
	cfg.Set("local", Context{URL: "http://localhost:54321"})
	cfg.Set("prod", Context{URL: "https://h2o.example.com", Username: "ada", Password: "secret"})
	if err := cfg.Use("prod"); err != nil {
		t.Fatalf("Use() error = %v", err)
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "h2o", "config.yaml"))
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("config mode = %o, want 600", perm)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	name, ctx, ok := loaded.Current()
	if !ok || name != "prod" || ctx.Username != "ada" || ctx.URL != "https://h2o.example.com" {
		t.Fatalf("Current() = %q %+v %v", name, ctx, ok)
	}
}

func TestRemoveCurrentClearsSelection(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Set("local", Context{URL: "http://localhost:54321"})
	if err := cfg.Use("local"); err != nil {
		t.Fatalf("Use() error = %v", err)
	}
	if err := cfg.Remove("local"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, _, ok := cfg.Current(); ok {
		t.Fatalf("Current() still set after removing it")
	}
	if err := cfg.Remove("local"); !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("Remove() error = %v, want ErrContextNotFound", err)
	}
	if err := cfg.Use("nope"); !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("Use() error = %v, want ErrContextNotFound", err)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		CurrentContext: "local",
		Contexts: map[string]Context{
			"local": {URL: "http://localhost:54321"},
			"prod":  {URL: "https://h2o.example.com", Username: "ada", Password: "secret"},
		},
	}

	tests := []struct {
		name        string
		cfg         *Config
		env         Env
		flagURL     string
		flagContext string
		want        Target
		wantErr     error
	}{
		{
			name: "current context",
			cfg:  cfg,
			want: Target{Context: "local", URL: "http://localhost:54321"},
		},
		{
			name: "default without contexts",
			cfg:  &Config{},
			want: Target{URL: DefaultURL},
		},
		{
			name:        "flag context over env context",
			cfg:         cfg,
			env:         Env{Context: "local"},
			flagContext: "prod",
			want:        Target{Context: "prod", URL: "https://h2o.example.com", Username: "ada", Password: "secret"},
		},
		{
			name: "env context over current",
			cfg:  cfg,
			env:  Env{Context: "prod"},
			want: Target{Context: "prod", URL: "https://h2o.example.com", Username: "ada", Password: "secret"},
		},
		{
			name: "env url over context url",
			cfg:  cfg,
			env:  Env{URL: "http://10.0.0.5:54321"},
			want: Target{Context: "local", URL: "http://10.0.0.5:54321"},
		},
		{
			name:    "flag url over env url",
			cfg:     cfg,
			env:     Env{URL: "http://10.0.0.5:54321"},
			flagURL: "http://10.0.0.6:54321",
			want:    Target{Context: "local", URL: "http://10.0.0.6:54321"},
		},
		{
			name:        "env credentials override context",
			cfg:         cfg,
			env:         Env{Username: "grace", Password: "hunter2"},
			flagContext: "prod",
			want:        Target{Context: "prod", URL: "https://h2o.example.com", Username: "grace", Password: "hunter2"},
		},
		{
			name:        "unknown context",
			cfg:         cfg,
			flagContext: "staging",
			wantErr:     ErrContextNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.cfg.Resolve(tc.env, tc.flagURL, tc.flagContext)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("Resolve() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("H2O_URL", "http://h2o:54321")
	t.Setenv("H2O_CONTEXT", "prod")
	t.Setenv("H2O_DATA_DIR", "/srv/h2o_data")
	t.Setenv("H2O_USERNAME", "")
	t.Setenv("H2O_PASSWORD", "")
	t.Setenv("H2O_LOG_LEVEL", "debug")

	e, err := ParseEnv()
	if err != nil {
		t.Fatalf("ParseEnv() error = %v", err)
	}
	want := Env{URL: "http://h2o:54321", Context: "prod", DataDir: "/srv/h2o_data", LogLevel: "debug"}
	if e != want {
		t.Fatalf("ParseEnv() = %+v, want %+v", e, want)
	}
}
