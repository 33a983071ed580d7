package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "info", want: slog.LevelInfo},
		{in: " DEBUG ", want: slog.LevelDebug},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "trace", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()

			got, err := parseLevel(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseLevel(%q) error = nil, want error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLevel(%q) error = %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestConfigureWriter(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	if err := ConfigureWriter(&buf, LevelWarn); err != nil {
		t.Fatalf("ConfigureWriter() error = %v", err)
	}
	slog.Info("hidden")
	slog.Warn("shown", "demo", "gbm")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record logged at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=shown demo=gbm") {
		t.Fatalf("warn record missing: %q", out)
	}

	if err := ConfigureWriter(&buf, "loud"); err == nil {
		t.Fatalf("ConfigureWriter(loud) error = nil, want error")
	}
}
