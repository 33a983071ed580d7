package ui

import "testing"

func TestEnvTruthyValues(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "one", value: "1", want: true},
		{name: "true", value: "true", want: true},
		{name: "yes", value: "yes", want: true},
		{name: "on", value: "on", want: true},
		{name: "padded upper", value: " TRUE ", want: true},
		{name: "zero", value: "0", want: false},
		{name: "false", value: "false", want: false},
		{name: "empty", value: "", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("H2O_TEST_TRUTHY", tc.value)
			if got := envTruthy("H2O_TEST_TRUTHY"); got != tc.want {
				t.Fatalf("envTruthy() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDetectInteractiveModeOverrides(t *testing.T) {
	testCases := []struct {
		name          string
		noInteraction bool
		env           map[string]string
	}{
		{name: "flag", noInteraction: true},
		{name: "no interaction env", env: map[string]string{envNoInteraction: "1"}},
		{name: "ci", env: map[string]string{envCI: "true"}},
		{name: "dumb terminal", env: map[string]string{envTerm: "dumb"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(envNoInteraction, "")
			t.Setenv(envCI, "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if detectInteractiveMode(tc.noInteraction) {
				t.Fatal("detectInteractiveMode() = true, want false")
			}
		})
	}
}
