package sdk

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestTwoDimTableRows(t *testing.T) {
	t.Parallel()

	const data = `{
		"name": "Scoring History",
		"columns": [
			{"name": "trees", "type": "long", "format": "%d"},
			{"name": "rmse", "type": "double", "format": "%.3f"},
			{"name": "note", "type": "string", "format": "%s"}
		],
		"data": [[0, 5, 10], [0.5, 0.41234, "NaN"], ["", null]],
		"rowcount": 3
	}`

	var table TwoDimTable
	if err := json.Unmarshal([]byte(data), &table); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got := table.Headers(); !slices.Equal(got, []string{"trees", "rmse", "note"}) {
		t.Fatalf("Headers() = %v", got)
	}

	want := [][]string{
		{"0", "0.500", ""},
		{"5", "0.412", ""},
		{"10", "NaN", ""},
	}
	got := table.Rows()
	if len(got) != len(want) {
		t.Fatalf("Rows() = %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Fatalf("Rows()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNilTwoDimTable(t *testing.T) {
	t.Parallel()

	var table *TwoDimTable
	if table.Headers() != nil || table.Rows() != nil {
		t.Fatalf("nil table rendered rows")
	}
}
