package demo

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestExcerpt(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		lines  []string
		indent int
		want   []Line
	}{
		{
			name: "blank run bounded and trimmed",
			lines: []string{
				"# Show the model",
				"model.Show()",
				"", "", "", "", "", "",
				"never()",
			},
			want: []Line{
				{Text: "# Show the model", Comment: true},
				{Text: "model.Show()"},
			},
		},
		{
			name: "stops at dedent",
			lines: []string{
				"    // Build a model",
				"    model, err := client.Train(ctx, \"gbm\",",
				"        spec)",
				"",
				"",
				"done()",
			},
			indent: 4,
			want: []Line{
				{Text: "// Build a model", Comment: true},
				{Text: "model, err := client.Train(ctx, \"gbm\","},
				{Text: "    spec)", Kind: Continuation},
			},
		},
		{
			name: "stops at checkpoint call",
			lines: []string{
				"\tfirst()",
				"\ts.Checkpoint()",
				"\tsecond()",
			},
			indent: 1,
			want:   []Line{{Text: "first()"}},
		},
		{
			name: "keeps inner blank lines",
			lines: []string{
				"a()",
				"",
				"b()",
				"checkpoint()",
			},
			want: []Line{{Text: "a()"}, {}, {Text: "b()"}},
		},
		{
			name:   "whitespace only lines count as blank",
			lines:  []string{"  x", "     ", "  \t", "y"},
			indent: 2,
			want:   []Line{{Text: "x"}},
		},
		{
			name:  "empty input",
			lines: nil,
			want:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Excerpt(tc.lines, tc.indent)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Excerpt() = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestExcerptBlankBoundDoesNotDependOnStopReason(t *testing.T) {
	t.Parallel()

	// Four blanks then a dedent: the scan stops on the dedent, and every
	// trailing blank is still dropped.
	lines := []string{"  a()", "", "", "", "", "b()"}
	got := Excerpt(lines, 2)
	if len(got) != 1 || got[0].Text != "a()" {
		t.Fatalf("Excerpt() = %#v, want only a()", got)
	}
}

func TestLineRender(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		line Line
		want string
	}{
		{name: "statement", line: Line{Text: "x := 1"}, want: ">>> x := 1"},
		{name: "continuation", line: Line{Text: "  y)", Kind: Continuation}, want: "...   y)"},
		{name: "comment", line: Line{Text: "// note", Comment: true}, want: ">>> // note"},
		{name: "blank", line: Line{}, want: ">>> "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.line.Render(); got != tc.want {
				t.Fatalf("Render() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReadExcerpt(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"func body(s *Session) {",
		"\ts.Checkpoint()",
		"\t// Upload the data",
		"\tupload()",
		"",
		"\ts.Checkpoint()",
		"\tsummary()",
		"}",
	}, "\n")
	path := filepath.Join(t.TempDir(), "body.go")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadExcerpt(path, 2, Indent("\ts.Checkpoint()"))
	if err != nil {
		t.Fatalf("ReadExcerpt() error = %v", err)
	}
	want := []Line{
		{Text: "// Upload the data", Comment: true},
		{Text: "upload()"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadExcerpt() = %#v, want %#v", got, want)
	}

	if _, err := ReadExcerpt(path, 99, 1); err == nil {
		t.Fatal("ReadExcerpt() out of range error = nil")
	}
	if _, err := ReadExcerpt(filepath.Join(t.TempDir(), "missing.go"), 1, 0); err == nil {
		t.Fatal("ReadExcerpt() missing file error = nil")
	}
}

func TestFormatBlockUsesCommonIndent(t *testing.T) {
	t.Parallel()

	got := formatBlock(`
		// Split the data
		train, test, err := prostate.Split(ctx,
			0.70)
	`)
	want := []Line{
		{Text: "// Split the data", Comment: true},
		{Text: "train, test, err := prostate.Split(ctx,"},
		{Text: "\t0.70)", Kind: Continuation},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("formatBlock() = %#v, want %#v", got, want)
	}
}
