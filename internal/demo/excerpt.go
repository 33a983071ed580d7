package demo

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"h2o/internal/ui"
)

// MaxBlankRun bounds how many consecutive blank lines an excerpt scan
// accepts before giving up.
const MaxBlankRun = 5

// checkpointCall matches a bare checkpoint call such as "checkpoint()" or
// "s.Checkpoint()", which always ends the block being echoed.
var checkpointCall = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*\.)?[Cc]heckpoint\(\)$`)

// LineKind tells a new statement apart from a continuation of the previous one.
type LineKind int

const (
	Statement LineKind = iota
	Continuation
)

// Line is one display-ready line of an echoed block.
type Line struct {
	Text    string
	Kind    LineKind
	Comment bool
}

func (l Line) blank() bool {
	return strings.TrimSpace(l.Text) == ""
}

// Render returns the line with its prompt and style applied.
func (l Line) Render() string {
	prompt := ">>> "
	if l.Kind == Continuation {
		prompt = "... "
	}
	style := ui.CodeStyle
	if l.Comment {
		style = ui.CommentStyle
	}
	if l.Text == "" {
		return ui.PromptStyle.Render(prompt)
	}
	return ui.PromptStyle.Render(prompt) + style.Render(l.Text)
}

// Excerpt collects the block that starts at lines[0]. A line belongs to the
// block while its first indent bytes are whitespace. The scan ends at the
// first dedented line, at a bare checkpoint call, or once more than
// MaxBlankRun consecutive blank lines were seen. Trailing blank lines are
// never part of the result, whatever ended the scan.
func Excerpt(lines []string, indent int) []Line {
	var out []Line
	blankRun := 0
	for _, raw := range lines {
		raw = strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(head(raw, indent)) != "" {
			break
		}

		text := tail(raw, indent)
		if checkpointCall.MatchString(text) {
			break
		}
		if text == "" {
			blankRun++
			if blankRun > MaxBlankRun {
				break
			}
			out = append(out, Line{})
			continue
		}
		blankRun = 0
		out = append(out, classify(text))
	}

	for len(out) > 0 && out[len(out)-1].blank() {
		out = out[:len(out)-1]
	}
	return out
}

// ReadExcerpt reads the source file at path and returns the block following
// the checkpoint on the given 1-based line. indent is the checkpoint call's
// indentation width.
func ReadExcerpt(path string, line, indent int) ([]Line, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read excerpt: %w", err)
	}
	lines := strings.Split(string(data), "\n")
	if line < 1 || line > len(lines) {
		return nil, fmt.Errorf("read excerpt: line %d out of range in %s", line, path)
	}
	return Excerpt(lines[line:], indent), nil
}

// Indent returns the width of the leading whitespace of s.
func Indent(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

// formatBlock turns an author-provided block of display text into lines.
// Leading blank lines are skipped and the block's common indentation is the
// scan threshold.
func formatBlock(text string) []Line {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return nil
	}
	return Excerpt(lines, commonIndent(lines))
}

func classify(text string) Line {
	l := Line{Text: text, Kind: Statement}
	if text[0] == ' ' || text[0] == '\t' {
		l.Kind = Continuation
	}
	trimmed := strings.TrimSpace(text)
	l.Comment = strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#")
	return l
}

func commonIndent(lines []string) int {
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if n := Indent(l); indent < 0 || n < indent {
			indent = n
		}
	}
	if indent < 0 {
		return 0
	}
	return indent
}

func head(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

func tail(s string, n int) string {
	if len(s) < n {
		return ""
	}
	return s[n:]
}
