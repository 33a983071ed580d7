package demo

import (
	"strings"
	"unicode/utf8"
)

// FormatHeader turns a demo description into framed header lines: outer
// blank lines dropped, common indentation removed, and a rule of '-' as wide
// as the longest line above and below. An empty description has no header.
func FormatHeader(desc string) []string {
	lines := strings.Split(strings.ReplaceAll(desc, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}

	strip := commonIndent(lines)
	width := 0
	body := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimRight(tail(l, strip), " \t")
		body = append(body, l)
		width = max(width, utf8.RuneCountInString(l))
	}

	rule := strings.Repeat("-", width)
	out := make([]string, 0, len(body)+2)
	out = append(out, rule)
	out = append(out, body...)
	return append(out, rule)
}
