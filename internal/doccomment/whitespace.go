package doccomment

import "strings"

// NormalizeWhitespace trims text, unifies line breaks and collapses every run
// of empty lines into a single one. Lines are kept as they are otherwise, so
// a line holding only spaces does not count as empty.
func NormalizeWhitespace(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := lines[:0]
	empty := 0
	for _, line := range lines {
		if line == "" {
			empty++
			if empty > 1 {
				continue
			}
		} else {
			empty = 0
		}
		out = append(out, line)
	}
	return strings.Join(out, lineBreak)
}
