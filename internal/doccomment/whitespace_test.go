package doccomment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only breaks", "\n\r\n\r", ""},
		{"crlf runs collapse", "a\r\n\r\n\r\nb", "a\n\nb"},
		{"lone cr", "a\rb\r\rc", "a\nb\n\nc"},
		{"single blank kept", "a\n\nb", "a\n\nb"},
		{"outer whitespace trimmed", "  \n\n a  \n\n\n  b \t\n", "a  \n\n  b"},
		{"space-only line is not blank", "a\n \n\nb", "a\n \n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWhitespace(tt.in))
		})
	}
}

func TestNormalizeWhitespace_Idempotent(t *testing.T) {
	inputs := []string{
		"\n\n\nSummary\n\n\n\n\nMore\r\n\r\n\r\n",
		"x \n\n\n y \n",
		"``` \ncode\n```\n\n\n### Example\n\n\nbody",
		"a\r\rb\r\n\r\nc",
	}
	for _, in := range inputs {
		once := NormalizeWhitespace(in)
		assert.Equal(t, once, NormalizeWhitespace(once))
		assert.NotContains(t, once, "\n\n\n")
	}
}

func TestTransform_NoDoubleBlankLines(t *testing.T) {
	raw := comment(
		"<summary>",
		"<para>One</para>",
		"",
		"<para>Two</para>",
		"</summary>",
		"<remarks><para>Three</para></remarks>",
		"<example>Ex</example>",
		`<exception cref="E">bad</exception>`,
	)
	res, err := Transform(Member{Comment: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.False(t, strings.Contains(res.Body, "\n\n\n"), "body has consecutive blank lines: %q", res.Body)
	assert.Equal(t, "One\n\nTwo\n\nThree\n\n### Example\n\nEx\n\n### Exception\n- E: bad", res.Body)
}
