package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: `""`},
		{name: "plain", input: "函數", want: `'函數'`},
		{name: "apostrophe and newline", input: "O'Brien\n", want: `'O\\'Brien\n'`},
		{name: "backslash", input: `a\b`, want: `'a\\b'`},
		{name: "control characters", input: "a\tb\r\nc", want: `'a\tb\r\nc'`},
		{name: "whitespace only is kept", input: " ", want: `' '`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.input))
		})
	}
}

func TestEscape_NewlineIsNotLiteral(t *testing.T) {
	got := Escape("line1\nline2")
	assert.NotContains(t, got, "\n")
	assert.Contains(t, got, `\n`)
}

func TestEscapeStrict(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: `""`},
		{name: "apostrophe and newline", input: "O'Brien\n", want: `'O\'Brien\n'`},
		{name: "backslash before quote", input: `a\'b`, want: `'a\\\'b'`},
		{name: "tab", input: "a\tb", want: `'a\tb'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeStrict(tt.input))
		})
	}
}

func TestEscape_DiffersFromStrictOnlyWithQuotes(t *testing.T) {
	for _, s := range []string{"plain", `back\slash`, "tab\tnew\nline"} {
		assert.Equal(t, EscapeStrict(s), Escape(s), s)
	}
	assert.NotEqual(t, EscapeStrict("it's"), Escape("it's"))
}
