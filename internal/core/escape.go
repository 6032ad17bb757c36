package core

import "strings"

// EscapeFunc renders a string as a Cypher string literal.
type EscapeFunc func(string) string

// legacyReplacers run in sequence: quote, then backslash, then control
// characters. The backslash inserted for a quote is doubled by the second
// pass; output must stay byte-identical to previously generated scripts.
var legacyReplacers = []*strings.Replacer{
	strings.NewReplacer(`'`, `\'`),
	strings.NewReplacer(`\`, `\\`),
	strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`),
}

var strictReplacer = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Escape quotes s as a single-quoted literal. The empty string becomes "".
//
//	Escape("O'Brien\n") == `'O\\'Brien\n'`
func Escape(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range legacyReplacers {
		s = r.Replace(s)
	}
	return "'" + s + "'"
}

// EscapeStrict is Escape with the backslash escaped first, which yields a
// literal that Cypher parses back to s.
//
//	EscapeStrict("O'Brien\n") == `'O\'Brien\n'`
func EscapeStrict(s string) string {
	if s == "" {
		return `""`
	}
	return "'" + strictReplacer.Replace(s) + "'"
}
