// Package textclean turns markup-laden free text into a single plain line.
package textclean

import (
	"regexp"
	"strings"
)

// markupTag matches an element tag. An unclosed tag runs to the end of the input.
var markupTag = regexp.MustCompile(`<[^>]*(>|$)`)

// Normalize strips markup, replaces &nbsp; with a space, collapses every run
// of whitespace into a single space and trims the result.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	s = markupTag.ReplaceAllString(s, "")
	// A stray '>' left after stripping is never text the caller wants.
	s = strings.ReplaceAll(s, ">", "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")

	// strings.Fields splits on unicode.IsSpace, so U+00A0 collapses too.
	return strings.Join(strings.Fields(s), " ")
}
