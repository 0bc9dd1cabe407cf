package format

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// TrailingNewlines trims trailing whitespace from text and appends exactly
// count newline characters.
func TrailingNewlines(text []byte, count int) []byte {
	trimmed := bytes.TrimRightFunc(text, unicode.IsSpace)
	out := make([]byte, 0, len(trimmed)+count)
	out = append(out, trimmed...)
	return append(out, strings.Repeat("\n", count)...)
}

// nonASCII drops every rune outside the ASCII range, invalid bytes included.
var nonASCII = runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII }))

// StripNonASCII removes all non-ASCII characters from text.
func StripNonASCII(text []byte) ([]byte, error) {
	out, _, err := transform.Bytes(nonASCII, text)
	if err != nil {
		return nil, err
	}
	return out, nil
}
