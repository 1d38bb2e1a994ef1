// Package textutils provides description normalization and statement
// decoding helpers shared by the parsers and the reconciliation engine.
package textutils

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeStatement converts raw statement bytes to a string. UTF-8 (with or
// without BOM) is preferred; anything else is decoded as ISO8859-1, which
// covers the cp1252/latin-1 exports Brazilian banks produce.
func DecodeStatement(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// NormalizeDescription computes the canonical projection of a transaction
// description used for all matching: case-folded, punctuation stripped,
// whitespace collapsed. Deterministic; compute once and reuse.
func NormalizeDescription(description string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, description)
	return strings.Join(strings.Fields(mapped), " ")
}
