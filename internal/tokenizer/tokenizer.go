// Package tokenizer turns raw text into normalised word tokens. The
// Tokenizer interface keeps tokenisation pluggable; Simple is the default
// used across the engine.
package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenizer produces a finite sequence of normalised tokens from raw text.
// Implementations never fail; empty text yields an empty slice.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Simple lower-cases the input and extracts maximal runs of word characters
// (letters, digits, underscore). Everything else is a separator. No
// stemming, no stop-word removal.
type Simple struct{}

// NewSimple returns the default tokenizer.
func NewSimple() Simple {
	return Simple{}
}

// Tokenize implements Tokenizer.
func (Simple) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}
