// Package tokenizer maps a tokenizer identity to a counting capability.
//
// A Tokenizer is deterministic and byte-based: repeated calls to Count with
// the same input must return the same value within a process. Tokenizers
// that cannot guarantee this (streaming, sampling-based) are out of scope
// per the module's non-goals.
package tokenizer

import "strings"

// Tokenizer exposes the minimum capability the optimizer core requires:
// counting how many tokens a string costs under some vocabulary. Counting
// must never panic, including on malformed UTF-8 — callers sanitize with
// Sanitize before handing text to an implementation that cannot cope.
type Tokenizer interface {
	Count(text string) int
}

// Encoder is an optional capability: a Tokenizer may also expose the token
// id sequence, but nothing in the optimizer core requires it.
type Encoder interface {
	Encode(text string) []int
}

// Sanitize replaces invalid UTF-8 byte sequences with the Unicode
// replacement character so that Count implementations never have to
// reason about malformed input themselves.
func Sanitize(text string) string {
	return strings.ToValidUTF8(text, "�")
}
