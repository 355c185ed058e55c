package tokenizer

import "regexp"

// simpleTokenPattern approximates how most subword tokenizers split text:
// runs of word characters, runs of punctuation, and runs of whitespace are
// each their own token. It is deliberately crude — it exists so the
// optimizer is runnable and testable without an external tokenizer
// binding, not to model any real vocabulary.
var simpleTokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+|[^\s\p{L}\p{N}]+|\s+`)

// SimpleTokenizer counts tokens as whitespace/punctuation/word-run splits.
// Deterministic and byte-based, per the Tokenizer Registry contract.
type SimpleTokenizer struct{}

// NewSimpleTokenizer constructs a SimpleTokenizer.
func NewSimpleTokenizer() *SimpleTokenizer {
	return &SimpleTokenizer{}
}

// Count implements Tokenizer.
func (SimpleTokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(simpleTokenPattern.FindAllStringIndex(text, -1))
}

// Encode implements Encoder, returning the byte offset of each token's
// first rune as a stand-in token id. Not meaningful outside this package;
// provided only to exercise the optional Encoder capability end to end.
func (SimpleTokenizer) Encode(text string) []int {
	idx := simpleTokenPattern.FindAllStringIndex(text, -1)
	ids := make([]int, len(idx))
	for i, pair := range idx {
		ids[i] = pair[0]
	}
	return ids
}
