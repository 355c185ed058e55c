package tokenizer

import (
	"errors"
	"fmt"
)

// ErrUnknownTokenizer is returned by Registry.Get when no tokenizer is
// registered under the requested id.
var ErrUnknownTokenizer = errors.New("unknown tokenizer")

// UnknownTokenizerError wraps ErrUnknownTokenizer with the offending id so
// callers can report it on the wire without leaking prompt content.
type UnknownTokenizerError struct {
	ID string
}

func (e *UnknownTokenizerError) Error() string {
	return fmt.Sprintf("unknown tokenizer %q", e.ID)
}

func (e *UnknownTokenizerError) Unwrap() error {
	return ErrUnknownTokenizer
}
