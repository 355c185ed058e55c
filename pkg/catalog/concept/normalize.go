package concept

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize case-folds and whitespace-normalizes text and applies Unicode
// NFKC normalization, per the §4.3 "normalized" resolution tier. Runs of
// whitespace collapse to a single space and leading/trailing whitespace is
// trimmed, matching how labels are indexed at load time.
func Normalize(text string) string {
	folded := strings.ToLower(text)
	nfkc := norm.NFKC.String(folded)
	return collapseWhitespace(nfkc)
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastWasSpace := false
	for _, r := range strings.TrimSpace(s) {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if lastWasSpace {
				continue
			}
			lastWasSpace = true
			b.WriteByte(' ')
			continue
		}
		lastWasSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
