// Package patternengine is the Pattern Engine (C5): it applies the active,
// compiled regex rule set to an input and emits candidate rewrites, per
// §4.5.
package patternengine

import (
	"github.com/codeready-toolchain/promptopt/pkg/catalog/pattern"
	"github.com/codeready-toolchain/promptopt/pkg/protect"
	"github.com/codeready-toolchain/promptopt/pkg/rewrite"
	"github.com/codeready-toolchain/promptopt/pkg/tokenizer"
)

// Options controls the dropping behavior of step 5 in §4.5.
type Options struct {
	Aggressive bool
}

// Run matches rules against text in catalog order, dropping matches that
// intersect a protected span or that do not save at least one token
// (unless Aggressive is set and the rule is structural), per §4.5.
func Run(rules []*pattern.Compiled, text string, protected []protect.Span, tok tokenizer.Tokenizer, opts Options) []rewrite.Candidate {
	var candidates []rewrite.Candidate

	for _, rule := range rules {
		for _, m := range nonOverlappingMatches(rule, text) {
			span := protect.Span{Start: m[0], End: m[1]}
			if protect.OverlapsAny(span, protected) {
				continue
			}

			matched := text[m[0]:m[1]]
			replacement := expandBackreferences(rule, text, m)

			delta := tok.Count(matched) - tok.Count(replacement)
			if delta <= 0 && !(opts.Aggressive && rule.Kind == pattern.KindStructural) {
				continue
			}

			candidates = append(candidates, rewrite.Candidate{
				Span:               span,
				SourceKind:         string(rule.Kind),
				Replacement:        replacement,
				BaseConfidence:     rule.BaseConfidence,
				Origin:             rewrite.Origin{PatternID: rule.ID},
				TokenDeltaEstimate: delta,
			})
		}
	}

	return candidates
}

// nonOverlappingMatches returns leftmost-longest, non-overlapping match
// index pairs for rule.Regex. Leftmost-longest is not Go regexp's default
// (leftmost-first/Perl-style) behavior; it only holds here because
// pattern.Compiled regexes are built via compile(), which calls
// Regex.Longest() once at compile time.
func nonOverlappingMatches(rule *pattern.Compiled, text string) [][]int {
	return rule.Regex.FindAllStringSubmatchIndex(text, -1)
}

// expandBackreferences renders rule.Replacement against one match using
// Go regexp's own $1/$name expansion semantics.
func expandBackreferences(rule *pattern.Compiled, text string, match []int) string {
	var dst []byte
	dst = rule.Regex.ExpandString(dst, rule.Replacement, text, match)
	return string(dst)
}
