// Package overlap is the Overlap Resolver (C7): it selects a
// non-overlapping, token-delta-maximizing subset of candidate rewrites,
// splices them into the text, and performs the post-processing pass of
// §4.7.
package overlap

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/codeready-toolchain/promptopt/pkg/protect"
	"github.com/codeready-toolchain/promptopt/pkg/rewrite"
)

// minConfidenceFloor is the lower bound below which a candidate is
// discarded outright rather than deferred, per §4.9's "minimum-confidence
// floor" language describing the deferred queue's lower edge.
const minConfidenceFloor = 0.50

// Result is the outcome of resolving and applying a candidate set.
type Result struct {
	Applied  []rewrite.Candidate
	Deferred []rewrite.Candidate
}

// Resolve filters candidates against protected spans and the acceptance
// threshold, selects the overlap-free subset maximizing total
// TokenDeltaEstimate, and returns it alongside the deferred-for-review
// queue, per §4.7.
func Resolve(candidates []rewrite.Candidate, protected []protect.Span, threshold float64) Result {
	var eligible, deferred []rewrite.Candidate
	for _, c := range candidates {
		if protect.OverlapsAny(c.Span, protected) {
			continue
		}
		if c.FinalConfidence < threshold {
			if c.FinalConfidence >= minConfidenceFloor {
				deferred = append(deferred, c)
			}
			continue
		}
		eligible = append(eligible, c)
	}

	selected := selectNonOverlapping(eligible)
	return Result{Applied: selected, Deferred: deferred}
}

// selectNonOverlapping implements the §4.7 selection algorithm: sort by
// span end ascending, weighted-interval-scheduling DP with a binary-search
// predecessor, maximizing summed TokenDeltaEstimate. Ties are broken by
// higher summed confidence, then fewer rewrites; a tie that remains keeps
// the solution without the later-ending candidate, which does not always
// give the lexicographically earliest sequence of span starts.
func selectNonOverlapping(candidates []rewrite.Candidate) []rewrite.Candidate {
	n := len(candidates)
	if n == 0 {
		return nil
	}

	sorted := make([]rewrite.Candidate, n)
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Span.End != sorted[j].Span.End {
			return sorted[i].Span.End < sorted[j].Span.End
		}
		return sorted[i].Span.Start < sorted[j].Span.Start
	})

	pred := make([]int, n) // -1 if none
	for i := 0; i < n; i++ {
		pred[i] = predecessor(sorted, i)
	}

	type state struct {
		value      int
		confidence float64
		count      int
	}
	// dp[i] holds the best state using sorted[0:i] (exclusive), per the
	// classic weighted-interval-scheduling recurrence.
	dp := make([]state, n+1)
	take := make([]bool, n)

	for i := 1; i <= n; i++ {
		c := sorted[i-1]
		withoutI := dp[i-1]

		predState := state{}
		if pred[i-1] >= 0 {
			predState = dp[pred[i-1]+1]
		}
		withI := state{
			value:      predState.value + c.TokenDeltaEstimate,
			confidence: predState.confidence + c.FinalConfidence,
			count:      predState.count + 1,
		}

		if better(withI, withoutI) {
			dp[i] = withI
			take[i-1] = true
		} else {
			dp[i] = withoutI
			take[i-1] = false
		}
	}

	var selected []rewrite.Candidate
	for i := n; i > 0; {
		if take[i-1] {
			selected = append(selected, sorted[i-1])
			if pred[i-1] >= 0 {
				i = pred[i-1] + 1
			} else {
				i = 0
			}
		} else {
			i--
		}
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].Span.Start < selected[j].Span.Start })
	return selected
}

// better reports whether a is preferred over b under the §4.7 tie-break
// chain: total token delta, then summed confidence, then fewer rewrites.
// Fully equal states return false, so the DP keeps the state without the
// current (later-ending) candidate. This is deterministic but does not
// compare span starts: for equal-weight [2,5) and [0,8), [2,5) is kept.
func better(a, b struct {
	value      int
	confidence float64
	count      int
}) bool {
	if a.value != b.value {
		return a.value > b.value
	}
	if a.confidence != b.confidence {
		return a.confidence > b.confidence
	}
	return a.count < b.count
}

// predecessor returns the largest index j < i such that sorted[j].Span.End
// <= sorted[i].Span.Start, found by binary search, or -1 if none.
func predecessor(sorted []rewrite.Candidate, i int) int {
	lo, hi := 0, i-1
	result := -1
	target := sorted[i].Span.Start
	for lo <= hi {
		mid := (lo + hi) / 2
		if sorted[mid].Span.End <= target {
			result = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return result
}

// Apply splices the selected candidates into text in descending order of
// span start so earlier spans remain valid as later ones are spliced, per
// §4.7.
func Apply(text string, applied []rewrite.Candidate) string {
	ordered := make([]rewrite.Candidate, len(applied))
	copy(ordered, applied)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Span.Start > ordered[j].Span.Start })

	out := text
	for _, c := range ordered {
		if c.Span.Start < 0 || c.Span.End > len(out) || c.Span.Start > c.Span.End {
			continue
		}
		candidate := out[:c.Span.Start] + c.Replacement + out[c.Span.End:]
		if !utf8.ValidString(candidate) {
			continue
		}
		out = candidate
	}
	return out
}

var horizontalWhitespace = " \t"

// PostProcess implements §4.7's post-processing pass: collapse runs of
// horizontal whitespace to a single space, preserve line breaks, trim
// trailing whitespace on each line, and re-capitalize the first
// alphabetic character following sentence-ending punctuation.
func PostProcess(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(collapseHorizontalWhitespace(line), horizontalWhitespace)
	}
	joined := strings.Join(lines, "\n")
	return recapitalizeAfterSentenceEnd(joined)
}

func collapseHorizontalWhitespace(line string) string {
	var b strings.Builder
	inRun := false
	for _, r := range line {
		if r == ' ' || r == '\t' {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

// recapitalizeAfterSentenceEnd uppercases the first letter following a
// '.', '!', or '?' and one or more whitespace characters.
func recapitalizeAfterSentenceEnd(text string) string {
	runes := []rune(text)
	sentenceEnd := false
	sawSpace := false
	for i, r := range runes {
		switch {
		case r == '.' || r == '!' || r == '?':
			sentenceEnd = true
			sawSpace = false
		case unicode.IsSpace(r):
			if sentenceEnd {
				sawSpace = true
			}
		case unicode.IsLetter(r):
			if sentenceEnd && sawSpace {
				runes[i] = unicode.ToUpper(r)
			}
			sentenceEnd = false
			sawSpace = false
		default:
			sentenceEnd = false
			sawSpace = false
		}
	}
	return string(runes)
}
