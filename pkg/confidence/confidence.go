// Package confidence is the Confidence Calibrator (C8): it derives a
// candidate's final_confidence from its catalog base_confidence and the
// local context it was found in, per §4.8.
package confidence

import (
	"math"
	"strings"

	"github.com/codeready-toolchain/promptopt/pkg/protect"
	"github.com/codeready-toolchain/promptopt/pkg/rewrite"
)

// maxContextPenalty bounds the context-penalty term; frequencyBonusCap and
// frequencyBonusK are the cap and scale of the frequency-bonus term.
const (
	maxContextPenalty = 0.5
	frequencyBonusCap = 0.2
	frequencyBonusK   = 0.05
)

// contextWindow is how many bytes on each side of a candidate span count
// as "near" a risk signal for the context_penalty term.
const contextWindow = 40

// Context carries the information final_confidence needs beyond the
// candidate itself: the full text (to inspect surrounding context) and
// the protected spans already found by the detector (a candidate "near
// quoted content" is read as near a quoted-literal, instruction-keyword, or
// merged protected span).
type Context struct {
	Text          string
	ProtectedSpans []protect.Span
	CorpusFreq    int
}

// Calibrate sets FinalConfidence on each candidate in place and also
// returns the slice, per §4.8.
func Calibrate(candidates []rewrite.Candidate, ctx Context) []rewrite.Candidate {
	for i := range candidates {
		c := &candidates[i]
		penalty := contextPenalty(c.Span, ctx)
		bonus := frequencyBonus(ctx.CorpusFreq)
		risk := semanticRisk(c.SourceKind, c.Span)

		final := c.BaseConfidence * (1 - penalty) * (1 + bonus) * (1 - risk)
		c.FinalConfidence = clamp(final, 0, 1)
	}
	return candidates
}

// contextPenalty implements the risk(context) term: a candidate whose
// window overlaps a quoted-literal, instruction-keyword, or merged protected span
// (after the detector's own overlap exclusion has already dropped direct
// intersections) is penalized for proximity, scaled by how close it is.
func contextPenalty(span protect.Span, ctx Context) float64 {
	windowStart := span.Start - contextWindow
	if windowStart < 0 {
		windowStart = 0
	}
	windowEnd := span.End + contextWindow
	if windowEnd > len(ctx.Text) {
		windowEnd = len(ctx.Text)
	}
	window := protect.Span{Start: windowStart, End: windowEnd}

	penalty := 0.0
	for _, p := range ctx.ProtectedSpans {
		if p.Kind != protect.KindQuotedLiteral && p.Kind != protect.KindInstructionWord && p.Kind != protect.KindMerged {
			continue
		}
		if !window.Overlaps(p) {
			continue
		}
		distance := gapBetween(span, p)
		proximity := 1 - float64(distance)/float64(contextWindow)
		if proximity < 0 {
			proximity = 0
		}
		risk := maxContextPenalty * proximity
		if risk > penalty {
			penalty = risk
		}
	}
	return penalty
}

// gapBetween returns the number of bytes separating two spans, 0 if they
// overlap or touch.
func gapBetween(a, b protect.Span) int {
	if a.End <= b.Start {
		return b.Start - a.End
	}
	if b.End <= a.Start {
		return a.Start - b.End
	}
	return 0
}

// frequencyBonus implements clamp(log10(max(1, corpus_freq)) * 0.05, 0, 0.2).
func frequencyBonus(corpusFreq int) float64 {
	freq := corpusFreq
	if freq < 1 {
		freq = 1
	}
	bonus := math.Log10(float64(freq)) * frequencyBonusK
	return clamp(bonus, 0, frequencyBonusCap)
}

// semanticRisk is higher for longer structural rewrites: a structural
// rewrite spanning many characters is more likely to change the
// instruction's meaning than a short filler deletion, per §4.8's
// "higher for long structural rewrites" guidance.
func semanticRisk(sourceKind string, span protect.Span) float64 {
	if !strings.EqualFold(sourceKind, "structural") {
		return 0
	}
	length := span.End - span.Start
	switch {
	case length <= 20:
		return 0.05
	case length <= 60:
		return 0.15
	default:
		return 0.3
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
