package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codeready-toolchain/promptopt/pkg/protect"
	"github.com/codeready-toolchain/promptopt/pkg/rewrite"
)

func TestCalibrate_NoRiskSignalsKeepsBaseConfidence(t *testing.T) {
	text := "this sentence has a filler phrase in it somewhere far from anything risky"
	candidates := []rewrite.Candidate{
		{Span: protect.Span{Start: 5, End: 13}, SourceKind: "filler", BaseConfidence: 0.8},
	}

	out := Calibrate(candidates, Context{Text: text})
	assert.InDelta(t, 0.8, out[0].FinalConfidence, 0.001)
}

func TestCalibrate_ProximityToQuotedLiteralPenalizes(t *testing.T) {
	text := `set the title to "Hello" then note that it matters`
	candidates := []rewrite.Candidate{
		{Span: protect.Span{Start: 26, End: 40}, SourceKind: "filler", BaseConfidence: 0.8},
	}
	ctx := Context{
		Text:           text,
		ProtectedSpans: []protect.Span{{Start: 18, End: 25, Kind: protect.KindQuotedLiteral}},
	}

	out := Calibrate(candidates, ctx)
	assert.Less(t, out[0].FinalConfidence, 0.8)
}

func TestCalibrate_LongStructuralRewriteIncursSemanticRisk(t *testing.T) {
	text := "a long structural rewrite candidate spanning many characters in total"
	candidates := []rewrite.Candidate{
		{Span: protect.Span{Start: 0, End: len(text)}, SourceKind: "structural", BaseConfidence: 0.9},
	}

	out := Calibrate(candidates, Context{Text: text})
	assert.Less(t, out[0].FinalConfidence, 0.9)
}

func TestCalibrate_FrequencyBonusIncreasesConfidenceUpToCap(t *testing.T) {
	text := "short text"
	low := Calibrate([]rewrite.Candidate{{Span: protect.Span{Start: 0, End: 5}, SourceKind: "filler", BaseConfidence: 0.5}}, Context{Text: text, CorpusFreq: 1})
	high := Calibrate([]rewrite.Candidate{{Span: protect.Span{Start: 0, End: 5}, SourceKind: "filler", BaseConfidence: 0.5}}, Context{Text: text, CorpusFreq: 1000000})

	assert.Greater(t, high[0].FinalConfidence, low[0].FinalConfidence)
}

func TestCalibrate_ClampsToOne(t *testing.T) {
	text := "short text"
	out := Calibrate([]rewrite.Candidate{{Span: protect.Span{Start: 0, End: 5}, SourceKind: "filler", BaseConfidence: 0.99}}, Context{Text: text, CorpusFreq: 1000000})
	assert.LessOrEqual(t, out[0].FinalConfidence, 1.0)
}
