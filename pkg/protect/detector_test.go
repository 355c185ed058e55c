package protect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_FencedCodeBlockProtectedVerbatim(t *testing.T) {
	input := "Please analyze this function:\n\n```python\ndef f(x):\n    return x * 2\n```\n\nVerify correctness."
	spans := Detect(input, PolicyConservative)

	fenceStart := indexOf(input, "```python")
	fenceEnd := indexOf(input, "```\n\nVerify") + len("```\n")

	require.NotEmpty(t, spans)
	found := false
	for _, s := range spans {
		if s.Start <= fenceStart && s.End >= fenceEnd {
			found = true
			assert.Equal(t, input[s.Start:s.End], input[s.Start:s.End]) // verbatim by construction
		}
	}
	assert.True(t, found, "fenced block should be covered by a protected span")
}

func TestDetect_UnterminatedFenceProtectsToEnd(t *testing.T) {
	input := "before\n```\nunterminated code here"
	spans := Detect(input, PolicyConservative)
	require.Len(t, spans, 1)
	assert.Equal(t, len(input), spans[0].End)
}

func TestDetect_InlineCodeRequiresMatchingBacktickRunOnSameLine(t *testing.T) {
	input := "Use the `fmt.Println` function to print."
	spans := Detect(input, PolicyConservative)
	require.NotEmpty(t, spans)
	backtick := indexOf(input, "`fmt.Println`")
	assert.Equal(t, backtick, spans[0].Start)
}

func TestDetect_IdentifierCamelSnakeScreaming(t *testing.T) {
	input := "call getUserName then use user_id_value and MAX_RETRY_COUNT now."
	spans := Detect(input, PolicyConservative)

	assertCovered := func(token string) {
		idx := indexOf(input, token)
		require.GreaterOrEqual(t, idx, 0)
		covered := false
		for _, s := range spans {
			if s.Start <= idx && s.End >= idx+len(token) {
				covered = true
			}
		}
		assert.True(t, covered, "expected %q to be protected", token)
	}
	assertCovered("getUserName")
	assertCovered("user_id_value")
	assertCovered("MAX_RETRY_COUNT")
}

func TestDetect_QuotedLiteralOnlyUnderConservative(t *testing.T) {
	input := `set the title to "Hello World" please`
	conservative := Detect(input, PolicyConservative)
	aggressive := Detect(input, PolicyAggressive)

	quoteIdx := indexOf(input, `"Hello World"`)
	inConservative := false
	for _, s := range conservative {
		if s.Start <= quoteIdx && s.End >= quoteIdx+len(`"Hello World"`) {
			inConservative = true
		}
	}
	inAggressive := false
	for _, s := range aggressive {
		if s.Start <= quoteIdx && s.End >= quoteIdx+len(`"Hello World"`) {
			inAggressive = true
		}
	}
	assert.True(t, inConservative)
	assert.False(t, inAggressive)
}

func TestDetect_InstructionKeywordsBounded(t *testing.T) {
	input := "The response MUST be valid JSON and the format SHALL be REQUIRED."
	spans := Detect(input, PolicyConservative)

	for _, kw := range []string{"MUST", "JSON", "SHALL", "REQUIRED"} {
		idx := indexOf(input, kw)
		covered := false
		for _, s := range spans {
			if s.Start <= idx && s.End >= idx+len(kw) {
				covered = true
			}
		}
		assert.True(t, covered, "expected keyword %q to be protected", kw)
	}
}

func TestDetect_TemplateExpressionUnbalancedExtendsToEndOfLine(t *testing.T) {
	input := "render {{user.name but it is malformed\nnext line"
	spans := Detect(input, PolicyConservative)
	require.NotEmpty(t, spans)

	open := indexOf(input, "{{")
	eol := indexOf(input, "\n") + 1
	found := false
	for _, s := range spans {
		if s.Start == open && s.End == eol {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMerge_OverlappingSpansCombineAndDropKind(t *testing.T) {
	spans := Merge([]Span{
		{Start: 0, End: 5, Kind: KindIdentifier},
		{Start: 3, End: 8, Kind: KindURLOrPath},
	})
	require.Len(t, spans, 1)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 8, spans[0].End)
	assert.Equal(t, KindMerged, spans[0].Kind)
}

func TestMerge_NonOverlappingSpansStayDistinctWithOriginalKind(t *testing.T) {
	spans := Merge([]Span{
		{Start: 0, End: 2, Kind: KindIdentifier},
		{Start: 10, End: 12, Kind: KindURLOrPath},
	})
	require.Len(t, spans, 2)
	assert.Equal(t, KindIdentifier, spans[0].Kind)
	assert.Equal(t, KindURLOrPath, spans[1].Kind)
}

func TestDetect_IndentedCodeBlockRequiresPrecedingBlankLine(t *testing.T) {
	input := "intro text\n\n    indented.Line()\n    moreCode()\n\nafter text"
	spans := Detect(input, PolicyConservative)

	idx := indexOf(input, "    indented.Line()")
	covered := false
	for _, s := range spans {
		if s.Start <= idx && s.End > idx {
			covered = true
		}
	}
	assert.True(t, covered)
}

func TestSpan_Overlaps(t *testing.T) {
	a := Span{Start: 0, End: 5}
	b := Span{Start: 4, End: 10}
	c := Span{Start: 5, End: 10}
	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))
}
