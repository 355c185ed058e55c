package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/promptopt/pkg/catalog/concept"
	"github.com/codeready-toolchain/promptopt/pkg/catalog/pattern"
	"github.com/codeready-toolchain/promptopt/pkg/tokenizer"
)

func newTestOptimizer(t *testing.T) (*Optimizer, pattern.Store) {
	t.Helper()
	registry := tokenizer.NewDefaultRegistry()
	patterns := pattern.NewMemStore()
	concepts := concept.NewMemStore()

	_, err := patterns.CreatePattern(context.Background(), pattern.Pattern{
		ID:             "p1",
		Kind:           pattern.KindFiller,
		Regex:          `please note that `,
		Replacement:    "",
		SeedConfidence: 0.95,
		BaseConfidence: 0.95,
		Enabled:        true,
	})
	require.NoError(t, err)

	return New(registry, patterns, concepts), patterns
}

func TestOptimize_AppliesHighConfidencePatternAndReportsDelta(t *testing.T) {
	opt, _ := newTestOptimizer(t)

	result, err := opt.Optimize(context.Background(), Request{
		Prompt:              "please note that the deployment failed",
		TokenizerID:         "simple",
		ConfidenceThreshold: 0.85,
	})

	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Greater(t, result.Delta, 0)
	assert.NotContains(t, result.Optimized, "please note that")
}

func TestOptimize_UnknownTokenizerReturnsTypedError(t *testing.T) {
	opt, _ := newTestOptimizer(t)

	_, err := opt.Optimize(context.Background(), Request{
		Prompt:      "hello",
		TokenizerID: "does-not-exist",
	})

	require.Error(t, err)
	var unknownErr *UnknownTokenizerError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestOptimize_EmptyActiveRuleSetReturnsInputUnchanged(t *testing.T) {
	registry := tokenizer.NewDefaultRegistry()
	opt := New(registry, pattern.NewMemStore(), concept.NewMemStore())

	result, err := opt.Optimize(context.Background(), Request{
		Prompt:      "nothing to change here",
		TokenizerID: "simple",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Delta)
	assert.Empty(t, result.Applied)
}

func TestOptimize_ProtectedSpanPreventsRewrite(t *testing.T) {
	opt, _ := newTestOptimizer(t)

	result, err := opt.Optimize(context.Background(), Request{
		Prompt:              "`please note that ` this stays verbatim",
		TokenizerID:         "simple",
		ConfidenceThreshold: 0.85,
	})

	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	assert.Contains(t, result.Optimized, "please note that")
}

func TestOptimize_CancelledContextReturnsCancelled(t *testing.T) {
	opt, _ := newTestOptimizer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := opt.Optimize(ctx, Request{
		Prompt:      "please note that something happened",
		TokenizerID: "simple",
	})

	assert.ErrorIs(t, err, ErrCancelled)
}

func TestOptimize_DirectiveAppendedPerFormat(t *testing.T) {
	opt, _ := newTestOptimizer(t)

	result, err := opt.Optimize(context.Background(), Request{
		Prompt:          "hello there",
		TokenizerID:     "simple",
		OutputLanguage:  "spanish",
		DirectiveFormat: DirectiveBracketed,
	})

	require.NoError(t, err)
	assert.Contains(t, result.Optimized, "[output_language: spanish]")
}

func TestAppendDirective_NoneOmitsDirective(t *testing.T) {
	out := appendDirective("body text", DirectiveNone, "spanish")
	assert.Equal(t, "body text", out)
}

// TestOptimize_Scenario1_BoilerplateRemovalBracketedDirective pins the
// boilerplate-removal-plus-directive worked example: a single rule strips
// the appreciative preamble and the bracketed directive is appended.
func TestOptimize_Scenario1_BoilerplateRemovalBracketedDirective(t *testing.T) {
	registry := tokenizer.NewDefaultRegistry()
	patterns := pattern.NewMemStore()
	_, err := patterns.CreatePattern(context.Background(), pattern.Pattern{
		ID:             "boilerplate-appreciate-help",
		Kind:           pattern.KindBoilerplate,
		Regex:          `I would really appreciate it if you could help`,
		Replacement:    "Help",
		SeedConfidence: 0.95,
		BaseConfidence: 0.95,
		Enabled:        true,
	})
	require.NoError(t, err)
	opt := New(registry, patterns, concept.NewMemStore())

	result, err := opt.Optimize(context.Background(), Request{
		Prompt:              "I would really appreciate it if you could help me with this task.",
		TokenizerID:         "simple",
		OutputLanguage:      "english",
		ConfidenceThreshold: 0.85,
		DirectiveFormat:     DirectiveBracketed,
	})

	require.NoError(t, err)
	assert.Equal(t, "Help me with this task.\n\n[output_language: english]", result.Optimized)
	assert.Greater(t, result.Delta, 0)
}

// TestOptimize_Scenario2_ProtectedCodeBlockSurvivesVerbatim pins the
// fenced-code-block protection example: the fence and its interior appear
// byte-for-byte in the optimized output.
func TestOptimize_Scenario2_ProtectedCodeBlockSurvivesVerbatim(t *testing.T) {
	registry := tokenizer.NewDefaultRegistry()
	opt := New(registry, pattern.NewMemStore(), concept.NewMemStore())

	fence := "```python\ndef f(x): return x * 2\n```\n"
	prompt := "Please analyze this function:\n\n" + fence + "\nVerify correctness."

	result, err := opt.Optimize(context.Background(), Request{
		Prompt:      prompt,
		TokenizerID: "simple",
	})

	require.NoError(t, err)
	assert.Contains(t, result.Optimized, fence)
}

// TestOptimize_Scenario3_SubThresholdCandidateIsDeferredNotApplied pins
// the threshold-gating example: a rule at base=0.70 against threshold=0.85
// lands in Deferred, and the optimized text is unchanged.
func TestOptimize_Scenario3_SubThresholdCandidateIsDeferredNotApplied(t *testing.T) {
	registry := tokenizer.NewDefaultRegistry()
	patterns := pattern.NewMemStore()
	_, err := patterns.CreatePattern(context.Background(), pattern.Pattern{
		ID:             "redundant-please-note",
		Kind:           pattern.KindRedundant,
		Regex:          `please note that `,
		Replacement:    "",
		SeedConfidence: 0.70,
		BaseConfidence: 0.70,
		Enabled:        true,
	})
	require.NoError(t, err)
	opt := New(registry, patterns, concept.NewMemStore())

	prompt := "please note that the deployment failed"
	result, err := opt.Optimize(context.Background(), Request{
		Prompt:              prompt,
		TokenizerID:         "simple",
		ConfidenceThreshold: 0.85,
	})

	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	require.Len(t, result.Deferred, 1)
	assert.Equal(t, prompt, result.Optimized)
}

// TestOptimize_Scenario4_ConceptSubstitutionSkippedWhenNotCheaper pins the
// concept-substitution example: a surface form that does not strictly
// reduce token count is never proposed as a rewrite.
func TestOptimize_Scenario4_ConceptSubstitutionSkippedWhenNotCheaper(t *testing.T) {
	registry := tokenizer.NewDefaultRegistry()
	concepts := concept.NewMemStore()
	_, err := concepts.CreateConcept(context.Background(), concept.Concept{QID: "Q-GREET", CanonicalLabel: "good morning"})
	require.NoError(t, err)
	_, err = concepts.AddSurfaceForm(context.Background(), concept.SurfaceForm{
		ConceptQID: "Q-GREET", TokenizerID: "simple", LanguageTag: "en", Form: "hi there", TokenCount: 3, CharCount: 8,
	})
	require.NoError(t, err)
	opt := New(registry, pattern.NewMemStore(), concepts)

	prompt := "good morning to you"
	result, err := opt.Optimize(context.Background(), Request{
		Prompt:      prompt,
		TokenizerID: "simple",
	})

	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	assert.Equal(t, prompt, result.Optimized)
}

// TestOptimize_Scenario6_HigherDeltaCandidateDisplacesOverlappingLowerOne
// pins the overlap-resolution example: of two overlapping, above-threshold
// candidates, only the higher-token-delta one is selected, and the other
// is displaced entirely rather than deferred.
func TestOptimize_Scenario6_HigherDeltaCandidateDisplacesOverlappingLowerOne(t *testing.T) {
	registry := tokenizer.NewDefaultRegistry()
	patterns := pattern.NewMemStore()
	_, err := patterns.CreatePattern(context.Background(), pattern.Pattern{
		ID:             "a-alpha-beta",
		Kind:           pattern.KindRedundant,
		Regex:          `alpha beta`,
		Replacement:    "",
		SeedConfidence: 0.90,
		BaseConfidence: 0.90,
		Enabled:        true,
	})
	require.NoError(t, err)
	_, err = patterns.CreatePattern(context.Background(), pattern.Pattern{
		ID:             "b-beta-gamma-delta",
		Kind:           pattern.KindRedundant,
		Regex:          `beta gamma delta`,
		Replacement:    "",
		SeedConfidence: 0.88,
		BaseConfidence: 0.88,
		Enabled:        true,
	})
	require.NoError(t, err)
	opt := New(registry, patterns, concept.NewMemStore())

	result, err := opt.Optimize(context.Background(), Request{
		Prompt:              "alpha beta gamma delta",
		TokenizerID:         "simple",
		ConfidenceThreshold: 0.85,
	})

	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "b-beta-gamma-delta", result.Applied[0].PatternID)
	assert.Empty(t, result.Deferred)
}
