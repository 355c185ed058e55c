package optimizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/promptopt/pkg/catalog/concept"
	"github.com/codeready-toolchain/promptopt/pkg/catalog/pattern"
	"github.com/codeready-toolchain/promptopt/pkg/catalog/reviewqueue"
	"github.com/codeready-toolchain/promptopt/pkg/confidence"
	"github.com/codeready-toolchain/promptopt/pkg/overlap"
	"github.com/codeready-toolchain/promptopt/pkg/protect"
	"github.com/codeready-toolchain/promptopt/pkg/rewrite"
	"github.com/codeready-toolchain/promptopt/pkg/rewrite/conceptengine"
	"github.com/codeready-toolchain/promptopt/pkg/rewrite/patternengine"
	"github.com/codeready-toolchain/promptopt/pkg/tokenizer"
)

// minActivePatternConfidence is the base-confidence floor passed to
// LoadActive: patterns below it are not worth compiling a scan pass for.
const minActivePatternConfidence = 0.01

// Optimizer is the Pipeline Orchestrator (C9). It holds no per-request
// state; a single instance is safe to share across concurrent requests,
// per §5.
type Optimizer struct {
	Tokenizers  *tokenizer.Registry
	Patterns    pattern.Store
	Concepts    concept.Store
	ReviewQueue reviewqueue.Store // optional; nil disables review-queue materialization
}

// New builds an Optimizer over the given catalogs and tokenizer registry.
func New(tokenizers *tokenizer.Registry, patterns pattern.Store, concepts concept.Store) *Optimizer {
	return &Optimizer{Tokenizers: tokenizers, Patterns: patterns, Concepts: concepts}
}

// Optimize runs one request through §4.9's pipeline: §4.4 -> (§4.5, §4.6)
// -> §4.8 -> §4.7 -> post-process -> measure.
func (o *Optimizer) Optimize(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	tok, err := o.Tokenizers.Get(req.TokenizerID)
	if err != nil {
		return nil, &UnknownTokenizerError{TokenizerID: req.TokenizerID}
	}

	text := tokenizer.Sanitize(req.Prompt)

	rules, err := o.Patterns.LoadActive(ctx, minActivePatternConfidence)
	if err != nil {
		return nil, &ConfigurationError{Reason: "failed to load active pattern catalog", Err: err}
	}

	if err := checkDone(ctx); err != nil {
		return nil, err
	}

	protectionPolicy := req.ProtectionPolicy
	if protectionPolicy == "" {
		protectionPolicy = protect.PolicyConservative
	}
	protected := protect.Detect(text, protectionPolicy)

	if err := checkDone(ctx); err != nil {
		return nil, err
	}

	patternCandidates := patternengine.Run(rules, text, protected, tok, patternengine.Options{Aggressive: req.Aggressive})

	conceptTier := req.ConceptTier
	if conceptTier == "" {
		conceptTier = concept.TierNormalized
	}
	selectionPolicy := req.SelectionPolicy
	if selectionPolicy == "" {
		selectionPolicy = SelectionMinTokens
	}
	conceptCandidates := conceptengine.Run(ctx, o.Concepts, text, protected, tok, req.TokenizerID, conceptengine.Options{
		Tier:            conceptTier,
		OutputLanguage:  req.OutputLanguage,
		SelectionPolicy: conceptengine.SelectionPolicy(selectionPolicy),
	})

	if err := checkDone(ctx); err != nil {
		return nil, err
	}

	candidates := append(patternCandidates, conceptCandidates...)
	candidates = confidence.Calibrate(candidates, confidence.Context{Text: text, ProtectedSpans: protected})

	if err := checkDone(ctx); err != nil {
		return nil, err
	}

	resolved := overlap.Resolve(candidates, protected, req.effectiveThreshold())

	optimized := overlap.Apply(text, resolved.Applied)
	optimized = overlap.PostProcess(optimized)
	optimized = appendDirective(optimized, req.DirectiveFormat, req.OutputLanguage)

	if err := checkDone(ctx); err != nil {
		return nil, err
	}

	for _, c := range resolved.Applied {
		if c.Origin.PatternID != "" {
			if err := o.Patterns.RecordApplication(ctx, c.Origin.PatternID); err != nil {
				slog.Warn("failed to record pattern application", "pattern_id", c.Origin.PatternID, "error", err)
			}
		}
	}

	originalTokens := tok.Count(text)
	optimizedTokens := tok.Count(optimized)

	result := &Result{
		Original:        req.Prompt,
		Optimized:       optimized,
		OriginalTokens:  originalTokens,
		OptimizedTokens: optimizedTokens,
		Delta:           originalTokens - optimizedTokens,
		Applied:         toAppliedRewrites(resolved.Applied),
		Deferred:        toAppliedRewrites(resolved.Deferred),
	}
	if originalTokens > 0 {
		result.DeltaFraction = float64(result.Delta) / float64(originalTokens)
	}
	if len(result.Deferred) > 0 {
		result.ReviewSessionID = uuid.New().String()
		if o.ReviewQueue != nil {
			if err := o.ReviewQueue.Enqueue(ctx, toReviewEntries(result.ReviewSessionID, result.Deferred)); err != nil {
				slog.Warn("failed to materialize review queue entries", "review_session_id", result.ReviewSessionID, "error", err)
			}
		}
	}

	return result, nil
}

func toReviewEntries(sessionID string, deferred []AppliedRewrite) []reviewqueue.Entry {
	out := make([]reviewqueue.Entry, 0, len(deferred))
	for _, d := range deferred {
		out = append(out, reviewqueue.Entry{
			SessionID:       sessionID,
			Start:           d.Start,
			End:             d.End,
			SourceKind:      d.SourceKind,
			Replacement:     d.Replacement,
			FinalConfidence: d.FinalConfidence,
			PatternID:       d.PatternID,
			ConceptQID:      d.ConceptQID,
		})
	}
	return out
}

func checkDone(ctx context.Context) error {
	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return ErrCancelled
	default:
		return nil
	}
}

func validate(req Request) error {
	if req.Prompt == "" {
		return nil
	}
	if req.ConfidenceThreshold != 0 && (req.ConfidenceThreshold < 0 || req.ConfidenceThreshold > 1) {
		return &InvalidRequestError{Field: "confidence_threshold", Reason: "must be within [0,1]"}
	}
	return nil
}

func toAppliedRewrites(candidates []rewrite.Candidate) []AppliedRewrite {
	out := make([]AppliedRewrite, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, AppliedRewrite{
			Start:           c.Span.Start,
			End:             c.Span.End,
			SourceKind:      c.SourceKind,
			Replacement:     c.Replacement,
			FinalConfidence: c.FinalConfidence,
			PatternID:       c.Origin.PatternID,
			ConceptQID:      c.Origin.ConceptQID,
		})
	}
	return out
}

// appendDirective implements §6's directive formatting: appended after a
// single blank line following the optimized body.
func appendDirective(body string, format DirectiveFormat, outputLanguage string) string {
	if format == "" || format == DirectiveNone || outputLanguage == "" {
		return body
	}

	lang := outputLanguage
	titleLang := strings.ToUpper(lang[:1]) + lang[1:]

	var directive string
	switch format {
	case DirectiveBracketed:
		directive = fmt.Sprintf("[output_language: %s]", lang)
	case DirectiveInstructive:
		directive = fmt.Sprintf("Respond in %s.", titleLang)
	case DirectiveXML:
		directive = fmt.Sprintf("<output_language>%s</output_language>", lang)
	case DirectiveNatural:
		directive = fmt.Sprintf("Please respond in %s.", titleLang)
	default:
		return body
	}

	return body + "\n\n" + directive
}
