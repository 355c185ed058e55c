// Package conceptengine is the Concept Engine (C6): it finds word runs
// that denote a known cross-lingual concept and proposes the cheapest
// surface form as a replacement, per §4.6.
package conceptengine

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/codeready-toolchain/promptopt/pkg/catalog/concept"
	"github.com/codeready-toolchain/promptopt/pkg/protect"
	"github.com/codeready-toolchain/promptopt/pkg/rewrite"
	"github.com/codeready-toolchain/promptopt/pkg/tokenizer"
)

// maxRunLength is the longest word run considered a concept candidate,
// per §4.6 step 1 (1-4 tokens).
const maxRunLength = 4

// SelectionPolicy chooses how forms tied at the minimum token_count break
// their tie, per §6's selection_policy request option. min_tokens ignores
// language entirely; same_language and prefer_original_language both
// prefer a match against the request's output_language, since this
// engine has no independent source-language detector to distinguish them.
type SelectionPolicy string

const (
	SelectionMinTokens              SelectionPolicy = "min_tokens"
	SelectionSameLanguage           SelectionPolicy = "same_language"
	SelectionPreferOriginalLanguage SelectionPolicy = "prefer_original_language"
)

// Options selects the resolution tier and surface-form tie-breaking
// preference for a single run, per §4.6 steps 2-3.
type Options struct {
	Tier            concept.Tier
	OutputLanguage  string
	SelectionPolicy SelectionPolicy
}

var wordRun = regexp.MustCompile(`\S+`)

// Run extracts 1-to-4-word candidate spans, excludes any touching a
// protected span, and resolves each against store, emitting one candidate
// rewrite per hit that is strictly cheaper than the source text, per §4.6.
func Run(ctx context.Context, store concept.Store, text string, protected []protect.Span, tok tokenizer.Tokenizer, tokenizerID string, opts Options) []rewrite.Candidate {
	words := wordRun.FindAllStringIndex(text, -1)
	var candidates []rewrite.Candidate

	for start := 0; start < len(words); start++ {
		for length := 1; length <= maxRunLength && start+length <= len(words); length++ {
			spanStart := words[start][0]
			spanEnd := words[start+length-1][1]
			span := protect.Span{Start: spanStart, End: spanEnd}
			if protect.OverlapsAny(span, protected) {
				continue
			}

			source := text[spanStart:spanEnd]
			qid, form, formTokens, confidence, ok := resolveWithCache(ctx, store, source, tokenizerID, opts)
			if !ok {
				continue
			}

			sourceTokens := tok.Count(source)
			if formTokens >= sourceTokens {
				continue
			}

			candidates = append(candidates, rewrite.Candidate{
				Span:               span,
				SourceKind:         "concept",
				Replacement:        form,
				BaseConfidence:     confidence,
				Origin:             rewrite.Origin{ConceptQID: qid},
				TokenDeltaEstimate: sourceTokens - formTokens,
			})
		}
	}

	return candidates
}

// resolveWithCache answers one candidate span's resolution, consulting the
// store's optimization cache before running ResolveLabel/FormsFor/
// pickCheapest, and populating the cache on a fresh resolution. A cache hit
// or miss never changes the result, only whether the full resolution path
// runs, per §3.
func resolveWithCache(ctx context.Context, store concept.Store, source, tokenizerID string, opts Options) (qid, form string, tokenCount int, confidence float64, ok bool) {
	key := concept.CacheKey(source, tokenizerID, string(opts.Tier), string(opts.SelectionPolicy))

	if entry, err := store.CacheLookup(ctx, key); err == nil && entry != nil {
		return entry.ConceptQID, entry.SelectedForm, entry.TokenCount, entry.Confidence, true
	}

	resolvedQID, resolved, err := store.ResolveLabel(ctx, source, opts.Tier)
	if err != nil || !resolved {
		return "", "", 0, 0, false
	}

	forms, err := store.FormsFor(ctx, resolvedQID, tokenizerID)
	if err != nil || len(forms) == 0 {
		return "", "", 0, 0, false
	}
	best := pickCheapest(forms, opts.OutputLanguage, opts.SelectionPolicy)
	baseConfidence := concept.BaseConfidenceForTier(opts.Tier)

	if err := store.CacheStore(ctx, concept.CacheEntry{
		Key:             key,
		OriginalText:    source,
		ConceptQID:      resolvedQID,
		SelectedForm:    best.Form,
		TokenCount:      best.TokenCount,
		Confidence:      baseConfidence,
		SelectionPolicy: string(opts.SelectionPolicy),
	}); err != nil {
		slog.Warn("concept cache store failed, continuing without caching this resolution", "error", err)
	}

	return resolvedQID, best.Form, best.TokenCount, baseConfidence, true
}

// pickCheapest implements §4.6 step 3's tie-break: minimum token_count,
// then same language as the request's output_language, then shorter
// char_count. forms must already be sorted by token_count ascending
// (the Store contract).
func pickCheapest(forms []concept.SurfaceForm, outputLanguage string, policy SelectionPolicy) concept.SurfaceForm {
	considerLanguage := policy == SelectionSameLanguage || policy == SelectionPreferOriginalLanguage
	best := forms[0]
	for _, f := range forms[1:] {
		if f.TokenCount != best.TokenCount {
			break
		}
		if better(f, best, outputLanguage, considerLanguage) {
			best = f
		}
	}
	return best
}

func better(candidate, current concept.SurfaceForm, outputLanguage string, considerLanguage bool) bool {
	if considerLanguage {
		candidateMatches := outputLanguage != "" && candidate.LanguageTag == outputLanguage
		currentMatches := outputLanguage != "" && current.LanguageTag == outputLanguage
		if candidateMatches != currentMatches {
			return candidateMatches
		}
	}
	return candidate.CharCount < current.CharCount
}
