package tokenizer

// BytePairApproxTokenizer approximates byte-pair-encoding token density
// without loading a real BPE vocabulary: it buckets runs of the same
// "character class" (as SimpleTokenizer does) and then further splits any
// run longer than approxCharsPerToken characters, which is roughly the
// average characters-per-token ratio for English text in common subword
// vocabularies. It exists purely as a second deterministic, dependency-free
// tokenizer so tests can exercise tokenizer-dependent behavior (e.g.
// concept form selection, §4.6) against more than one identity.
type BytePairApproxTokenizer struct {
	approxCharsPerToken int
}

// NewBytePairApproxTokenizer builds the approximate tokenizer with the
// default 4-characters-per-token ratio.
func NewBytePairApproxTokenizer() *BytePairApproxTokenizer {
	return &BytePairApproxTokenizer{approxCharsPerToken: 4}
}

// Count implements Tokenizer.
func (b BytePairApproxTokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	runs := simpleTokenPattern.FindAllString(text, -1)
	total := 0
	for _, run := range runs {
		n := len([]rune(run))
		tokens := n / b.approxCharsPerToken
		if n%b.approxCharsPerToken != 0 {
			tokens++
		}
		if tokens == 0 {
			tokens = 1
		}
		total += tokens
	}
	return total
}
