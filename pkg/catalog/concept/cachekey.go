package concept

import (
	"crypto/sha256"
	"encoding/hex"
)

// CacheKey computes the deterministic digest of (original_text,
// tokenizer_id, resolution tier, selection_policy) that identifies an
// optimization cache entry, per §3. The tier is part of the key, not just
// tokenizer/policy, because a hit resolved under a looser tier (e.g.
// fuzzy) is not a valid substitute for a request asking for a stricter one
// (e.g. exact): reusing it across tiers would change the optimizer's
// output, not just its latency.
func CacheKey(originalText, tokenizerID, tier, selectionPolicy string) string {
	h := sha256.New()
	h.Write([]byte(originalText))
	h.Write([]byte{0})
	h.Write([]byte(tokenizerID))
	h.Write([]byte{0})
	h.Write([]byte(tier))
	h.Write([]byte{0})
	h.Write([]byte(selectionPolicy))
	return hex.EncodeToString(h.Sum(nil))
}
