package pattern

// minObservationsForEmpiricalMode is the §4.8 threshold: below this many
// total accept+reject observations, the update blends the prior base
// confidence with the observed acceptance rate; at or above it, the base
// confidence becomes the raw empirical acceptance rate.
const minObservationsForEmpiricalMode = 10

const (
	minBaseConfidence = 0.01
	maxBaseConfidence = 0.99
)

// ApplyFeedback computes the new (base_confidence, accepted_count,
// rejected_count) for a pattern after one feedback decision, per §4.8. A
// modify decision counts as a rejection of the current candidate (§9 Open
// Question, resolved: promotion of the user's alternative to a new pattern
// is a separate administrative action, not performed here).
//
// seedConfidence is the pattern's immutable authored prior (Pattern.SeedConfidence),
// not its last-computed BaseConfidence: the posterior is always a fresh
// blend of the original prior and the full evidence accumulated to date,
// weighted as 10 virtual prior observations, until the real observation
// count reaches 10 — at which point the prior drops out entirely and the
// base is the raw empirical acceptance rate. Recomputing from the last
// blended value instead of the original prior would make the base race
// toward 1.0 far faster than §8's literal examples call for.
//
// This is a pure function so both the in-memory and database-backed
// pattern stores share the exact same arithmetic and so it can be unit
// tested without any storage dependency.
func ApplyFeedback(seedConfidence float64, acceptedCount, rejectedCount int, decision Decision) (newBase float64, newAccepted, newRejected int) {
	newAccepted, newRejected = acceptedCount, rejectedCount
	switch decision {
	case DecisionAccept:
		newAccepted++
	case DecisionReject, DecisionModify:
		newRejected++
	default:
		newRejected++
	}

	total := newAccepted + newRejected
	if total < minObservationsForEmpiricalMode {
		newBase = (seedConfidence*10 + float64(newAccepted)) / float64(10+total)
	} else {
		newBase = float64(newAccepted) / float64(total)
	}

	newBase = clamp(newBase, minBaseConfidence, maxBaseConfidence)
	return newBase, newAccepted, newRejected
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
