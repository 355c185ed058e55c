package pattern

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPattern(store *MemStore, t *testing.T, id string, kind Kind, regex, repl string, conf float64) {
	t.Helper()
	_, err := store.CreatePattern(context.Background(), Pattern{
		ID:             id,
		Kind:           kind,
		Regex:          regex,
		Replacement:    repl,
		BaseConfidence: conf,
	})
	require.NoError(t, err)
}

func TestMemStore_LoadActive_SortedByConfidenceThenID(t *testing.T) {
	s := NewMemStore()
	seedPattern(s, t, "b", KindFiller, `\bum\b`, "", 0.90)
	seedPattern(s, t, "a", KindFiller, `\buh\b`, "", 0.90)
	seedPattern(s, t, "c", KindBoilerplate, `please`, "", 0.95)

	active, err := s.LoadActive(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "c", active[0].ID)
	assert.Equal(t, "a", active[1].ID)
	assert.Equal(t, "b", active[2].ID)
}

func TestMemStore_LoadActive_FiltersBelowMinConfidence(t *testing.T) {
	s := NewMemStore()
	seedPattern(s, t, "low", KindFiller, `x`, "", 0.20)
	seedPattern(s, t, "high", KindFiller, `y`, "", 0.95)

	active, err := s.LoadActive(context.Background(), 0.5)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "high", active[0].ID)
}

func TestMemStore_LoadActive_SkipsUnparsableRegex(t *testing.T) {
	s := NewMemStore()
	seedPattern(s, t, "bad", KindFiller, `[unterminated`, "", 0.9)
	seedPattern(s, t, "good", KindFiller, `fine`, "", 0.9)

	active, err := s.LoadActive(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "good", active[0].ID)
}

func TestMemStore_CreatePattern_RejectsDuplicateKindAndRegex(t *testing.T) {
	s := NewMemStore()
	seedPattern(s, t, "first", KindFiller, `dup`, "", 0.9)

	_, err := s.CreatePattern(context.Background(), Pattern{
		ID:             "second",
		Kind:           KindFiller,
		Regex:          `dup`,
		BaseConfidence: 0.5,
	})
	assert.ErrorIs(t, err, ErrDuplicateRule)
}

func TestMemStore_RecordFeedback_UpdatesConfidenceAndCounters(t *testing.T) {
	s := NewMemStore()
	seedPattern(s, t, "p1", KindFiller, `x`, "", 0.80)

	require.NoError(t, s.RecordFeedback(context.Background(), Feedback{
		PatternID: "p1",
		Decision:  DecisionAccept,
	}))

	active, err := s.LoadActive(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 1, active[0].AcceptedCount)
	assert.Greater(t, active[0].BaseConfidence, 0.80)
}

func TestMemStore_DisablePattern_RemovesFromActiveSet(t *testing.T) {
	s := NewMemStore()
	seedPattern(s, t, "p1", KindFiller, `x`, "", 0.9)

	require.NoError(t, s.DisablePattern(context.Background(), "p1"))

	active, err := s.LoadActive(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestMemStore_RecordApplication_UnknownIDErrors(t *testing.T) {
	s := NewMemStore()
	err := s.RecordApplication(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
