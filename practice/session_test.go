package practice

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCards(n int) []Card {
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, Card{
			ID:       uint(i + 1),
			PublicID: string(rune('a' + i)),
			Front:    "front",
			Back:     "back",
		})
	}
	return cards
}

func TestNewEmptyDeck(t *testing.T) {
	_, err := New(1, 1, nil, true)
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestNewShufflePreservesCards(t *testing.T) {
	cards := testCards(20)
	session, err := New(1, 1, cards, true)
	require.NoError(t, err)
	require.Len(t, session.Cards, 20)

	ids := make([]int, 0, 20)
	for _, c := range session.Cards {
		ids = append(ids, int(c.ID))
	}
	sort.Ints(ids)
	for i, id := range ids {
		assert.Equal(t, i+1, id)
	}
}

func TestWalk(t *testing.T) {
	session, err := New(1, 1, testCards(2), false)
	require.NoError(t, err)

	current, ok := session.Current()
	require.True(t, ok)
	assert.Equal(t, uint(1), current.ID)
	assert.Equal(t, 2, session.Remaining())

	// Answering before reveal is an error and changes nothing.
	err = session.Answer(OutcomeKnown)
	assert.ErrorIs(t, err, ErrNotRevealed)
	assert.Equal(t, 0, session.Known)

	require.NoError(t, session.Reveal())
	assert.True(t, session.Revealed)
	assert.Equal(t, 1, session.Viewed)

	// Revealing again does not double-count.
	require.NoError(t, session.Reveal())
	assert.Equal(t, 1, session.Viewed)

	assert.ErrorIs(t, session.Answer(Outcome("easy")), ErrBadOutcome)

	require.NoError(t, session.Answer(OutcomeKnown))
	assert.Equal(t, 1, session.Known)
	assert.False(t, session.Revealed, "reveal flag resets per card")
	assert.False(t, session.Done())

	require.NoError(t, session.Reveal())
	require.NoError(t, session.Answer(OutcomeHard))
	assert.Equal(t, 1, session.Hard)
	assert.True(t, session.Done())
	assert.Equal(t, 2, session.Viewed)

	assert.Equal(t, OutcomeKnown, session.Outcomes[1])
	assert.Equal(t, OutcomeHard, session.Outcomes[2])

	_, ok = session.Current()
	assert.False(t, ok)
	assert.ErrorIs(t, session.Reveal(), ErrFinished)
	assert.ErrorIs(t, session.Answer(OutcomeKnown), ErrFinished)
}
