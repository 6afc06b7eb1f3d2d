package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizer_Finish(t *testing.T) {
	store := NewStore()
	newTestSession(t, store, "game-1", 5)
	processor := NewAnswerProcessor(store, newTestSource(5))
	finalizer := NewFinalizer(store)

	_, err := processor.SubmitAnswer("A", "game-1", "q1", "right")
	require.NoError(t, err)
	_, err = processor.SubmitAnswer("B", "game-1", "q1", "wrong1")
	require.NoError(t, err)

	scores, err := finalizer.Finish("game-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 12, "B": -4}, scores)

	// The finished session stays queryable, but its players are free.
	session, ok := store.Get("game-1")
	require.True(t, ok)
	assert.Equal(t, StatusFinished, session.Status())
	_, inGame := store.GameFor("A")
	assert.False(t, inGame)

	// Further answers are rejected without touching the scores.
	_, err = processor.SubmitAnswer("A", "game-1", "q2", "right")
	assert.IsType(t, &ErrGameNotActive{}, err)
	assert.Equal(t, map[string]int{"A": 12, "B": -4}, session.Scores())
}

func TestFinalizer_FinishTwice(t *testing.T) {
	store := NewStore()
	newTestSession(t, store, "game-1", 5)
	finalizer := NewFinalizer(store)

	first, err := finalizer.Finish("game-1")
	require.NoError(t, err)

	_, err = finalizer.Finish("game-1")
	require.Error(t, err)
	assert.IsType(t, &ErrGameNotActive{}, err)

	session, ok := store.Get("game-1")
	require.True(t, ok)
	assert.Equal(t, first, session.Scores())
}

func TestFinalizer_UnknownGame(t *testing.T) {
	finalizer := NewFinalizer(NewStore())

	_, err := finalizer.Finish("no-such-game")
	require.Error(t, err)
	assert.IsType(t, &ErrGameNotFound{}, err)
}
