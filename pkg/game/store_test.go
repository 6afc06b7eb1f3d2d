package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetIndexesPlayers(t *testing.T) {
	store := NewStore()

	_, ok := store.Get("game-1")
	assert.False(t, ok)

	newTestSession(t, store, "game-1", 2)

	session, ok := store.Get("game-1")
	require.True(t, ok)
	assert.Equal(t, "game-1", session.ID())

	gameID, ok := store.GameFor("A")
	require.True(t, ok)
	assert.Equal(t, "game-1", gameID)

	_, ok = store.GameFor("C")
	assert.False(t, ok)
}

func TestStore_ReleasePlayersKeepsSession(t *testing.T) {
	store := NewStore()
	newTestSession(t, store, "game-1", 2)

	store.ReleasePlayers("game-1")

	_, ok := store.GameFor("A")
	assert.False(t, ok)
	_, ok = store.GameFor("B")
	assert.False(t, ok)

	_, ok = store.Get("game-1")
	assert.True(t, ok, "released sessions stay queryable")
}

func TestStore_Delete(t *testing.T) {
	store := NewStore()
	newTestSession(t, store, "game-1", 2)

	store.Delete("game-1")

	_, ok := store.Get("game-1")
	assert.False(t, ok)
	_, ok = store.GameFor("A")
	assert.False(t, ok)
}

func TestStore_ReapRemovesOldFinishedSessions(t *testing.T) {
	store := NewStore()

	finished := newTestSession(t, store, "game-1", 2)
	_, err := finished.Finish()
	require.NoError(t, err)

	inProgress := newTestSession(t, store, "game-2", 2)

	// Zero retention makes every finished session stale.
	reaped := store.Reap(0)
	assert.Equal(t, []string{"game-1"}, reaped)

	_, ok := store.Get("game-1")
	assert.False(t, ok)
	_, ok = store.Get("game-2")
	assert.True(t, ok)

	// A fresh finished session survives a real retention window.
	_, err = inProgress.Finish()
	require.NoError(t, err)
	assert.Empty(t, store.Reap(time.Hour))
}
