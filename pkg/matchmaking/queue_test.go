package matchmaking

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PairsFIFO(t *testing.T) {
	q := NewQueue()

	pairs, err := q.Enqueue("A")
	require.NoError(t, err)
	assert.Empty(t, pairs)
	assert.Equal(t, 1, q.Len())

	pairs, err = q.Enqueue("B")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "A", pairs[0].PlayerA)
	assert.Equal(t, "B", pairs[0].PlayerB)
	assert.Equal(t, 0, q.Len())

	pairs, err = q.Enqueue("C")
	require.NoError(t, err)
	assert.Empty(t, pairs)

	pairs, err = q.Enqueue("D")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "C", pairs[0].PlayerA)
	assert.Equal(t, "D", pairs[0].PlayerB)
}

func TestQueue_RejectsDuplicate(t *testing.T) {
	q := NewQueue()

	_, err := q.Enqueue("A")
	require.NoError(t, err)

	_, err = q.Enqueue("A")
	require.Error(t, err)
	assert.IsType(t, &ErrAlreadyQueued{}, err)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_RemovePreservesOrder(t *testing.T) {
	q := NewQueue()

	// Pairing pops entries as soon as two are waiting, so a queue
	// deeper than one only arises through Requeue.
	_, err := q.Enqueue("C")
	require.NoError(t, err)
	q.Requeue(Pair{PlayerA: "A", PlayerB: "B"})
	require.Equal(t, 3, q.Len())

	assert.True(t, q.Remove("B"))
	assert.False(t, q.Remove("B"))
	assert.Equal(t, 2, q.Len())

	// A and C keep their relative order and pair with each other,
	// leaving the newcomer waiting.
	pairs, err := q.Enqueue("D")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "A", pairs[0].PlayerA)
	assert.Equal(t, "C", pairs[0].PlayerB)
	assert.Equal(t, 1, q.Len())
	assert.True(t, q.Contains("D"))
}

func TestQueue_RequeueGoesToHead(t *testing.T) {
	q := NewQueue()

	_, err := q.Enqueue("C")
	require.NoError(t, err)

	q.Requeue(Pair{PlayerA: "A", PlayerB: "B"})
	assert.Equal(t, 3, q.Len())
	assert.True(t, q.Contains("A"))

	// The next arrival drains the queue: the requeued pair first, then
	// C with the newcomer.
	pairs, err := q.Enqueue("D")
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "A", pairs[0].PlayerA)
	assert.Equal(t, "B", pairs[0].PlayerB)
	assert.Equal(t, "C", pairs[1].PlayerA)
	assert.Equal(t, "D", pairs[1].PlayerB)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_ConcurrentEnqueuesPairEveryoneOnce(t *testing.T) {
	q := NewQueue()

	const players = 100

	var lock sync.Mutex
	paired := make(map[string]int)

	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pairs, err := q.Enqueue(fmt.Sprintf("player-%d", i))
			assert.NoError(t, err)
			lock.Lock()
			defer lock.Unlock()
			for _, pair := range pairs {
				paired[pair.PlayerA]++
				paired[pair.PlayerB]++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, q.Len())
	assert.Len(t, paired, players)
	for playerID, count := range paired {
		assert.Equal(t, 1, count, "player %s paired %d times", playerID, count)
	}
}
