package matchmaking

import "sync"

// ErrAlreadyQueued is returned when a player enqueues while already waiting.
type ErrAlreadyQueued struct{}

func (e *ErrAlreadyQueued) Error() string {
	return "player is already queued"
}

// Pair is a freshly formed match of the two longest-waiting players.
type Pair struct {
	PlayerA string
	PlayerB string
}

// Queue is the FIFO matchmaking queue. A single mutex serializes every
// operation on one queue instance: checking the queue length and popping
// both members of a pair must be one indivisible action, otherwise the
// same player could be paired twice or a third arrival lost.
type Queue struct {
	lock    sync.Mutex
	waiting []string
	members map[string]struct{}
}

// NewQueue creates an empty matchmaking queue.
func NewQueue() *Queue {
	return &Queue{
		members: make(map[string]struct{}),
	}
}

// Enqueue appends a player and pops every pair that can now form, FIFO.
// Normal arrivals yield zero or one pair; a queue deepened by Requeue
// can yield more. A player already waiting is rejected with
// ErrAlreadyQueued.
func (q *Queue) Enqueue(playerID string) ([]Pair, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if _, ok := q.members[playerID]; ok {
		return nil, &ErrAlreadyQueued{}
	}

	q.waiting = append(q.waiting, playerID)
	q.members[playerID] = struct{}{}

	var pairs []Pair
	for len(q.waiting) >= 2 {
		pair := Pair{
			PlayerA: q.waiting[0],
			PlayerB: q.waiting[1],
		}
		q.waiting = q.waiting[2:]
		delete(q.members, pair.PlayerA)
		delete(q.members, pair.PlayerB)
		pairs = append(pairs, pair)
	}

	return pairs, nil
}

// Remove drops a player that disconnected before pairing. The relative
// order of the remaining entries is preserved.
func (q *Queue) Remove(playerID string) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	if _, ok := q.members[playerID]; !ok {
		return false
	}

	for i, waiting := range q.waiting {
		if waiting == playerID {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			break
		}
	}
	delete(q.members, playerID)
	return true
}

// Requeue returns a failed pair to the queue head, preserving their
// original arrival order, so they are matched first when possible again.
// It never forms pairs itself; the next Enqueue does.
func (q *Queue) Requeue(pair Pair) {
	q.lock.Lock()
	defer q.lock.Unlock()

	head := make([]string, 0, len(q.waiting)+2)
	if _, ok := q.members[pair.PlayerA]; !ok {
		head = append(head, pair.PlayerA)
		q.members[pair.PlayerA] = struct{}{}
	}
	if _, ok := q.members[pair.PlayerB]; !ok {
		head = append(head, pair.PlayerB)
		q.members[pair.PlayerB] = struct{}{}
	}
	q.waiting = append(head, q.waiting...)
}

// Contains reports whether a player is currently waiting.
func (q *Queue) Contains(playerID string) bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	_, ok := q.members[playerID]
	return ok
}

// Len returns the number of waiting players.
func (q *Queue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.waiting)
}
