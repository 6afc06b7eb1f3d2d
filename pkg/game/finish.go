package game

// Finalizer transitions sessions to Finished and reports final scores.
type Finalizer struct {
	store *Store
}

// NewFinalizer creates a Finalizer over a session store.
func NewFinalizer(store *Store) *Finalizer {
	return &Finalizer{
		store: store,
	}
}

// Finish ends an in-progress session and returns the final per-player
// scores. Finishing an unknown game returns ErrGameNotFound; finishing a
// session that is not in progress returns ErrGameNotActive, which callers
// may treat as a benign repeat. The finished session stays queryable, but
// its participants are released to queue again.
func (f *Finalizer) Finish(gameID string) (map[string]int, error) {
	session, ok := f.store.Get(gameID)
	if !ok {
		return nil, &ErrGameNotFound{}
	}

	scores, err := session.Finish()
	if err != nil {
		return nil, err
	}

	f.store.ReleasePlayers(gameID)

	return scores, nil
}
