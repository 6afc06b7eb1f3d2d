package game

import (
	"sync"
	"time"
)

// Store owns all live sessions, keyed by game id. It also tracks which
// session each player belongs to, so a player can never be a member of
// two sessions at once. Sessions are inserted only after full
// initialization, which makes creation happen-before any lookup by id.
type Store struct {
	lock     sync.RWMutex
	sessions map[string]*Session
	players  map[string]string
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		players:  make(map[string]string),
	}
}

// Put inserts a fully initialized session and indexes its players.
func (s *Store) Put(session *Session) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.sessions[session.ID()] = session
	for _, playerID := range session.Players() {
		s.players[playerID] = session.ID()
	}
}

// Get retrieves a session by game id.
func (s *Store) Get(gameID string) (*Session, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	session, ok := s.sessions[gameID]
	return session, ok
}

// GameFor returns the game id a player is currently playing in, if any.
func (s *Store) GameFor(playerID string) (string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	gameID, ok := s.players[playerID]
	return gameID, ok
}

// ReleasePlayers drops the player index entries of a session, freeing its
// participants to queue again. The session itself stays queryable by id
// for late score reads.
func (s *Store) ReleasePlayers(gameID string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	session, ok := s.sessions[gameID]
	if !ok {
		return
	}
	for _, playerID := range session.Players() {
		if s.players[playerID] == gameID {
			delete(s.players, playerID)
		}
	}
}

// Delete removes a session and any remaining player index entries.
func (s *Store) Delete(gameID string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	session, ok := s.sessions[gameID]
	if !ok {
		return
	}
	for _, playerID := range session.Players() {
		if s.players[playerID] == gameID {
			delete(s.players, playerID)
		}
	}
	delete(s.sessions, gameID)
}

// Sessions returns all live sessions.
func (s *Store) Sessions() []*Session {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.sessions)
}

// Reap deletes finished sessions whose last activity is older than the
// retention window and returns their game ids.
func (s *Store) Reap(retention time.Duration) []string {
	cutoff := time.Now().Add(-retention)

	s.lock.Lock()
	defer s.lock.Unlock()

	var reaped []string
	for gameID, session := range s.sessions {
		if session.Status() != StatusFinished {
			continue
		}
		if session.LastActivity().After(cutoff) {
			continue
		}
		for _, playerID := range session.Players() {
			if s.players[playerID] == gameID {
				delete(s.players, playerID)
			}
		}
		delete(s.sessions, gameID)
		reaped = append(reaped, gameID)
	}
	return reaped
}
