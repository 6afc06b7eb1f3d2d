package game

import (
	"sync"
	"time"
)

// Score deltas applied per answer. Scores are not floored at zero.
const (
	ScoreCorrectDelta   = 12
	ScoreIncorrectDelta = -4
)

// Status represents the lifecycle state of a session.
// Transitions are monotonic: Waiting -> InProgress -> Finished.
type Status int

const (
	StatusWaiting Status = iota
	StatusInProgress
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusInProgress:
		return "in_progress"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ParseStatus parses a status string as produced by Status.String.
func ParseStatus(status string) (Status, bool) {
	switch status {
	case "waiting":
		return StatusWaiting, true
	case "in_progress":
		return StatusInProgress, true
	case "finished":
		return StatusFinished, true
	default:
		return StatusWaiting, false
	}
}

// Session is the authoritative state of one two-player match.
// All reads and writes of mutable fields go through the session lock;
// callers re-acquire sessions from the Store by id rather than holding
// a reference across blocking operations.
type Session struct {
	lock sync.Mutex

	id           string
	status       Status
	players      []string
	questions    []string
	scores       map[string]int
	answered     map[string]map[string]struct{}
	createdAt    time.Time
	lastActivity time.Time
}

// NewSession creates a session in the Waiting state for exactly two players.
func NewSession(id string, playerA, playerB string) *Session {
	now := time.Now()
	return &Session{
		id:     id,
		status: StatusWaiting,
		players: []string{
			playerA,
			playerB,
		},
		scores: map[string]int{
			playerA: 0,
			playerB: 0,
		},
		answered: map[string]map[string]struct{}{
			playerA: {},
			playerB: {},
		},
		createdAt:    now,
		lastActivity: now,
	}
}

// ID returns the session's game id.
func (s *Session) ID() string {
	return s.id
}

// Start assigns the question set and transitions Waiting -> InProgress.
// The question set is assigned exactly once; Start on a started session
// is a no-op returning false.
func (s *Session) Start(questionIDs []string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.status != StatusWaiting || len(questionIDs) == 0 {
		return false
	}
	s.questions = append([]string(nil), questionIDs...)
	s.status = StatusInProgress
	s.lastActivity = time.Now()
	return true
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.status
}

// Players returns the session's player ids.
func (s *Session) Players() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.players...)
}

// QuestionIDs returns the ordered question set.
func (s *Session) QuestionIDs() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.questions...)
}

// Scores returns a copy of the per-player scores.
func (s *Session) Scores() map[string]int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.scoresLocked()
}

func (s *Session) scoresLocked() map[string]int {
	scores := make(map[string]int, len(s.scores))
	for playerID, score := range s.scores {
		scores[playerID] = score
	}
	return scores
}

// LastActivity returns the time of the last scoring mutation or transition.
func (s *Session) LastActivity() time.Time {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.lastActivity
}

func (s *Session) isParticipantLocked(playerID string) bool {
	for _, p := range s.players {
		if p == playerID {
			return true
		}
	}
	return false
}

// HasQuestion reports whether a question id is part of the session's
// question set.
func (s *Session) HasQuestion(questionID string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.hasQuestionLocked(questionID)
}

func (s *Session) hasQuestionLocked(questionID string) bool {
	for _, q := range s.questions {
		if q == questionID {
			return true
		}
	}
	return false
}

// RecordAnswer validates and applies one answer under the session lock.
// The read-modify-write of scores and answered is a single critical
// section, so concurrent submissions for the same session serialize and
// a duplicate racing with itself is rejected exactly once.
func (s *Session) RecordAnswer(playerID, questionID string, correct bool) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.status != StatusInProgress {
		return 0, &ErrGameNotActive{}
	}
	if !s.isParticipantLocked(playerID) {
		return 0, &ErrNotAParticipant{}
	}
	if !s.hasQuestionLocked(questionID) {
		return 0, &ErrUnknownQuestion{}
	}
	if _, ok := s.answered[playerID][questionID]; ok {
		return 0, &ErrDuplicateAnswer{}
	}

	s.answered[playerID][questionID] = struct{}{}
	if correct {
		s.scores[playerID] += ScoreCorrectDelta
	} else {
		s.scores[playerID] += ScoreIncorrectDelta
	}
	s.lastActivity = time.Now()

	return s.scores[playerID], nil
}

// Finish transitions InProgress -> Finished and returns a snapshot of the
// final scores. Finished is terminal; finishing again returns
// ErrGameNotActive and leaves the recorded scores untouched.
func (s *Session) Finish() (map[string]int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.status != StatusInProgress {
		return nil, &ErrGameNotActive{}
	}
	s.status = StatusFinished
	s.lastActivity = time.Now()

	return s.scoresLocked(), nil
}

// Snapshot is an immutable copy of a session's state, used for
// persistence and late score reads.
type Snapshot struct {
	ID        string              `json:"id"`
	Status    string              `json:"status"`
	Players   []string            `json:"players"`
	Questions []string            `json:"questions"`
	Scores    map[string]int      `json:"scores"`
	Answered  map[string][]string `json:"answered"`
	CreatedAt time.Time           `json:"createdAt"`
}

// Snapshot copies the session state under the session lock.
func (s *Session) Snapshot() Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()

	answered := make(map[string][]string, len(s.answered))
	for playerID, questionIDs := range s.answered {
		ids := make([]string, 0, len(questionIDs))
		for questionID := range questionIDs {
			ids = append(ids, questionID)
		}
		answered[playerID] = ids
	}

	return Snapshot{
		ID:        s.id,
		Status:    s.status.String(),
		Players:   append([]string(nil), s.players...),
		Questions: append([]string(nil), s.questions...),
		Scores:    s.scoresLocked(),
		Answered:  answered,
		CreatedAt: s.createdAt,
	}
}

// RestoreSession rebuilds a session from a persisted snapshot.
func RestoreSession(snapshot Snapshot) *Session {
	status, ok := ParseStatus(snapshot.Status)
	if !ok {
		status = StatusFinished
	}

	scores := make(map[string]int, len(snapshot.Scores))
	for playerID, score := range snapshot.Scores {
		scores[playerID] = score
	}
	answered := make(map[string]map[string]struct{}, len(snapshot.Players))
	for _, playerID := range snapshot.Players {
		answered[playerID] = make(map[string]struct{})
	}
	for playerID, questionIDs := range snapshot.Answered {
		set := make(map[string]struct{}, len(questionIDs))
		for _, questionID := range questionIDs {
			set[questionID] = struct{}{}
		}
		answered[playerID] = set
	}

	return &Session{
		id:           snapshot.ID,
		status:       status,
		players:      append([]string(nil), snapshot.Players...),
		questions:    append([]string(nil), snapshot.Questions...),
		scores:       scores,
		answered:     answered,
		createdAt:    snapshot.CreatedAt,
		lastActivity: time.Now(),
	}
}
