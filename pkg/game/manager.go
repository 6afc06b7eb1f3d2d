package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/mkarimof/quizduel/pkg/clients"
	"github.com/mkarimof/quizduel/pkg/log"
	"github.com/mkarimof/quizduel/pkg/matchmaking"
	"github.com/mkarimof/quizduel/pkg/messages"
	"github.com/mkarimof/quizduel/pkg/questions"
)

const (
	// DefaultQuestionsPerMatch is the number of questions drawn for a
	// new session.
	DefaultQuestionsPerMatch = 5
)

// Manager orchestrates matchmaking and the session lifecycle: it pairs
// joining players, creates sessions, routes answers and finish requests,
// and notifies players through the connection registry. Outbound
// delivery is best-effort; a failed delivery never unwinds the state
// mutation that triggered it.
type Manager struct {
	// joinLock serializes joins end to end: the membership check, the
	// enqueue, and the insertion of any resulting session are one
	// indivisible step, so a player can never be queued while also a
	// session member.
	joinLock          sync.Mutex
	registry          *clients.Registry
	queue             *matchmaking.Queue
	store             *Store
	questions         questions.Source
	answers           *AnswerProcessor
	finalizer         *Finalizer
	questionsPerMatch int
	saveSnapshotChan  chan<- Snapshot
}

// NewManagerOptions contains options for creating a new Manager.
type NewManagerOptions struct {
	Registry          *clients.Registry
	Queue             *matchmaking.Queue
	Store             *Store
	Questions         questions.Source
	QuestionsPerMatch int
	// SaveSnapshotChan, if set, receives a snapshot after every session
	// mutation for asynchronous persistence.
	SaveSnapshotChan chan<- Snapshot
}

func NewManager(opts NewManagerOptions) *Manager {
	questionsPerMatch := opts.QuestionsPerMatch
	if questionsPerMatch <= 0 {
		questionsPerMatch = DefaultQuestionsPerMatch
	}
	return &Manager{
		registry:          opts.Registry,
		queue:             opts.Queue,
		store:             opts.Store,
		questions:         opts.Questions,
		answers:           NewAnswerProcessor(opts.Store, opts.Questions),
		finalizer:         NewFinalizer(opts.Store),
		questionsPerMatch: questionsPerMatch,
		saveSnapshotChan:  opts.SaveSnapshotChan,
	}
}

// Store returns the session store, for read-only lookups by the API.
func (m *Manager) Store() *Store {
	return m.store
}

// HandleJoin enqueues a newly connected player and, if this arrival
// completes a pair, creates their session. A player still playing a live
// session cannot join again.
func (m *Manager) HandleJoin(playerID string) error {
	m.joinLock.Lock()
	defer m.joinLock.Unlock()

	if gameID, ok := m.store.GameFor(playerID); ok {
		log.Debug("Player %s tried to join while in game %s", playerID, gameID)
		return &ErrAlreadyPlaying{}
	}

	pairs, err := m.queue.Enqueue(playerID)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		log.Debug("Player %s is waiting for an opponent", playerID)
		return nil
	}

	var joinErr error
	for _, pair := range pairs {
		if err := m.createSession(pair); err != nil {
			joinErr = err
		}
	}
	return joinErr
}

// createSession forms a session for a freshly paired couple. The session
// enters the store only after its questions are assigned and it is in
// progress, so it is never externally visible in the Waiting state. If
// the question source comes up short, the pair is returned to the queue
// head and formation fails with ErrInsufficientQuestions.
func (m *Manager) createSession(pair matchmaking.Pair) error {
	sampled := m.questions.Sample(m.questionsPerMatch)
	if len(sampled) < m.questionsPerMatch {
		log.Warn("Question source returned %d of %d questions, requeueing players %s and %s",
			len(sampled), m.questionsPerMatch, pair.PlayerA, pair.PlayerB)
		m.queue.Requeue(pair)
		return &ErrInsufficientQuestions{}
	}

	questionIDs := make([]string, 0, len(sampled))
	for _, question := range sampled {
		questionIDs = append(questionIDs, question.ID)
	}

	session := NewSession(uuid.New().String(), pair.PlayerA, pair.PlayerB)
	session.Start(questionIDs)
	m.store.Put(session)

	log.Info("Game %s started for players %s and %s", session.ID(), pair.PlayerA, pair.PlayerB)

	start := &messages.ServerStart{
		GameID:      session.ID(),
		QuestionIDs: questionIDs,
	}
	for _, playerID := range session.Players() {
		m.send(playerID, messages.MessageTypeServerStart, start)
	}

	m.persist(session)

	return nil
}

// SubmitAnswer scores one answer and notifies the submitting player of
// the result.
func (m *Manager) SubmitAnswer(playerID, gameID, questionID, selectedOption string) (*AnswerResult, error) {
	result, err := m.answers.SubmitAnswer(playerID, gameID, questionID, selectedOption)
	if err != nil {
		return nil, err
	}

	m.send(playerID, messages.MessageTypeServerAnswerResult, &messages.ServerAnswerResult{
		Correct: result.Correct,
		Score:   result.Score,
	})

	if session, ok := m.store.Get(gameID); ok {
		m.persist(session)
	}

	return result, nil
}

// Finish ends a session and sends each participant its own final score.
// Each player receives only its own score, not the opponent's.
func (m *Manager) Finish(gameID string) (map[string]int, error) {
	scores, err := m.finalizer.Finish(gameID)
	if err != nil {
		return nil, err
	}

	log.Info("Game %s finished", gameID)

	for playerID, score := range scores {
		m.send(playerID, messages.MessageTypeServerGameOver, &messages.ServerGameOver{
			Score: score,
		})
	}

	if session, ok := m.store.Get(gameID); ok {
		m.persist(session)
	}

	return scores, nil
}

// HandleDisconnect cleans up after a dropped connection: the registry
// entry goes away and a still-queued player is removed from the queue.
// An in-progress session is left alone; whether and when it ends is the
// inactivity watchdog's call, not the disconnect's.
func (m *Manager) HandleDisconnect(playerID string) {
	m.registry.Remove(playerID)
	if m.queue.Remove(playerID) {
		log.Debug("Removed disconnected player %s from the queue", playerID)
		return
	}
	if gameID, ok := m.store.GameFor(playerID); ok {
		log.Debug("Player %s disconnected while in game %s", playerID, gameID)
	}
}

// Restore re-inserts persisted in-progress sessions, typically at
// startup.
func (m *Manager) Restore(snapshots []Snapshot) {
	for _, snapshot := range snapshots {
		session := RestoreSession(snapshot)
		if session.Status() != StatusInProgress {
			continue
		}
		m.store.Put(session)
		log.Info("Restored in-progress game %s", session.ID())
	}
}

func (m *Manager) send(playerID string, messageType string, payload interface{}) {
	msg, err := messages.NewMessage(messageType, payload)
	if err != nil {
		log.Error("Failed to build %s message for player %s: %v", messageType, playerID, err)
		return
	}
	if err := m.registry.Send(playerID, msg); err != nil {
		log.Warn("Failed to deliver %s message to player %s: %v", messageType, playerID, err)
	}
}

func (m *Manager) persist(session *Session) {
	if m.saveSnapshotChan == nil {
		return
	}
	select {
	case m.saveSnapshotChan <- session.Snapshot():
	default:
		log.Warn("Save channel is full, dropping snapshot for game %s", session.ID())
	}
}
