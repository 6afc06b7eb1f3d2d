package game

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/mkarimof/quizduel/pkg/clients"
	"github.com/mkarimof/quizduel/pkg/matchmaking"
	"github.com/mkarimof/quizduel/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender records delivered messages for one player.
type fakeSender struct {
	lock sync.Mutex
	msgs []*messages.Message
}

func (s *fakeSender) Send(msg *messages.Message) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *fakeSender) messagesOfType(messageType string) []*messages.Message {
	s.lock.Lock()
	defer s.lock.Unlock()
	var matched []*messages.Message
	for _, msg := range s.msgs {
		if msg.Type == messageType {
			matched = append(matched, msg)
		}
	}
	return matched
}

type managerFixture struct {
	manager  *Manager
	registry *clients.Registry
	queue    *matchmaking.Queue
	store    *Store
	senders  map[string]*fakeSender
}

func newManagerFixture(t *testing.T, questionCount int) *managerFixture {
	t.Helper()
	registry := clients.NewRegistry()
	queue := matchmaking.NewQueue()
	store := NewStore()
	manager := NewManager(NewManagerOptions{
		Registry:          registry,
		Queue:             queue,
		Store:             store,
		Questions:         newTestSource(questionCount),
		QuestionsPerMatch: DefaultQuestionsPerMatch,
	})
	return &managerFixture{
		manager:  manager,
		registry: registry,
		queue:    queue,
		store:    store,
		senders:  make(map[string]*fakeSender),
	}
}

// connect registers a fake connection and joins the player.
func (f *managerFixture) connect(t *testing.T, playerID string) error {
	t.Helper()
	sender := &fakeSender{}
	f.senders[playerID] = sender
	f.registry.Register(playerID, sender)
	return f.manager.HandleJoin(playerID)
}

func (f *managerFixture) startMessage(t *testing.T, playerID string) *messages.ServerStart {
	t.Helper()
	starts := f.senders[playerID].messagesOfType(messages.MessageTypeServerStart)
	require.Len(t, starts, 1, "player %s should have exactly one start message", playerID)
	start := &messages.ServerStart{}
	require.NoError(t, json.Unmarshal(starts[0].Payload, start))
	return start
}

func TestManager_PairsAndStartsGame(t *testing.T) {
	f := newManagerFixture(t, 10)

	require.NoError(t, f.connect(t, "A"))
	assert.Equal(t, 1, f.queue.Len())
	assert.Empty(t, f.senders["A"].messagesOfType(messages.MessageTypeServerStart))

	require.NoError(t, f.connect(t, "B"))
	assert.Equal(t, 0, f.queue.Len())

	startA := f.startMessage(t, "A")
	startB := f.startMessage(t, "B")
	assert.Equal(t, startA.GameID, startB.GameID)
	assert.Len(t, startA.QuestionIDs, DefaultQuestionsPerMatch)
	assert.Equal(t, startA.QuestionIDs, startB.QuestionIDs)

	session, ok := f.store.Get(startA.GameID)
	require.True(t, ok)
	assert.Equal(t, StatusInProgress, session.Status())
	assert.ElementsMatch(t, []string{"A", "B"}, session.Players())
}

func TestManager_JoinWhilePlaying(t *testing.T) {
	f := newManagerFixture(t, 10)

	require.NoError(t, f.connect(t, "A"))
	require.NoError(t, f.connect(t, "B"))

	err := f.manager.HandleJoin("A")
	require.Error(t, err)
	assert.IsType(t, &ErrAlreadyPlaying{}, err)
	assert.Equal(t, 0, f.queue.Len())
}

func TestManager_JoinWhileQueued(t *testing.T) {
	f := newManagerFixture(t, 10)

	require.NoError(t, f.connect(t, "A"))

	err := f.manager.HandleJoin("A")
	require.Error(t, err)
	assert.IsType(t, &matchmaking.ErrAlreadyQueued{}, err)
	assert.Equal(t, 1, f.queue.Len())
}

func TestManager_ConcurrentDuplicateJoinKeepsMembershipExclusive(t *testing.T) {
	// Two simultaneous joins for the same player, with an opponent
	// already waiting. Exactly one join may pair; the other must see the
	// player as already playing, never leaving the player both a session
	// member and queued.
	for i := 0; i < 200; i++ {
		f := newManagerFixture(t, 10)
		_, err := f.queue.Enqueue("X")
		require.NoError(t, err)

		release := make(chan struct{})
		errs := make([]error, 2)
		var wg sync.WaitGroup
		for j := range errs {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				<-release
				errs[j] = f.manager.HandleJoin("P")
			}(j)
		}
		close(release)
		wg.Wait()

		gameID, member := f.store.GameFor("P")
		require.True(t, member, "player P should be in a session")
		require.False(t, f.queue.Contains("P"),
			"player P is a member of session %s and still queued", gameID)
		require.Equal(t, 1, f.store.Len())

		paired := 0
		for _, err := range errs {
			if err == nil {
				paired++
				continue
			}
			require.IsType(t, &ErrAlreadyPlaying{}, err)
		}
		require.Equal(t, 1, paired)
	}
}

func TestManager_InsufficientQuestionsRequeuesPair(t *testing.T) {
	f := newManagerFixture(t, DefaultQuestionsPerMatch-1)

	require.NoError(t, f.connect(t, "A"))
	err := f.connect(t, "B")
	require.Error(t, err)
	assert.IsType(t, &ErrInsufficientQuestions{}, err)

	// Both players went back to the queue head, in arrival order.
	assert.Equal(t, 2, f.queue.Len())
	assert.True(t, f.queue.Contains("A"))
	assert.True(t, f.queue.Contains("B"))
	assert.Equal(t, 0, f.store.Len())
	assert.Empty(t, f.senders["A"].messagesOfType(messages.MessageTypeServerStart))
}

func TestManager_DeliveryFailureDoesNotAbortCreation(t *testing.T) {
	f := newManagerFixture(t, 10)

	require.NoError(t, f.connect(t, "A"))

	// B joins without a registered connection: delivery to B fails,
	// the session is created regardless.
	require.NoError(t, f.manager.HandleJoin("B"))

	start := f.startMessage(t, "A")
	_, ok := f.store.Get(start.GameID)
	assert.True(t, ok)
}

func TestManager_FullMatchScenario(t *testing.T) {
	f := newManagerFixture(t, 10)

	require.NoError(t, f.connect(t, "A"))
	require.NoError(t, f.connect(t, "B"))
	start := f.startMessage(t, "A")
	require.Len(t, start.QuestionIDs, 5)
	firstQuestion := start.QuestionIDs[0]

	// A answers the first question correctly, B incorrectly.
	result, err := f.manager.SubmitAnswer("A", start.GameID, firstQuestion, "right")
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 12, result.Score)

	result, err = f.manager.SubmitAnswer("B", start.GameID, firstQuestion, "wrong3")
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, -4, result.Score)

	// Each submitter got exactly its own answer_result.
	resultsA := f.senders["A"].messagesOfType(messages.MessageTypeServerAnswerResult)
	require.Len(t, resultsA, 1)
	answerResult := &messages.ServerAnswerResult{}
	require.NoError(t, json.Unmarshal(resultsA[0].Payload, answerResult))
	assert.True(t, answerResult.Correct)
	assert.Equal(t, 12, answerResult.Score)

	scores, err := f.manager.Finish(start.GameID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 12, "B": -4}, scores)

	// Each player receives only its own score.
	for playerID, want := range map[string]int{"A": 12, "B": -4} {
		overs := f.senders[playerID].messagesOfType(messages.MessageTypeServerGameOver)
		require.Len(t, overs, 1)
		gameOver := &messages.ServerGameOver{}
		require.NoError(t, json.Unmarshal(overs[0].Payload, gameOver))
		assert.Equal(t, want, gameOver.Score)
	}

	// The game is over: answers and repeat finishes are rejected.
	_, err = f.manager.SubmitAnswer("A", start.GameID, start.QuestionIDs[1], "right")
	assert.IsType(t, &ErrGameNotActive{}, err)
	_, err = f.manager.Finish(start.GameID)
	assert.IsType(t, &ErrGameNotActive{}, err)
}

func TestManager_DisconnectCleansUpQueuedPlayer(t *testing.T) {
	f := newManagerFixture(t, 10)

	require.NoError(t, f.connect(t, "A"))
	f.manager.HandleDisconnect("A")

	assert.Equal(t, 0, f.queue.Len())
	assert.False(t, f.registry.Exists("A"))

	// A fresh pair still forms without the departed player.
	require.NoError(t, f.connect(t, "B"))
	require.NoError(t, f.connect(t, "C"))
	start := f.startMessage(t, "B")
	session, ok := f.store.Get(start.GameID)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"B", "C"}, session.Players())
}

func TestManager_DisconnectLeavesLiveSessionAlone(t *testing.T) {
	f := newManagerFixture(t, 10)

	require.NoError(t, f.connect(t, "A"))
	require.NoError(t, f.connect(t, "B"))
	start := f.startMessage(t, "A")

	f.manager.HandleDisconnect("A")

	session, ok := f.store.Get(start.GameID)
	require.True(t, ok)
	assert.Equal(t, StatusInProgress, session.Status())

	// The remaining player can still score.
	result, err := f.manager.SubmitAnswer("B", start.GameID, start.QuestionIDs[0], "right")
	require.NoError(t, err)
	assert.Equal(t, 12, result.Score)
}

func TestManager_PersistsSnapshots(t *testing.T) {
	snapshotChan := make(chan Snapshot, 16)

	registry := clients.NewRegistry()
	manager := NewManager(NewManagerOptions{
		Registry:          registry,
		Queue:             matchmaking.NewQueue(),
		Store:             NewStore(),
		Questions:         newTestSource(10),
		QuestionsPerMatch: DefaultQuestionsPerMatch,
		SaveSnapshotChan:  snapshotChan,
	})

	require.NoError(t, manager.HandleJoin("A"))
	require.NoError(t, manager.HandleJoin("B"))

	created := <-snapshotChan
	assert.Equal(t, StatusInProgress.String(), created.Status)
	assert.ElementsMatch(t, []string{"A", "B"}, created.Players)

	_, err := manager.Finish(created.ID)
	require.NoError(t, err)

	finished := <-snapshotChan
	assert.Equal(t, created.ID, finished.ID)
	assert.Equal(t, StatusFinished.String(), finished.Status)
}
