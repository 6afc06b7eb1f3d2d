package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Lifecycle(t *testing.T) {
	session := NewSession("game-1", "A", "B")
	assert.Equal(t, StatusWaiting, session.Status())
	assert.Equal(t, []string{"A", "B"}, session.Players())
	assert.Equal(t, map[string]int{"A": 0, "B": 0}, session.Scores())

	// A session cannot start without questions.
	assert.False(t, session.Start(nil))
	assert.Equal(t, StatusWaiting, session.Status())

	require.True(t, session.Start([]string{"q1", "q2"}))
	assert.Equal(t, StatusInProgress, session.Status())
	assert.Equal(t, []string{"q1", "q2"}, session.QuestionIDs())

	// The question set is assigned exactly once.
	assert.False(t, session.Start([]string{"q3"}))
	assert.Equal(t, []string{"q1", "q2"}, session.QuestionIDs())

	scores, err := session.Finish()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 0, "B": 0}, scores)
	assert.Equal(t, StatusFinished, session.Status())

	// Finished is terminal.
	_, err = session.Finish()
	assert.IsType(t, &ErrGameNotActive{}, err)
	assert.False(t, session.Start([]string{"q3"}))
	assert.Equal(t, StatusFinished, session.Status())
}

func TestSession_RecordAnswerScoring(t *testing.T) {
	session := NewSession("game-1", "A", "B")
	require.True(t, session.Start([]string{"q1", "q2", "q3"}))

	// correct, incorrect, correct: 0 -> 12 -> 8 -> 20
	score, err := session.RecordAnswer("A", "q1", true)
	require.NoError(t, err)
	assert.Equal(t, 12, score)

	score, err = session.RecordAnswer("A", "q2", false)
	require.NoError(t, err)
	assert.Equal(t, 8, score)

	score, err = session.RecordAnswer("A", "q3", true)
	require.NoError(t, err)
	assert.Equal(t, 20, score)

	// Scores are per player and may go negative.
	score, err = session.RecordAnswer("B", "q1", false)
	require.NoError(t, err)
	assert.Equal(t, -4, score)

	assert.Equal(t, map[string]int{"A": 20, "B": -4}, session.Scores())
}

func TestSession_RecordAnswerValidation(t *testing.T) {
	tests := []struct {
		name       string
		playerID   string
		questionID string
		setup      func(s *Session)
		wantErr    error
	}{
		{
			name:       "not started",
			playerID:   "A",
			questionID: "q1",
			setup:      func(s *Session) {},
			wantErr:    &ErrGameNotActive{},
		},
		{
			name:       "not a participant",
			playerID:   "C",
			questionID: "q1",
			setup: func(s *Session) {
				s.Start([]string{"q1"})
			},
			wantErr: &ErrNotAParticipant{},
		},
		{
			name:       "unknown question",
			playerID:   "A",
			questionID: "q9",
			setup: func(s *Session) {
				s.Start([]string{"q1"})
			},
			wantErr: &ErrUnknownQuestion{},
		},
		{
			name:       "duplicate answer",
			playerID:   "A",
			questionID: "q1",
			setup: func(s *Session) {
				s.Start([]string{"q1"})
				_, err := s.RecordAnswer("A", "q1", true)
				require.NoError(t, err)
			},
			wantErr: &ErrDuplicateAnswer{},
		},
		{
			name:       "finished",
			playerID:   "A",
			questionID: "q1",
			setup: func(s *Session) {
				s.Start([]string{"q1"})
				_, err := s.Finish()
				require.NoError(t, err)
			},
			wantErr: &ErrGameNotActive{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession("game-1", "A", "B")
			tt.setup(session)

			before := session.Scores()
			_, err := session.RecordAnswer(tt.playerID, tt.questionID, true)
			require.Error(t, err)
			assert.IsType(t, tt.wantErr, err)
			assert.Equal(t, before, session.Scores(), "a rejected answer must not mutate scores")
		})
	}
}

func TestSession_SnapshotRoundTrip(t *testing.T) {
	session := NewSession("game-1", "A", "B")
	require.True(t, session.Start([]string{"q1", "q2"}))
	_, err := session.RecordAnswer("A", "q1", true)
	require.NoError(t, err)

	restored := RestoreSession(session.Snapshot())
	assert.Equal(t, session.ID(), restored.ID())
	assert.Equal(t, StatusInProgress, restored.Status())
	assert.Equal(t, session.Players(), restored.Players())
	assert.Equal(t, session.QuestionIDs(), restored.QuestionIDs())
	assert.Equal(t, session.Scores(), restored.Scores())

	// The restored answered set still rejects the duplicate.
	_, err = restored.RecordAnswer("A", "q1", true)
	assert.IsType(t, &ErrDuplicateAnswer{}, err)
}
