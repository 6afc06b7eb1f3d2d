package game

import (
	"errors"

	"github.com/mkarimof/quizduel/pkg/matchmaking"
)

// ErrAlreadyPlaying is returned when a player tries to join while still a
// member of a live session.
type ErrAlreadyPlaying struct{}

func (e *ErrAlreadyPlaying) Error() string {
	return "player is already in a game"
}

// ErrGameNotFound is returned when no session exists for a game id.
type ErrGameNotFound struct{}

func (e *ErrGameNotFound) Error() string {
	return "game not found"
}

// ErrGameNotActive is returned when a session exists but is not in progress.
type ErrGameNotActive struct{}

func (e *ErrGameNotActive) Error() string {
	return "game is not active"
}

// ErrNotAParticipant is returned when a player submits an answer for a
// game it is not a member of.
type ErrNotAParticipant struct{}

func (e *ErrNotAParticipant) Error() string {
	return "player is not a participant of this game"
}

// ErrUnknownQuestion is returned when a question id is not part of the
// session's question set.
type ErrUnknownQuestion struct{}

func (e *ErrUnknownQuestion) Error() string {
	return "question is not part of this game"
}

// ErrQuestionUnavailable is returned when a question belongs to the
// session but the question source no longer holds it, so the answer
// cannot be scored. It can happen after a restored session outlives a
// change to the question data.
type ErrQuestionUnavailable struct{}

func (e *ErrQuestionUnavailable) Error() string {
	return "question is no longer available for scoring"
}

// ErrDuplicateAnswer is returned when a (player, question) pair has
// already been scored.
type ErrDuplicateAnswer struct{}

func (e *ErrDuplicateAnswer) Error() string {
	return "question was already answered by this player"
}

// ErrInsufficientQuestions is returned when the question source cannot
// provide a full question set for a new session.
type ErrInsufficientQuestions struct{}

func (e *ErrInsufficientQuestions) Error() string {
	return "not enough questions to start a game"
}

// ErrorCode maps a game error to its wire code, or "internal" for
// anything else.
func ErrorCode(err error) string {
	var alreadyQueued *matchmaking.ErrAlreadyQueued
	var alreadyPlaying *ErrAlreadyPlaying
	var notFound *ErrGameNotFound
	var notActive *ErrGameNotActive
	var notAParticipant *ErrNotAParticipant
	var unknownQuestion *ErrUnknownQuestion
	var questionUnavailable *ErrQuestionUnavailable
	var duplicateAnswer *ErrDuplicateAnswer
	var insufficientQuestions *ErrInsufficientQuestions

	switch {
	case errors.As(err, &alreadyQueued), errors.As(err, &alreadyPlaying):
		return "already_queued"
	case errors.As(err, &notFound):
		return "game_not_found"
	case errors.As(err, &notActive):
		return "game_not_active"
	case errors.As(err, &notAParticipant):
		return "not_a_participant"
	case errors.As(err, &unknownQuestion):
		return "unknown_question"
	case errors.As(err, &questionUnavailable):
		return "question_unavailable"
	case errors.As(err, &duplicateAnswer):
		return "duplicate_answer"
	case errors.As(err, &insufficientQuestions):
		return "insufficient_questions"
	default:
		return "internal"
	}
}
