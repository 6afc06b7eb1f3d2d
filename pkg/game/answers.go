package game

import (
	"github.com/mkarimof/quizduel/pkg/questions"
)

// AnswerResult is the outcome of one scored answer.
type AnswerResult struct {
	Correct bool
	Score   int
}

// AnswerProcessor validates and scores submitted answers against live
// sessions. Scoring for one session serializes on that session's lock;
// unrelated sessions never contend.
type AnswerProcessor struct {
	store     *Store
	questions questions.Source
}

// NewAnswerProcessor creates an AnswerProcessor over a session store and
// a question source.
func NewAnswerProcessor(store *Store, source questions.Source) *AnswerProcessor {
	return &AnswerProcessor{
		store:     store,
		questions: source,
	}
}

// SubmitAnswer scores one answer. An answer is correct when the selected
// option equals the question's designated correct option. Correct adds
// ScoreCorrectDelta, incorrect adds ScoreIncorrectDelta; the running
// score may go negative. Every precondition violation returns a typed
// error and leaves the session unchanged.
func (p *AnswerProcessor) SubmitAnswer(playerID, gameID, questionID, selectedOption string) (*AnswerResult, error) {
	session, ok := p.store.Get(gameID)
	if !ok {
		return nil, &ErrGameNotFound{}
	}

	// Questions are immutable once assigned, so correctness can be
	// computed before entering the session's critical section.
	question, known := p.questions.Get(questionID)
	if !known {
		// A restored session can reference questions the source no
		// longer holds; those cannot be scored. A question id foreign
		// to the session falls through to its membership check.
		if session.HasQuestion(questionID) {
			return nil, &ErrQuestionUnavailable{}
		}
	}
	correct := known && selectedOption == question.CorrectOption()

	score, err := session.RecordAnswer(playerID, questionID, correct)
	if err != nil {
		return nil, err
	}

	return &AnswerResult{
		Correct: correct,
		Score:   score,
	}, nil
}
