package repositories

import (
	"context"

	"github.com/mkarimof/quizduel/pkg/game"
	"github.com/mkarimof/quizduel/pkg/questions"
	"github.com/mkarimof/quizduel/pkg/repositories/models"
)

// Repository is the durable store behind the in-memory core. The core's
// correctness never depends on it: session writes flow through the save
// worker and failures are logged, not propagated into game state.
type Repository interface {
	Close(ctx context.Context) error

	// GetOrCreateUser returns the user record for a player id, creating
	// it with a zero total score if it does not exist.
	GetOrCreateUser(ctx context.Context, playerID string) (*models.User, error)
	// GetUser returns a user record, or ErrNotFound.
	GetUser(ctx context.Context, playerID string) (*models.User, error)
	// AddUserScore adds a finished game's score to a user's total.
	AddUserScore(ctx context.Context, playerID string, delta int) error

	// InsertQuestions stores questions, assigning ids to those without one.
	InsertQuestions(ctx context.Context, qs []questions.Question) ([]questions.Question, error)
	// ListQuestions returns all stored questions.
	ListQuestions(ctx context.Context) ([]questions.Question, error)

	// SaveSession upserts a session snapshot.
	SaveSession(ctx context.Context, snapshot game.Snapshot) error
	// LoadActiveSessions returns snapshots of sessions that were in
	// progress when last persisted.
	LoadActiveSessions(ctx context.Context) ([]game.Snapshot, error)
}
