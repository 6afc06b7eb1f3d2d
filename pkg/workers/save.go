package workers

import (
	"context"

	"github.com/mkarimof/quizduel/pkg/game"
	"github.com/mkarimof/quizduel/pkg/log"
	"github.com/mkarimof/quizduel/pkg/repositories"
)

type SaveSessionWorker struct {
	repository       repositories.Repository
	saveSnapshotChan <-chan game.Snapshot
}

type NewSaveSessionWorkerOptions struct {
	Repository       repositories.Repository
	SaveSnapshotChan <-chan game.Snapshot
}

// NewSaveSessionWorker creates a new SaveSessionWorker.
// The worker drains session snapshots emitted by the game manager and
// persists them to the repository. Persistence failures are logged and
// never fed back into game state: the in-memory session is authoritative.
func NewSaveSessionWorker(opts NewSaveSessionWorkerOptions) *SaveSessionWorker {
	return &SaveSessionWorker{
		repository:       opts.Repository,
		saveSnapshotChan: opts.SaveSnapshotChan,
	}
}

func (w *SaveSessionWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot := <-w.saveSnapshotChan:
			w.saveSnapshot(ctx, snapshot)
		}
	}
}

func (w *SaveSessionWorker) saveSnapshot(ctx context.Context, snapshot game.Snapshot) {
	if err := w.repository.SaveSession(ctx, snapshot); err != nil {
		log.Error("Failed to save session %s: %v", snapshot.ID, err)
		return
	}

	// A finished snapshot arrives exactly once per session, so the
	// durable totals are credited here.
	if snapshot.Status == game.StatusFinished.String() {
		for playerID, score := range snapshot.Scores {
			if err := w.repository.AddUserScore(ctx, playerID, score); err != nil {
				log.Error("Failed to add score for player %s: %v", playerID, err)
			}
		}
	}
}
