package workers

import (
	"context"
	"errors"
	"time"

	"github.com/mkarimof/quizduel/pkg/game"
	"github.com/mkarimof/quizduel/pkg/log"
)

// Finisher ends a game by id. Implemented by the game manager.
type Finisher interface {
	Finish(gameID string) (map[string]int, error)
}

type WatchdogWorker struct {
	store      *game.Store
	finisher   Finisher
	interval   time.Duration
	idleWindow time.Duration
	retention  time.Duration
}

type NewWatchdogWorkerOptions struct {
	Store *game.Store
	// Finisher receives the finish call for idle sessions.
	Finisher Finisher
	// Interval is how often the worker scans the store.
	Interval time.Duration
	// IdleWindow is how long an in-progress session may go without
	// scoring activity before it is finished.
	IdleWindow time.Duration
	// Retention is how long finished sessions stay queryable before
	// they are removed from the store.
	Retention time.Duration
}

// NewWatchdogWorker creates a new WatchdogWorker.
// The worker is the supervising timer that ends stalled sessions: the
// core only guarantees that Finish is always safe to call, the trigger
// policy lives here. It also removes finished sessions once their
// retention window for late score reads has passed.
func NewWatchdogWorker(opts NewWatchdogWorkerOptions) *WatchdogWorker {
	return &WatchdogWorker{
		store:      opts.Store,
		finisher:   opts.Finisher,
		interval:   opts.Interval,
		idleWindow: opts.IdleWindow,
		retention:  opts.Retention,
	}
}

func (w *WatchdogWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *WatchdogWorker) sweep() {
	cutoff := time.Now().Add(-w.idleWindow)

	for _, session := range w.store.Sessions() {
		if session.Status() != game.StatusInProgress {
			continue
		}
		if session.LastActivity().After(cutoff) {
			continue
		}

		log.Info("Finishing idle game %s", session.ID())
		if _, err := w.finisher.Finish(session.ID()); err != nil {
			// A racing finish is fine, anything else is not.
			var notActive *game.ErrGameNotActive
			if !errors.As(err, &notActive) {
				log.Error("Failed to finish idle game %s: %v", session.ID(), err)
			}
		}
	}

	for _, gameID := range w.store.Reap(w.retention) {
		log.Debug("Removed finished game %s from the store", gameID)
	}
}
