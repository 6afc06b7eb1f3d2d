package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mkarimof/quizduel/pkg/game"
	"github.com/mkarimof/quizduel/pkg/log"
	"github.com/mkarimof/quizduel/pkg/repositories"
)

func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Error("failed to write healthz response: %v", err)
		}
	}
}

// gameResponse is the read-only view of a session. It never exposes the
// question set's correct options, only what the players already know.
type gameResponse struct {
	GameID    string         `json:"gameID"`
	Status    string         `json:"status"`
	Players   []string       `json:"players"`
	Questions []string       `json:"questions"`
	Scores    map[string]int `json:"scores"`
}

func HandleGetGame(store *game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := mux.Vars(r)["gameID"]
		session, ok := store.Get(gameID)
		if !ok {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}

		snapshot := session.Snapshot()
		response := &gameResponse{
			GameID:    snapshot.ID,
			Status:    snapshot.Status,
			Players:   snapshot.Players,
			Questions: snapshot.Questions,
			Scores:    snapshot.Scores,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error("failed to encode game: %v", err)
			http.Error(w, "Failed to encode game", http.StatusInternalServerError)
			return
		}
	}
}

func HandleGetPlayer(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repository == nil {
			http.Error(w, "Player totals are not available", http.StatusNotFound)
			return
		}

		playerID := mux.Vars(r)["playerID"]
		user, err := repository.GetUser(r.Context(), playerID)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Player not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get player %s: %v", playerID, err)
			http.Error(w, "Failed to get player", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(user); err != nil {
			log.Error("failed to encode player: %v", err)
			http.Error(w, "Failed to encode player", http.StatusInternalServerError)
			return
		}
	}
}
