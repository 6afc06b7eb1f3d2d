package clients

import (
	"sync"

	"github.com/mkarimof/quizduel/pkg/messages"
)

// Sender delivers one outbound message to a connected player.
type Sender interface {
	Send(msg *messages.Message) error
}

// ErrDeliveryFailure is returned when a message cannot be delivered to a
// player, either because it is not connected or because the underlying
// write failed. Callers treat it as best-effort and never roll back game
// state because of it.
type ErrDeliveryFailure struct {
	PlayerID string
}

func (e *ErrDeliveryFailure) Error() string {
	return "failed to deliver message to player " + e.PlayerID
}

// Registry maps live player ids to their outbound send handles.
type Registry struct {
	lock    sync.RWMutex
	senders map[string]Sender
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		senders: make(map[string]Sender),
	}
}

// Register associates a player with a send handle. Registering a player
// that is already registered replaces the previous handle.
func (r *Registry) Register(playerID string, sender Sender) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.senders[playerID] = sender
}

// RegisterIfAbsent associates a player with a send handle only when the
// player is not already registered. The check and the insert are one
// critical section, so of two racing connections claiming the same
// player id exactly one wins; the loser must not run any cleanup that
// would touch the winner's entry.
func (r *Registry) RegisterIfAbsent(playerID string, sender Sender) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.senders[playerID]; ok {
		return false
	}
	r.senders[playerID] = sender
	return true
}

// Remove drops a player's entry. Removing one player never affects the
// entries of other players.
func (r *Registry) Remove(playerID string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.senders, playerID)
}

// Exists reports whether a player is currently registered.
func (r *Registry) Exists(playerID string) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	_, ok := r.senders[playerID]
	return ok
}

// Len returns the number of registered players.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.senders)
}

// Send delivers a message to a player. An unknown player or a failed
// write yields ErrDeliveryFailure.
func (r *Registry) Send(playerID string, msg *messages.Message) error {
	r.lock.RLock()
	sender, ok := r.senders[playerID]
	r.lock.RUnlock()

	if !ok {
		return &ErrDeliveryFailure{PlayerID: playerID}
	}
	if err := sender.Send(msg); err != nil {
		return &ErrDeliveryFailure{PlayerID: playerID}
	}
	return nil
}
