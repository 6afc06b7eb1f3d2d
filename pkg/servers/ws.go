package servers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/mkarimof/quizduel/pkg/clients"
	"github.com/mkarimof/quizduel/pkg/game"
	"github.com/mkarimof/quizduel/pkg/log"
	"github.com/mkarimof/quizduel/pkg/messages"
	"github.com/mkarimof/quizduel/pkg/repositories"
)

// WSServer accepts player connections and runs one handler loop per
// connection. A failure on one connection terminates only that
// connection's loop and its cleanup; it never touches other players.
type WSServer struct {
	registry   *clients.Registry
	manager    *game.Manager
	repository repositories.Repository
	port       int
	tls        *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewWSServerOptions struct {
	Registry *clients.Registry
	Manager  *game.Manager
	// Repository, if set, is used to get-or-create the durable user
	// record on join. It is optional; joining never fails on it.
	Repository repositories.Repository
	Port       int
	TLS        *TLSConfig
}

// NewWSServer creates a new WebSocket server.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	return &WSServer{
		registry:   opts.Registry,
		manager:    opts.Manager,
		repository: opts.Repository,
		port:       opts.Port,
		tls:        opts.TLS,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Start starts the WebSocket server.
func (s *WSServer) Start(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("Failed to upgrade to WebSocket: %v", err)
			return
		}
		log.Debug("New WebSocket connection from %s", conn.RemoteAddr().String())
		go s.handleConnection(ctx, conn)
	})

	addr := fmt.Sprintf(":%d", s.port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		server.Shutdown(ctx)
	}()

	var listenAndServe func() error
	if s.tls != nil {
		log.Info("WebSocket server listening on %s with TLS", addr)
		listenAndServe = func() error {
			return server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("WebSocket server listening on %s", addr)
		listenAndServe = server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("WebSocket server closed")
			return
		}
		log.Error("WebSocket server error: %v", err)
	}
}

// wsClient is the registry send handle for one connection. Writes are
// serialized, the websocket connection allows only one concurrent writer.
type wsClient struct {
	writeLock sync.Mutex
	conn      *websocket.Conn
}

func (c *wsClient) Send(msg *messages.Message) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return c.conn.WriteJSON(msg)
}

// handleConnection runs the per-player loop: the first message must be a
// join, everything after is answers and finish requests. Validation
// failures are reported back to this player only; a read or parse error
// ends the loop and triggers registry and queue cleanup.
func (s *WSServer) handleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	client := &wsClient{conn: conn}

	playerID, err := s.awaitJoin(conn)
	if err != nil {
		log.Warn("Connection from %s failed to join: %v", conn.RemoteAddr().String(), err)
		return
	}

	// Claiming the player id must be atomic: a rejected duplicate runs
	// no cleanup, so it can never strand the surviving connection.
	if !s.registry.RegisterIfAbsent(playerID, client) {
		log.Warn("Player %s is already connected, rejecting duplicate connection", playerID)
		s.sendError(client, &game.ErrAlreadyPlaying{})
		return
	}
	defer s.manager.HandleDisconnect(playerID)

	if s.repository != nil {
		if _, err := s.repository.GetOrCreateUser(ctx, playerID); err != nil {
			log.Error("Failed to get or create user %s: %v", playerID, err)
		}
	}

	log.Info("Player %s connected", playerID)

	if err := s.manager.HandleJoin(playerID); err != nil {
		s.sendError(client, err)
		var insufficient *game.ErrInsufficientQuestions
		if !errors.As(err, &insufficient) {
			return
		}
		// The pair went back to the queue head; this connection stays
		// open waiting for the next attempt.
	}

	for {
		msg := &messages.Message{}
		if err := conn.ReadJSON(msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Error reading message from player %s: %v", playerID, err)
			}
			log.Debug("Connection closed for player %s", playerID)
			return
		}

		if err := s.handleMessage(playerID, client, msg); err != nil {
			log.Warn("Failed to handle %s message from player %s: %v", msg.Type, playerID, err)
			return
		}
	}
}

// awaitJoin reads the first message of a connection, which must be a
// join carrying the player id.
func (s *WSServer) awaitJoin(conn *websocket.Conn) (string, error) {
	msg := &messages.Message{}
	if err := conn.ReadJSON(msg); err != nil {
		return "", fmt.Errorf("failed to read join message: %v", err)
	}
	if msg.Type != messages.MessageTypeClientJoin {
		return "", fmt.Errorf("first message must be %s, got %s", messages.MessageTypeClientJoin, msg.Type)
	}

	join := &messages.ClientJoin{}
	if err := json.Unmarshal(msg.Payload, join); err != nil {
		return "", fmt.Errorf("failed to unmarshal join message: %v", err)
	}
	if join.PlayerID == "" {
		return "", fmt.Errorf("join message has no player id")
	}

	return join.PlayerID, nil
}

// handleMessage dispatches one in-game message. A returned error ends
// the connection; validation failures are sent to the player instead.
func (s *WSServer) handleMessage(playerID string, client *wsClient, msg *messages.Message) error {
	switch msg.Type {
	case messages.MessageTypeClientAnswer:
		answer := &messages.ClientAnswer{}
		if err := json.Unmarshal(msg.Payload, answer); err != nil {
			return fmt.Errorf("failed to unmarshal answer message: %v", err)
		}
		if _, err := s.manager.SubmitAnswer(playerID, answer.GameID, answer.QuestionID, answer.SelectedOption); err != nil {
			log.Debug("Rejected answer from player %s for game %s: %v", playerID, answer.GameID, err)
			s.sendError(client, err)
		}
	case messages.MessageTypeClientFinish:
		finish := &messages.ClientFinish{}
		if err := json.Unmarshal(msg.Payload, finish); err != nil {
			return fmt.Errorf("failed to unmarshal finish message: %v", err)
		}
		if _, err := s.manager.Finish(finish.GameID); err != nil {
			// A repeated finish is benign to the protocol.
			var notActive *game.ErrGameNotActive
			if errors.As(err, &notActive) {
				log.Debug("Player %s finished game %s again", playerID, finish.GameID)
				return nil
			}
			s.sendError(client, err)
		}
	default:
		log.Warn("Ignoring message of unknown type %s from player %s", msg.Type, playerID)
	}

	return nil
}

func (s *WSServer) sendError(client *wsClient, cause error) {
	msg, err := messages.NewMessage(messages.MessageTypeServerError, &messages.ServerError{
		Code:    game.ErrorCode(cause),
		Message: cause.Error(),
	})
	if err != nil {
		log.Error("Failed to build error message: %v", err)
		return
	}
	if err := client.Send(msg); err != nil {
		log.Warn("Failed to deliver error message: %v", err)
	}
}
