package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tictactoe-arena/internal/entity"
)

type playerService interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
}

type matchQueue interface {
	Enqueue(ctx context.Context, clientID string) (*entity.WaitTicket, error)
}

type gamePlay interface {
	SubmitMove(ctx context.Context, sessionID, clientID, token string) (entity.Board, error)
}

// connection - one client socket. Writes are serialized by the mutex because
// pushes from the notification worker race with handler responses.
type connection struct {
	clientID string

	mu   sync.Mutex
	conn *websocket.Conn
}

func (that *connection) send(action string, payload ResponsePayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := Message{
		Action:  action,
		Payload: raw,
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err = that.conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Server - the messaging gateway. It turns socket messages into core calls
// and implements the notify callbacks the core pushes through.
type Server struct {
	logger *slog.Logger

	players playerService
	queue   matchQueue
	game    gamePlay

	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*connection

	handlers map[string]func(ctx context.Context, conn *connection, message *Message) error
}

func New(logger *slog.Logger, players playerService) *Server {
	server := &Server{
		logger:  logger,
		players: players,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		conns:    make(map[string]*connection),
		handlers: make(map[string]func(context.Context, *connection, *Message) error),
	}

	server.handlers[ActionConnect] = server.handleConnect
	server.handlers[ActionJoin] = server.handleJoin
	server.handlers[ActionTurn] = server.handleTurn

	return server
}

// Bind - attaches the matchmaking queue and the gameplay service. Both are
// constructed after the server because they push notifications through it.
func (that *Server) Bind(queue matchQueue, game gamePlay) {
	that.queue = queue
	that.game = game
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and processes its messages.
func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	wsConn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{conn: wsConn}

	defer func() {
		that.unregister(conn)
		_ = wsConn.Close()
	}()

	log.Info("WebSocket connection established")

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			log.Info("connection closed", "clientID", conn.clientID, "error", err)
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, conn, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) register(conn *connection) {
	that.mu.Lock()
	that.conns[conn.clientID] = conn
	that.mu.Unlock()
}

func (that *Server) unregister(conn *connection) {
	if conn.clientID == "" {
		return
	}

	that.mu.Lock()
	if current, ok := that.conns[conn.clientID]; ok && current == conn {
		delete(that.conns, conn.clientID)
	}
	that.mu.Unlock()
}

func (that *Server) lookup(clientID string) (*connection, bool) {
	that.mu.RLock()
	conn, ok := that.conns[clientID]
	that.mu.RUnlock()

	return conn, ok
}

// NotifyMatched - pushes the pairing result and the initial board render.
func (that *Server) NotifyMatched(clientID, sessionID, mark string, board entity.Board) {
	that.push(clientID, ActionMatched, ResponsePayload{
		SessionID: sessionID,
		Mark:      mark,
		Board:     &board,
	})
}

// NotifyBoardUpdated - pushes the opponent's render after a move.
func (that *Server) NotifyBoardUpdated(clientID string, move entity.Move) {
	that.push(clientID, ActionUpdate, ResponsePayload{
		Cell:  move.Coordinate.Token(),
		Mark:  move.Mark,
		Board: &move.Board,
	})
}

// NotifyGameEnded - pushes the terminal outcome.
func (that *Server) NotifyGameEnded(clientID string, outcome entity.Outcome, board entity.Board) {
	that.push(clientID, ActionEnded, ResponsePayload{
		Outcome: outcome,
		Board:   &board,
	})
}

func (that *Server) push(clientID, action string, payload ResponsePayload) {
	log := that.logger.With("method", "push", "action", action, "clientID", clientID)

	conn, ok := that.lookup(clientID)
	if !ok {
		log.Warn("client not connected, dropping notification")
		return
	}

	if err := conn.send(action, payload); err != nil {
		log.Error("failed to push notification", "error", err)
	}
}
