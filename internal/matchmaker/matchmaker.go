package matchmaker

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"tictactoe-arena/internal/apperror"
	"tictactoe-arena/internal/entity"
	"tictactoe-arena/internal/notifier"
)

type sessionRegistry interface {
	Create(idA, idB string, session *entity.Session) (string, error)
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
}

type gateway interface {
	NotifyMatched(clientID, sessionID, mark string, board entity.Board)
}

// Matchmaker - the single background loop pairing waiting clients in arrival
// order. Only one instance may run: dequeuing two tickets must not race with
// another pairing attempt.
type Matchmaker struct {
	logger *slog.Logger

	registry sessionRegistry
	players  playerRepo
	worker   *notifier.Worker
	gateway  gateway

	queue chan *entity.WaitTicket

	mu      sync.Mutex
	waiting map[string]struct{}
}

func New(logger *slog.Logger, registry sessionRegistry, players playerRepo, worker *notifier.Worker, gateway gateway, queueCapacity int) *Matchmaker {
	return &Matchmaker{
		logger:   logger,
		registry: registry,
		players:  players,
		worker:   worker,
		gateway:  gateway,
		queue:    make(chan *entity.WaitTicket, queueCapacity),
		waiting:  make(map[string]struct{}),
	}
}

// Enqueue - places a client into the waiting queue and returns its ticket.
// A client already waiting is rejected with ErrAlreadyQueued: a second ticket
// for the same id would let the pairing loop match the client with itself.
func (that *Matchmaker) Enqueue(ctx context.Context, clientID string) (*entity.WaitTicket, error) {
	that.mu.Lock()
	if _, ok := that.waiting[clientID]; ok {
		that.mu.Unlock()
		return nil, fmt.Errorf("%w: client %s", apperror.ErrAlreadyQueued, clientID)
	}
	that.waiting[clientID] = struct{}{}
	that.mu.Unlock()

	ticket := entity.NewWaitTicket(clientID)

	select {
	case that.queue <- ticket:
		return ticket, nil
	case <-ctx.Done():
		that.release(clientID)
		return nil, fmt.Errorf("failed to enqueue wait ticket: %w", ctx.Err())
	}
}

func (that *Matchmaker) release(clientID string) {
	that.mu.Lock()
	delete(that.waiting, clientID)
	that.mu.Unlock()
}

// Run - pairs tickets two at a time until the context ends.
func (that *Matchmaker) Run(ctx context.Context) {
	log := that.logger.With("component", "matchmaker")

	for {
		first, ok := that.nextTicket(ctx)
		if !ok {
			log.Info("matchmaker stopped")
			return
		}

		second, ok := that.nextTicket(ctx)
		if !ok {
			log.Info("matchmaker stopped")
			return
		}

		if err := that.pair(ctx, first, second); err != nil {
			log.Error("failed to pair players", "error", err)
		}
	}
}

func (that *Matchmaker) nextTicket(ctx context.Context) (*entity.WaitTicket, bool) {
	select {
	case ticket := <-that.queue:
		return ticket, true
	case <-ctx.Done():
		return nil, false
	}
}

func (that *Matchmaker) pair(ctx context.Context, first, second *entity.WaitTicket) error {
	log := that.logger.With("method", "pair")

	that.release(first.ClientID)
	that.release(second.ClientID)

	// 50/50 which of the two takes the opening turn with MarkX.
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		first, second = second, first
	}

	session := entity.NewSession(first.ClientID, second.ClientID)

	sessionID, err := that.registry.Create(first.ClientID, second.ClientID, session)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	for _, ticket := range []*entity.WaitTicket{first, second} {
		participant := session.Participants[ticket.ClientID]

		player := &entity.Player{
			ID:        ticket.ClientID,
			Mark:      participant.Mark,
			SessionID: sessionID,
		}
		if err = that.players.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to update player record", "player", ticket.ClientID, "error", err)
		}

		ticket.Fulfill(sessionID, participant.Mark)
	}

	board := session.Board
	for _, ticket := range []*entity.WaitTicket{first, second} {
		clientID, mark := ticket.ClientID, ticket.Mark
		that.worker.Enqueue(func() {
			that.gateway.NotifyMatched(clientID, sessionID, mark, board)
		})
	}

	log.Info("players matched",
		"sessionID", sessionID,
		"first", first.ClientID,
		"second", second.ClientID,
	)

	return nil
}
