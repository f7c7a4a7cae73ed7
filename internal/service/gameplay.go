package service

import (
	"context"
	"fmt"
	"log/slog"

	"tictactoe-arena/internal/apperror"
	"tictactoe-arena/internal/entity"
	"tictactoe-arena/internal/notifier"
)

type sessionRegistry interface {
	Get(id string) (*entity.Session, error)
	Remove(id string) bool
}

type matchRepo interface {
	CreateOrUpdate(ctx context.Context, match *entity.Match) error
}

type gateway interface {
	NotifyBoardUpdated(clientID string, move entity.Move)
	NotifyGameEnded(clientID string, outcome entity.Outcome, board entity.Board)
}

type GamePlayService interface {
	SubmitMove(ctx context.Context, sessionID, clientID, token string) (entity.Board, error)
}

type gamePlayService struct {
	logger *slog.Logger

	registry sessionRegistry
	worker   *notifier.Worker
	gateway  gateway
	matches  matchRepo
	players  playerRepo
}

func NewGamePlayService(logger *slog.Logger, registry sessionRegistry, worker *notifier.Worker, gateway gateway, matches matchRepo, players playerRepo) GamePlayService {
	return &gamePlayService{
		logger:   logger,
		registry: registry,
		worker:   worker,
		gateway:  gateway,
		matches:  matches,
		players:  players,
	}
}

// SubmitMove - validates and applies one move. Recoverable rejections
// (ErrNotYourTurn, ErrCellOccupied, ErrInvalidCoordinate) leave the board and
// turn flags untouched; a terminal move removes the session from the registry
// and notifies both participants, a non-terminal move hands off to the render
// pipeline and passes the turn.
func (that *gamePlayService) SubmitMove(ctx context.Context, sessionID, clientID, token string) (entity.Board, error) {
	coord, err := entity.ParseCoordinate(token)
	if err != nil {
		return entity.Board{}, fmt.Errorf("failed to parse move: %w", err)
	}

	session, err := that.registry.Get(sessionID)
	if err != nil {
		return entity.Board{}, fmt.Errorf("failed to get session: %w", err)
	}

	board, status, err := that.advance(ctx, session, clientID, coord)
	if err != nil {
		return board, err
	}

	mover, _ := session.Participant(clientID)
	opponent, _ := session.Opponent(clientID)

	switch status {
	case entity.StatusWon:
		that.finishSession(ctx, session, mover.Mark)
		that.notifyEnded(mover.ClientID, entity.OutcomeWon, board)
		that.notifyEnded(opponent.ClientID, entity.OutcomeLost, board)
	case entity.StatusDraw:
		that.finishSession(ctx, session, "")
		that.notifyEnded(mover.ClientID, entity.OutcomeDraw, board)
		that.notifyEnded(opponent.ClientID, entity.OutcomeDraw, board)
	default:
		opponentID := opponent.ClientID
		that.worker.Enqueue(func() {
			pending, ok := session.Sync.Consume()
			if !ok {
				that.logger.Error("handoff slot empty at render time", "sessionID", session.ID)
				return
			}

			that.gateway.NotifyBoardUpdated(opponentID, pending)
		})
	}

	return board, nil
}

// advance - the validate-mutate-transition section of the pipeline, run under
// the session lock: the two participants submit from separate connection
// goroutines. The lock is never held across registry or gateway calls. It
// returns the board and status as of this move; the caller must act on the
// returned status, not on session.Status, which a later move may have already
// advanced.
func (that *gamePlayService) advance(ctx context.Context, session *entity.Session, clientID string, coord entity.Coordinate) (entity.Board, string, error) {
	session.Lock()
	defer session.Unlock()

	if !session.IsActive() {
		return session.Board, session.Status, fmt.Errorf("%w: session %s is finished", apperror.ErrSessionNotFound, session.ID)
	}

	mover, ok := session.Participant(clientID)
	if !ok {
		return entity.Board{}, session.Status, fmt.Errorf("%w: client %s, session %s", apperror.ErrNotInSession, clientID, session.ID)
	}

	if !mover.Turn {
		return session.Board, session.Status, apperror.ErrNotYourTurn
	}

	if session.Board.Cell(coord) != entity.EmptyCell {
		return session.Board, session.Status, apperror.ErrCellOccupied
	}

	session.Board.SetCell(coord, mover.Mark)

	switch {
	case session.Board.HasWon(mover.Mark):
		session.Status = entity.StatusWon
	case session.Board.IsDraw():
		session.Status = entity.StatusDraw
	default:
		move := entity.Move{
			Coordinate: coord,
			Mark:       mover.Mark,
			Board:      session.Board,
		}

		// Suspends while the previous move is still unconsumed; the
		// worker's strict ordering guarantees consumption, so this
		// never spins. The turn passes only after the publish so the
		// opponent cannot slip a move into the slot ahead of this one.
		if err := session.Sync.Publish(ctx, move); err != nil {
			return session.Board, session.Status, fmt.Errorf("failed to publish move: %w", err)
		}

		session.PassTurn()
	}

	return session.Board, session.Status, nil
}

// finishSession - the exactly-once terminal transition: removes the session
// from the registry, archives the result and clears both player records.
func (that *gamePlayService) finishSession(ctx context.Context, session *entity.Session, winner string) {
	log := that.logger.With("method", "finishSession", "sessionID", session.ID)

	if !that.registry.Remove(session.ID) {
		log.Error("session already removed")
	}

	match := &entity.Match{
		ID:     session.ID,
		Board:  session.Board,
		Status: session.Status,
		Winner: winner,
	}
	for clientID := range session.Participants {
		match.Players = append(match.Players, clientID)
	}

	if err := that.matches.CreateOrUpdate(ctx, match); err != nil {
		log.Error("failed to archive match", "error", err)
	}

	for clientID := range session.Participants {
		player := &entity.Player{ID: clientID}
		if err := that.players.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to update player record", "player", clientID, "error", err)
		}
	}

	log.Info("session finished", "status", session.Status, "winner", winner)
}

func (that *gamePlayService) notifyEnded(clientID string, outcome entity.Outcome, board entity.Board) {
	that.worker.Enqueue(func() {
		that.gateway.NotifyGameEnded(clientID, outcome, board)
	})
}
