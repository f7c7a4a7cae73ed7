package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tictactoe-arena/internal/apperror"
)

var errNotConnected = errors.New("client has not sent a connect message")

func (that *Server) handleConnect(ctx context.Context, conn *connection, msg *Message) error {
	var payload RequestPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	var playerID string
	if payload.Player != nil {
		playerID = payload.Player.ID
	}

	player, err := that.players.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to get or create player: %w", err)
	}

	conn.clientID = player.ID
	that.register(conn)

	if player.ID == playerID {
		that.logger.Info("Player connected", "playerID", player.ID)
	} else {
		that.logger.Info("Registered new player", "playerID", player.ID)
	}

	if err = conn.send(msg.Action, ResponsePayload{Player: player}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) handleJoin(ctx context.Context, conn *connection, msg *Message) error {
	if conn.clientID == "" {
		return errNotConnected
	}

	// A repeated join while still waiting is answered like the first one.
	if _, err := that.queue.Enqueue(ctx, conn.clientID); err != nil && !errors.Is(err, apperror.ErrAlreadyQueued) {
		return fmt.Errorf("failed to enqueue wait ticket: %w", err)
	}

	that.logger.Info("Player queued for matchmaking", "playerID", conn.clientID)

	if err := conn.send(msg.Action, ResponsePayload{Status: statusWaiting}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) handleTurn(ctx context.Context, conn *connection, msg *Message) error {
	if conn.clientID == "" {
		return errNotConnected
	}

	var payload RequestPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	board, err := that.game.SubmitMove(ctx, payload.SessionID, conn.clientID, payload.Cell)

	// Recoverable rejections go back to the same client so it can retry;
	// anything else is a transport-level failure.
	switch {
	case err == nil:
		return conn.send(msg.Action, ResponsePayload{SessionID: payload.SessionID, Board: &board})
	case errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrInvalidCoordinate),
		errors.Is(err, apperror.ErrSessionNotFound):
		return conn.send(msg.Action, ResponsePayload{SessionID: payload.SessionID, Error: err.Error()})
	default:
		return fmt.Errorf("failed to submit move: %w", err)
	}
}
