package websocket

import (
	"encoding/json"

	"tictactoe-arena/internal/entity"
)

const (
	ActionConnect = "connect"
	ActionJoin    = "game:join"
	ActionTurn    = "game:turn"

	ActionMatched = "game:matched"
	ActionUpdate  = "game:update"
	ActionEnded   = "game:ended"
)

const statusWaiting = "waiting"

type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	Player    *entity.Player `json:"player,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Cell      string         `json:"cell,omitempty"`
}

type ResponsePayload struct {
	Player    *entity.Player `json:"player,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Cell      string         `json:"cell,omitempty"`
	Mark      string         `json:"mark,omitempty"`
	Board     *entity.Board  `json:"board,omitempty"`
	Outcome   entity.Outcome `json:"outcome,omitempty"`
	Status    string         `json:"status,omitempty"`
	Error     string         `json:"error,omitempty"`
}
