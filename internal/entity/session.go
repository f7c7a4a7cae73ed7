package entity

import (
	"context"
	"sync"
)

const (
	StatusActive = "active"
	StatusWon    = "won"
	StatusDraw   = "draw"
)

// Outcome - how a finished session looks from one participant's side.
type Outcome string

const (
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
	OutcomeDraw Outcome = "draw"
)

// Move - one published move descriptor handed from the mover to the render
// pipeline, together with a snapshot of the board right after the move. The
// session board stays the single authoritative copy; the snapshot only
// decouples rendering from later moves.
type Move struct {
	Coordinate Coordinate
	Mark       string
	Board      Board
}

// TurnSynchronizer - a single-slot exchange between the mover and the render
// pipeline. A new move can be published only after the previous one has been
// consumed; Publish suspends the caller instead of spinning.
type TurnSynchronizer struct {
	slot chan Move
}

func NewTurnSynchronizer() *TurnSynchronizer {
	return &TurnSynchronizer{
		slot: make(chan Move, 1),
	}
}

// Publish - places the move into the slot, blocking while the previously
// published move is still unconsumed.
func (that *TurnSynchronizer) Publish(ctx context.Context, move Move) error {
	select {
	case that.slot <- move:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume - takes the pending move out of the slot, freeing it for the next
// publish. Returns false if nothing is pending.
func (that *TurnSynchronizer) Consume() (Move, bool) {
	select {
	case move := <-that.slot:
		return move, true
	default:
		return Move{}, false
	}
}

// Participant - one side of a session. Turn flags are flipped only by the
// session's move pipeline, under the session lock.
type Participant struct {
	ClientID   string
	Mark       string
	Turn       bool
	OpponentID string
}

// Session - one live match. Exactly one participant has Turn=true while the
// session is active; the participant holding MarkX takes the opening turn.
// Board, Status and the turn flags are mutated only under the session lock:
// the two participants' moves arrive on separate connection goroutines.
type Session struct {
	mu sync.Mutex

	ID           string
	Board        Board
	Status       string
	Participants map[string]*Participant
	Sync         *TurnSynchronizer
}

// NewSession - builds an active session where firstID moves first with MarkX
// and secondID answers with MarkO.
func NewSession(firstID, secondID string) *Session {
	return &Session{
		Status: StatusActive,
		Participants: map[string]*Participant{
			firstID: {
				ClientID:   firstID,
				Mark:       MarkX,
				Turn:       true,
				OpponentID: secondID,
			},
			secondID: {
				ClientID:   secondID,
				Mark:       OpponentMark(MarkX),
				Turn:       false,
				OpponentID: firstID,
			},
		},
		Sync: NewTurnSynchronizer(),
	}
}

func (that *Session) Lock() {
	that.mu.Lock()
}

func (that *Session) Unlock() {
	that.mu.Unlock()
}

func (that *Session) Participant(clientID string) (*Participant, bool) {
	participant, ok := that.Participants[clientID]
	return participant, ok
}

func (that *Session) Opponent(clientID string) (*Participant, bool) {
	participant, ok := that.Participants[clientID]
	if !ok {
		return nil, false
	}

	return that.Participant(participant.OpponentID)
}

// PassTurn - hands the turn to the other participant.
func (that *Session) PassTurn() {
	for _, participant := range that.Participants {
		participant.Turn = !participant.Turn
	}
}

func (that *Session) IsActive() bool {
	return that.Status == StatusActive
}
