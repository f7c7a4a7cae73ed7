package entity

// Player - the externally visible identity record of a client, persisted so a
// client keeps its id across reconnects. Live game state never lives here.
type Player struct {
	ID        string `json:"id"`
	Mark      string `json:"mark,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Match - the archived record of a finished session.
type Match struct {
	ID      string   `json:"id"`
	Board   Board    `json:"board"`
	Status  string   `json:"status"`
	Winner  string   `json:"winner,omitempty"`
	Players []string `json:"players"`
}
