package entity

import (
	"context"
	"sync"
)

// WaitTicket - a queued client's placeholder awaiting pairing. Fulfilled
// exactly once by the matchmaker and never reused.
type WaitTicket struct {
	ClientID string

	SessionID string
	Mark      string

	once sync.Once
	done chan struct{}
}

func NewWaitTicket(clientID string) *WaitTicket {
	return &WaitTicket{
		ClientID: clientID,
		done:     make(chan struct{}),
	}
}

// Fulfill - records the assigned session and mark and fires the completion
// signal. Later calls are no-ops.
func (that *WaitTicket) Fulfill(sessionID, mark string) {
	that.once.Do(func() {
		that.SessionID = sessionID
		that.Mark = mark
		close(that.done)
	})
}

// Done - closed once the ticket has been fulfilled.
func (that *WaitTicket) Done() <-chan struct{} {
	return that.done
}

// Wait - blocks until the ticket is fulfilled or the context ends.
func (that *WaitTicket) Wait(ctx context.Context) error {
	select {
	case <-that.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
