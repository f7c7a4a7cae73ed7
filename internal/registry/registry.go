package registry

import (
	"crypto/sha1" //nolint: gosec // ids are lookup keys, not secrets
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"tictactoe-arena/internal/apperror"
	"tictactoe-arena/internal/entity"
)

// The id space (8 hash bytes) vastly exceeds any realistic number of live
// sessions; hitting the probe bound means something is badly wrong.
const maxProbes = 1 << 16

var ErrIDSpaceExhausted = errors.New("session id space exhausted")

// Registry - the id->Session map shared by the matchmaker and the gameplay
// service. The lock guards map operations only, never a session mutation.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func New() *Registry {
	return &Registry{
		sessions: make(map[string]*entity.Session),
	}
}

// Create - derives an identifier from the two client ids plus a salt counter,
// probes until a free one is found, assigns it to the session and inserts it.
// Derivation and insertion happen under one lock acquisition so concurrent
// calls can never claim the same live identifier. Ids may be reused after the
// session is removed.
func (that *Registry) Create(idA, idB string, session *entity.Session) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for salt := 0; salt < maxProbes; salt++ {
		id := deriveID(idA, idB, salt)
		if _, exists := that.sessions[id]; exists {
			continue
		}

		session.ID = id
		that.sessions[id] = session

		return id, nil
	}

	return "", ErrIDSpaceExhausted
}

func (that *Registry) Get(id string) (*entity.Session, error) {
	that.mu.Lock()
	session, ok := that.sessions[id]
	that.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return session, nil
}

// Remove - deletes the session; reports whether it was still present.
func (that *Registry) Remove(id string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[id]; !ok {
		return false
	}

	delete(that.sessions, id)

	return true
}

func (that *Registry) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.sessions)
}

func deriveID(idA, idB string, salt int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s:%s:%d", idA, idB, salt))) //nolint: gosec // see above

	return hex.EncodeToString(sum[:8])
}
