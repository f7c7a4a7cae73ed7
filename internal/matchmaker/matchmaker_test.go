package matchmaker

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tictactoe-arena/internal/apperror"
	"tictactoe-arena/internal/entity"
	"tictactoe-arena/internal/notifier"
	"tictactoe-arena/internal/registry"
)

type matchedEvent struct {
	clientID  string
	sessionID string
	mark      string
	board     entity.Board
}

type fakeGateway struct {
	matched chan matchedEvent
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{matched: make(chan matchedEvent, 16)}
}

func (that *fakeGateway) NotifyMatched(clientID, sessionID, mark string, board entity.Board) {
	that.matched <- matchedEvent{clientID: clientID, sessionID: sessionID, mark: mark, board: board}
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	records map[string]*entity.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{records: make(map[string]*entity.Player)}
}

func (that *fakePlayerRepo) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.records[player.ID] = player
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func awaitMatched(t *testing.T, gw *fakeGateway) matchedEvent {
	t.Helper()

	select {
	case event := <-gw.matched:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no matched notification arrived")
		return matchedEvent{}
	}
}

func awaitTicket(t *testing.T, ticket *entity.WaitTicket) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ticket.Wait(ctx))
}

func TestMatchmaker_PairsTwoWaitingClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := registry.New()
	worker := notifier.New(testLogger(), 16)
	gw := newFakeGateway()
	players := newFakePlayerRepo()

	maker := New(testLogger(), reg, players, worker, gw, 16)
	go worker.Run(ctx)
	go maker.Run(ctx)

	// Given: two clients queued
	first, err := maker.Enqueue(ctx, "p1")
	require.NoError(t, err)
	second, err := maker.Enqueue(ctx, "p2")
	require.NoError(t, err)

	// When: the matchmaker pairs them
	awaitTicket(t, first)
	awaitTicket(t, second)

	// Then: both tickets share one session and hold distinct marks
	require.Equal(t, first.SessionID, second.SessionID)
	assert.NotEqual(t, first.Mark, second.Mark)
	assert.ElementsMatch(t, []string{entity.MarkX, entity.MarkO}, []string{first.Mark, second.Mark})

	// And: the session exists with the X holder on turn
	session, err := reg.Get(first.SessionID)
	require.NoError(t, err)
	for _, ticket := range []*entity.WaitTicket{first, second} {
		participant, ok := session.Participant(ticket.ClientID)
		require.True(t, ok)
		assert.Equal(t, ticket.Mark, participant.Mark)
		assert.Equal(t, ticket.Mark == entity.MarkX, participant.Turn)
	}

	// And: both clients get an initial render of the empty board
	events := []matchedEvent{awaitMatched(t, gw), awaitMatched(t, gw)}
	clients := make([]string, 0, 2)
	for _, event := range events {
		clients = append(clients, event.clientID)
		assert.Equal(t, first.SessionID, event.sessionID)
		assert.Equal(t, entity.Board{}, event.board)
	}
	assert.ElementsMatch(t, []string{"p1", "p2"}, clients)

	// And: the player records carry the assignment
	players.mu.Lock()
	defer players.mu.Unlock()
	require.Len(t, players.records, 2)
	assert.Equal(t, first.SessionID, players.records["p1"].SessionID)
	assert.Equal(t, first.SessionID, players.records["p2"].SessionID)
}

func TestMatchmaker_PairsInArrivalOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := registry.New()
	worker := notifier.New(testLogger(), 32)
	gw := newFakeGateway()

	maker := New(testLogger(), reg, newFakePlayerRepo(), worker, gw, 16)
	go worker.Run(ctx)

	// Given: four clients queued before the loop starts
	tickets := make([]*entity.WaitTicket, 0, 4)
	for _, clientID := range []string{"p1", "p2", "p3", "p4"} {
		ticket, err := maker.Enqueue(ctx, clientID)
		require.NoError(t, err)
		tickets = append(tickets, ticket)
	}

	// When: the matchmaker runs
	go maker.Run(ctx)
	for _, ticket := range tickets {
		awaitTicket(t, ticket)
	}

	// Then: FIFO pairing groups (p1,p2) and (p3,p4)
	assert.Equal(t, tickets[0].SessionID, tickets[1].SessionID)
	assert.Equal(t, tickets[2].SessionID, tickets[3].SessionID)
	assert.NotEqual(t, tickets[0].SessionID, tickets[2].SessionID)
}

func TestMatchmaker_RejectsDuplicateJoin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := registry.New()
	worker := notifier.New(testLogger(), 16)
	gw := newFakeGateway()

	maker := New(testLogger(), reg, newFakePlayerRepo(), worker, gw, 16)
	go worker.Run(ctx)
	go maker.Run(ctx)

	// Given: a client already waiting
	first, err := maker.Enqueue(ctx, "p1")
	require.NoError(t, err)

	// When: the same client joins again
	_, err = maker.Enqueue(ctx, "p1")

	// Then: the duplicate is rejected rather than paired against itself
	require.ErrorIs(t, err, apperror.ErrAlreadyQueued)

	// And: a real opponent still pairs the waiting client
	second, err := maker.Enqueue(ctx, "p2")
	require.NoError(t, err)
	awaitTicket(t, first)
	awaitTicket(t, second)

	session, err := reg.Get(first.SessionID)
	require.NoError(t, err)
	require.Len(t, session.Participants, 2)
	participant, ok := session.Participant("p1")
	require.True(t, ok)
	assert.NotEqual(t, "p1", participant.OpponentID)

	// And: once matched the client may queue for the next game
	_, err = maker.Enqueue(ctx, "p1")
	require.NoError(t, err)
}
