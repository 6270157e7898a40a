package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/playgram-matchroom/config"
	"github.com/vogiaan1904/playgram-matchroom/internal/events"
	"github.com/vogiaan1904/playgram-matchroom/internal/match"
	"github.com/vogiaan1904/playgram-matchroom/internal/queue"
	"github.com/vogiaan1904/playgram-matchroom/pkg/logger"
	"github.com/vogiaan1904/playgram-matchroom/pkg/token"
)

func newTestService(t *testing.T) MatchroomService {
	t.Helper()

	l := logger.InitializeTestZapLogger()
	cfg := config.MatchroomConfig{
		MatchSize:     2,
		AfkTimeout:    time.Minute,
		TickInterval:  time.Second,
		ForfeitPolicy: config.ForfeitPolicyCoWinners,
	}

	signer := token.NewSigner(config.JWTConfig{Secret: "test-secret", Expiry: time.Hour})
	registry := match.NewRegistry(events.NewBus(l), nil, signer, cfg, l)
	qm := queue.NewManager(registry, cfg, l)

	return NewMatchroomService(qm, registry, l)
}

func TestQueueStatusValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.QueueStatus(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	out, err := svc.QueueStatus(ctx, "chess")
	require.NoError(t, err)
	assert.Equal(t, 0, out.Length)
}

func TestLeaveQueueValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.LeaveQueue(ctx, LeaveQueueInput{PlayerID: "alice"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	out, err := svc.LeaveQueue(ctx, LeaveQueueInput{PlayerID: "alice", GameType: "chess"})
	require.NoError(t, err)
	assert.False(t, out.Removed)
}

// Full lifecycle through the service surface alone: queue, form, claim,
// alternate moves, finish with a reported result.
func TestFullMatchLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	out, err := svc.JoinQueue(ctx, JoinQueueInput{PlayerID: "alice", GameType: "tic-tac-toe"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Position)
	assert.Equal(t, 1, out.QueueLength)

	out, err = svc.JoinQueue(ctx, JoinQueueInput{PlayerID: "bob", GameType: "tic-tac-toe"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Position)
	assert.Equal(t, 0, out.QueueLength)

	snap, ok := svc.FindByPlayer(ctx, "alice")
	require.True(t, ok)
	matchID := snap.ID
	assert.Equal(t, match.StatusFormed, snap.Status)

	require.NoError(t, svc.Claim(ctx, matchID, "alice"))
	require.NoError(t, svc.Claim(ctx, matchID, "bob"))

	snap, ok = svc.Snapshot(ctx, matchID)
	require.True(t, ok)
	assert.Equal(t, match.StatusActive, snap.Status)

	move := json.RawMessage(`{"cell":4}`)

	err = svc.SubmitMove(ctx, SubmitMoveInput{MatchID: matchID, PlayerID: "bob", Move: move})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	require.NoError(t, svc.SubmitMove(ctx, SubmitMoveInput{MatchID: matchID, PlayerID: "alice", Move: move}))
	require.NoError(t, svc.SubmitMove(ctx, SubmitMoveInput{MatchID: matchID, PlayerID: "bob", Move: move}))

	snap, ok = svc.Snapshot(ctx, matchID)
	require.True(t, ok)
	assert.Len(t, snap.Moves, 2)
	assert.Equal(t, 0, snap.Turn)

	require.NoError(t, svc.End(ctx, EndMatchInput{MatchID: matchID, WinnerID: "alice"}))

	_, ok = svc.Snapshot(ctx, matchID)
	assert.False(t, ok)
	_, ok = svc.FindByPlayer(ctx, "alice")
	assert.False(t, ok)

	// Both players are free to queue again.
	out, err = svc.JoinQueue(ctx, JoinQueueInput{PlayerID: "alice", GameType: "tic-tac-toe"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Position)
}

func TestForfeitThroughService(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.JoinQueue(ctx, JoinQueueInput{PlayerID: "alice", GameType: "chess"})
	require.NoError(t, err)
	_, err = svc.JoinQueue(ctx, JoinQueueInput{PlayerID: "bob", GameType: "chess"})
	require.NoError(t, err)

	snap, ok := svc.FindByPlayer(ctx, "bob")
	require.True(t, ok)

	require.NoError(t, svc.Claim(ctx, snap.ID, "alice"))
	require.NoError(t, svc.Claim(ctx, snap.ID, "bob"))

	require.NoError(t, svc.Forfeit(ctx, snap.ID, "bob"))

	err = svc.SubmitMove(ctx, SubmitMoveInput{MatchID: snap.ID, PlayerID: "alice", Move: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrMatchNotActive)
}
