package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/playgram-matchroom/config"
	"github.com/vogiaan1904/playgram-matchroom/internal/events"
	"github.com/vogiaan1904/playgram-matchroom/internal/match"
	"github.com/vogiaan1904/playgram-matchroom/internal/queue"
	"github.com/vogiaan1904/playgram-matchroom/internal/service"
	"github.com/vogiaan1904/playgram-matchroom/pkg/logger"
	"github.com/vogiaan1904/playgram-matchroom/pkg/token"
)

type memoryPresence struct {
	mu     sync.Mutex
	online map[string]bool
}

func newMemoryPresence() *memoryPresence {
	return &memoryPresence{online: make(map[string]bool)}
}

func (m *memoryPresence) SetOnline(_ context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online[playerID] = true
	return nil
}

func (m *memoryPresence) SetOffline(_ context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.online, playerID)
	return nil
}

func (m *memoryPresence) Refresh(_ context.Context, _ string) error { return nil }

func (m *memoryPresence) IsOnline(_ context.Context, playerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online[playerID], nil
}

type bridgeHarness struct {
	svc      service.MatchroomService
	presence *memoryPresence
	srv      *httptest.Server
}

func newBridgeHarness(t *testing.T) *bridgeHarness {
	t.Helper()

	l := logger.InitializeTestZapLogger()
	cfg := config.MatchroomConfig{
		MatchSize:     2,
		AfkTimeout:    time.Minute,
		TickInterval:  time.Second,
		ForfeitPolicy: config.ForfeitPolicyCoWinners,
	}

	bus := events.NewBus(l)
	signer := token.NewSigner(config.JWTConfig{Secret: "test-secret", Expiry: time.Hour})
	registry := match.NewRegistry(bus, nil, signer, cfg, l)
	qm := queue.NewManager(registry, cfg, l)
	svc := service.NewMatchroomService(qm, registry, l)

	presence := newMemoryPresence()
	bridge := NewBridge(bus, svc, presence, l)

	r := chi.NewRouter()
	r.Get("/ws/{playerID}", bridge.ServeWS)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &bridgeHarness{svc: svc, presence: presence, srv: srv}
}

func (h *bridgeHarness) dial(t *testing.T, playerID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws/" + playerID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// waitOnline blocks until the bridge has registered the players' channels;
// presence flips online only after the bus subscription exists.
func (h *bridgeHarness) waitOnline(t *testing.T, playerIDs ...string) {
	t.Helper()

	require.Eventually(t, func() bool {
		for _, p := range playerIDs {
			if on, _ := h.presence.IsOnline(context.Background(), p); !on {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond)
}

// readFrameOfType drains frames until one with the wanted type arrives.
func readFrameOfType(t *testing.T, conn *websocket.Conn, wanted string) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var frame map[string]any
		require.NoError(t, json.Unmarshal(raw, &frame))
		if frame["type"] == wanted {
			return frame
		}
	}
}

func TestBridgeDeliversLifecycleEvents(t *testing.T) {
	h := newBridgeHarness(t)
	ctx := context.Background()

	alice := h.dial(t, "alice")
	bob := h.dial(t, "bob")

	h.waitOnline(t, "alice", "bob")

	_, err := h.svc.JoinQueue(ctx, service.JoinQueueInput{PlayerID: "alice", GameType: "chess"})
	require.NoError(t, err)
	_, err = h.svc.JoinQueue(ctx, service.JoinQueueInput{PlayerID: "bob", GameType: "chess"})
	require.NoError(t, err)

	frame := readFrameOfType(t, alice, "match_ready")
	matchID, _ := frame["match_id"].(string)
	require.NotEmpty(t, matchID)
	readFrameOfType(t, bob, "match_ready")

	require.NoError(t, h.svc.Claim(ctx, matchID, "alice"))
	require.NoError(t, h.svc.Claim(ctx, matchID, "bob"))

	readFrameOfType(t, alice, "match_started")
	readFrameOfType(t, bob, "match_started")
}

func TestBridgeHandlesMoveFrames(t *testing.T) {
	h := newBridgeHarness(t)
	ctx := context.Background()

	alice := h.dial(t, "alice")
	bob := h.dial(t, "bob")
	h.waitOnline(t, "alice", "bob")

	_, err := h.svc.JoinQueue(ctx, service.JoinQueueInput{PlayerID: "alice", GameType: "chess"})
	require.NoError(t, err)
	_, err = h.svc.JoinQueue(ctx, service.JoinQueueInput{PlayerID: "bob", GameType: "chess"})
	require.NoError(t, err)

	frame := readFrameOfType(t, alice, "match_ready")
	matchID := frame["match_id"].(string)

	require.NoError(t, h.svc.Claim(ctx, matchID, "alice"))
	require.NoError(t, h.svc.Claim(ctx, matchID, "bob"))

	// Turn 0 belongs to alice; bob's move is rejected with the reason attached.
	require.NoError(t, bob.WriteJSON(ClientMessage{
		Type:    MsgTypeMove,
		MatchID: matchID,
		Move:    json.RawMessage(`{"cell":1}`),
	}))
	rejected := readFrameOfType(t, bob, MsgTypeMoveRejected)
	assert.NotEmpty(t, rejected["error"])

	require.NoError(t, alice.WriteJSON(ClientMessage{
		Type:    MsgTypeMove,
		MatchID: matchID,
		Move:    json.RawMessage(`{"cell":4}`),
	}))
	readFrameOfType(t, alice, MsgTypeMoveAccepted)

	// Both players observe the state advance.
	state := readFrameOfType(t, bob, "state")
	assert.Equal(t, matchID, state["match_id"])
}

func TestDisconnectClearsPresenceWithoutForfeit(t *testing.T) {
	h := newBridgeHarness(t)
	ctx := context.Background()

	alice := h.dial(t, "alice")
	h.waitOnline(t, "alice")

	_, err := h.svc.JoinQueue(ctx, service.JoinQueueInput{PlayerID: "alice", GameType: "chess"})
	require.NoError(t, err)
	_, err = h.svc.JoinQueue(ctx, service.JoinQueueInput{PlayerID: "bob", GameType: "chess"})
	require.NoError(t, err)

	frame := readFrameOfType(t, alice, "match_ready")
	matchID := frame["match_id"].(string)

	require.NoError(t, h.svc.Claim(ctx, matchID, "alice"))
	require.NoError(t, h.svc.Claim(ctx, matchID, "bob"))

	require.NoError(t, alice.Close())

	require.Eventually(t, func() bool {
		on, _ := h.presence.IsOnline(ctx, "alice")
		return !on
	}, 2*time.Second, 10*time.Millisecond)

	// The match stays live; only the AFK deadline can forfeit.
	snap, ok := h.svc.Snapshot(ctx, matchID)
	require.True(t, ok)
	assert.Equal(t, match.StatusActive, snap.Status)
}
