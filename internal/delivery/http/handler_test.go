package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

func newTestServer(t *testing.T) *httptest.Server {
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
	svc := service.NewMatchroomService(qm, registry, l)

	router := NewRouter(NewHandler(svc, l), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doPost(t *testing.T, srv *httptest.Server, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.NoError(t, resp.Body.Close())

	return resp, decoded
}

func doGet(t *testing.T, srv *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.NoError(t, resp.Body.Close())

	return resp, decoded
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doGet(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestJoinQueueValidation(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doPost(t, srv, "/api/v1/queue/join", map[string]string{"player_id": "alice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQueueAndMatchLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doPost(t, srv, "/api/v1/queue/join", map[string]string{"player_id": "alice", "game_type": "chess"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 1, body["position"])

	resp, body = doPost(t, srv, "/api/v1/queue/join", map[string]string{"player_id": "bob", "game_type": "chess"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 0, body["position"])

	resp, body = doGet(t, srv, "/api/v1/queue/chess")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["length"])

	resp, snap := doGet(t, srv, "/api/v1/matches/by-player/alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	matchID, _ := snap["id"].(string)
	require.NotEmpty(t, matchID)

	for _, p := range []string{"alice", "bob"} {
		resp, _ = doPost(t, srv, "/api/v1/matches/"+matchID+"/claim", map[string]string{"player_id": p})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, snap = doGet(t, srv, "/api/v1/matches/"+matchID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", snap["status"])

	// Out of turn is a conflict with a structured error code.
	resp, body = doPost(t, srv, "/api/v1/matches/"+matchID+"/moves", map[string]any{
		"player_id": "bob",
		"move":      map[string]int{"cell": 4},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.EqualValues(t, 4005, body["error_code"])

	resp, _ = doPost(t, srv, "/api/v1/matches/"+matchID+"/moves", map[string]any{
		"player_id": "alice",
		"move":      map[string]int{"cell": 4},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doPost(t, srv, "/api/v1/matches/"+matchID+"/end", map[string]string{"winner_id": "alice"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doGet(t, srv, "/api/v1/matches/"+matchID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doPost(t, srv, "/api/v1/matches/"+matchID+"/end", map[string]string{"winner_id": "alice"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.EqualValues(t, 4002, body["error_code"])
}

func TestForfeitOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	doPost(t, srv, "/api/v1/queue/join", map[string]string{"player_id": "alice", "game_type": "go"})
	doPost(t, srv, "/api/v1/queue/join", map[string]string{"player_id": "bob", "game_type": "go"})

	resp, snap := doGet(t, srv, "/api/v1/matches/by-player/alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	matchID := snap["id"].(string)

	// Forfeit before activation is a conflict.
	resp, body := doPost(t, srv, "/api/v1/matches/"+matchID+"/forfeit", map[string]string{"player_id": "alice"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.EqualValues(t, 4004, body["error_code"])

	for _, p := range []string{"alice", "bob"} {
		doPost(t, srv, "/api/v1/matches/"+matchID+"/claim", map[string]string{"player_id": p})
	}

	resp, _ = doPost(t, srv, "/api/v1/matches/"+matchID+"/forfeit", map[string]string{"player_id": "alice"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMatchByPlayerNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doGet(t, srv, "/api/v1/matches/by-player/ghost")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
