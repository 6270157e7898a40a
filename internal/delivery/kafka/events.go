package kafka

import (
	"encoding/json"
	"time"
)

// Boundary events published by the matchroom orchestrator. Match history,
// balances and rewards live in downstream services that consume these topics;
// the orchestrator itself keeps no durable state.

type MatchReadyEvent struct {
	MatchID   string    `json:"match_id"`
	GameType  string    `json:"game_type"`
	PlayerIDs []string  `json:"player_ids"`
	FormedAt  time.Time `json:"formed_at"`
	Timestamp time.Time `json:"timestamp"`
}

type MatchStartedEvent struct {
	MatchID   string    `json:"match_id"`
	GameType  string    `json:"game_type"`
	PlayerIDs []string  `json:"player_ids"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

type MatchEndedEvent struct {
	MatchID     string       `json:"match_id"`
	GameType    string       `json:"game_type"`
	WinnerID    string       `json:"winner_id,omitempty"`
	Winners     []string     `json:"winners,omitempty"`
	Reason      string       `json:"reason"` // completed, forfeit
	Moves       []MoveRecord `json:"moves"`
	ResultToken string       `json:"result_token,omitempty"`
	EndedAt     time.Time    `json:"ended_at"`
	Timestamp   time.Time    `json:"timestamp"`
}

type MoveRecord struct {
	PlayerID string          `json:"player_id"`
	Move     json.RawMessage `json:"move"`
	PlayedAt time.Time       `json:"played_at"`
}

// Topic names
const (
	TopicMatchReady   = "MATCH_READY"
	TopicMatchStarted = "MATCH_STARTED"
	TopicMatchEnded   = "MATCH_ENDED"
)
