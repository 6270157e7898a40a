package match

import "encoding/json"

// Bus payloads delivered to the players involved in a match. The websocket
// bridge serializes these as-is.

type MatchReadyPayload struct {
	MatchID   string   `json:"match_id"`
	GameType  string   `json:"game_type"`
	PlayerIDs []string `json:"player_ids"`
}

type MatchStartedPayload struct {
	MatchID string `json:"match_id"`
	Turn    int    `json:"turn"`
}

type StatePayload struct {
	MatchID  string          `json:"match_id"`
	Turn     int             `json:"turn"`
	PlayerID string          `json:"player_id"`
	LastMove json.RawMessage `json:"last_move"`
}

type TimerTickPayload struct {
	MatchID     string `json:"match_id"`
	PlayerID    string `json:"player_id"`
	RemainingMS int64  `json:"remaining_ms"`
}

type MatchEndPayload struct {
	MatchID string   `json:"match_id"`
	Winner  string   `json:"winner,omitempty"`
	Winners []string `json:"winners,omitempty"`
	Reason  string   `json:"reason"`
}
