package service

import "encoding/json"

type JoinQueueInput struct {
	PlayerID string `json:"player_id" validate:"required"`
	GameType string `json:"game_type" validate:"required"`
}

type JoinQueueOutput struct {
	// Position is the 1-based place in the queue after formation ran;
	// 0 means this join completed a group and the player is in a match.
	Position    int `json:"position"`
	QueueLength int `json:"queue_length"`
}

type LeaveQueueInput struct {
	PlayerID string `json:"player_id" validate:"required"`
	GameType string `json:"game_type" validate:"required"`
}

type LeaveQueueOutput struct {
	Removed bool `json:"removed"`
}

type QueueStatusOutput struct {
	GameType string `json:"game_type"`
	Length   int    `json:"length"`
}

type SubmitMoveInput struct {
	MatchID  string          `json:"match_id"`
	PlayerID string          `json:"player_id" validate:"required"`
	Move     json.RawMessage `json:"move" validate:"required"`
}

type EndMatchInput struct {
	MatchID  string `json:"match_id"`
	WinnerID string `json:"winner_id"`
	Reason   string `json:"reason"`
}
