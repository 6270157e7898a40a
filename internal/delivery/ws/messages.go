package ws

import "encoding/json"

// Inbound channel messages. The bridge accepts exactly two shapes: a move
// submission and a rejoin signal.
const (
	MsgTypeMove   = "move"
	MsgTypeRejoin = "rejoin"
)

// Unicast replies to the sender of a move.
const (
	MsgTypeMoveAccepted = "move.accepted"
	MsgTypeMoveRejected = "move.rejected"
)

type ClientMessage struct {
	Type    string          `json:"type"`
	MatchID string          `json:"match_id"`
	Move    json.RawMessage `json:"move,omitempty"`
}

type AckMessage struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
	Error   string `json:"error,omitempty"`
}
