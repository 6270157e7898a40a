package errors

import "errors"

// Caller errors. A rejected operation is a complete no-op on orchestrator state.
var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrPlayerNotInMatch = errors.New("player is not part of this match")
	ErrMatchNotActive   = errors.New("match is not active")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidState     = errors.New("operation not allowed in current match state")
)
