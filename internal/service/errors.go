package service

import appErrors "github.com/vogiaan1904/playgram-matchroom/internal/errors"

var (
	ErrInvalidArgument  = appErrors.ErrInvalidArgument
	ErrMatchNotFound    = appErrors.ErrMatchNotFound
	ErrPlayerNotInMatch = appErrors.ErrPlayerNotInMatch
	ErrMatchNotActive   = appErrors.ErrMatchNotActive
	ErrNotYourTurn      = appErrors.ErrNotYourTurn
	ErrInvalidState     = appErrors.ErrInvalidState
)
