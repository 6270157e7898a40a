package http

import (
	"errors"
	"net/http"

	appErrors "github.com/vogiaan1904/playgram-matchroom/internal/errors"
	pkgErrors "github.com/vogiaan1904/playgram-matchroom/pkg/errors"
)

var (
	errInvalidArgument  = pkgErrors.NewHTTPError(4001, "Invalid player or game type identifier")
	errMatchNotFound    = pkgErrors.NewHTTPError(4002, "Match not found")
	errPlayerNotInMatch = pkgErrors.NewHTTPError(4003, "Player is not part of this match")
	errMatchNotActive   = pkgErrors.NewHTTPError(4004, "Match is not active")
	errNotYourTurn      = pkgErrors.NewHTTPError(4005, "Not your turn")
	errInvalidState     = pkgErrors.NewHTTPError(4006, "Operation not allowed in current match state")
)

func init() {
	errInvalidArgument.StatusCode = http.StatusBadRequest
	errMatchNotFound.StatusCode = http.StatusNotFound
	errPlayerNotInMatch.StatusCode = http.StatusNotFound
	errMatchNotActive.StatusCode = http.StatusConflict
	errNotYourTurn.StatusCode = http.StatusConflict
	errInvalidState.StatusCode = http.StatusConflict
}

func mapHTTPError(err error) *pkgErrors.HTTPError {
	switch {
	case errors.Is(err, appErrors.ErrInvalidArgument):
		return errInvalidArgument
	case errors.Is(err, appErrors.ErrMatchNotFound):
		return errMatchNotFound
	case errors.Is(err, appErrors.ErrPlayerNotInMatch):
		return errPlayerNotInMatch
	case errors.Is(err, appErrors.ErrMatchNotActive):
		return errMatchNotActive
	case errors.Is(err, appErrors.ErrNotYourTurn):
		return errNotYourTurn
	case errors.Is(err, appErrors.ErrInvalidState):
		return errInvalidState
	default:
		return nil
	}
}
