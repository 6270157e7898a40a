package errors

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid player or game type identifier")
)
