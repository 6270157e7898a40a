package errors

import "fmt"

// HTTPError pairs a stable application error code with the HTTP status the
// control API responds with. Codes are part of the client contract; statuses
// are assigned by the delivery layer.
type HTTPError struct {
	Code       int
	Message    string
	StatusCode int
}

func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("error %d: %s", e.Code, e.Message)
}
