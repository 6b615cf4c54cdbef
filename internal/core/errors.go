package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeNameTaken      = "name_taken"
	ErrCodeRateLimited    = "rate_limited"
	ErrCodeRoomNotFound   = "room_not_found"
	ErrCodeNotInRoom      = "not_in_room"
	ErrCodeCallsDisabled  = "calls_disabled"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotInRoom    = errors.New("not in room")
	ErrNameTaken    = errors.New("name already taken in room")
	ErrBadRequest   = errors.New("bad request")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
