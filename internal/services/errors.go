package services

import "errors"

// ErrNoRoomsAvailable is returned when the room pool is empty at the start
// of a bulk allocation. The whole batch fails and nothing is written.
var ErrNoRoomsAvailable = errors.New("no rooms available")

// ErrNoGuestsCreated is returned when a roster file yields zero guests
var ErrNoGuestsCreated = errors.New("no guests could be created from the roster")

// ValidationError marks a caller mistake that should surface as HTTP 400
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
