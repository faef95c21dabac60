package poll

import (
	"errors"
	"fmt"
)

// ErrExpired rejects votes on a poll whose expiration date has passed.
var ErrExpired = errors.New("poll has expired")

// ValidationError reports invalid user input. It is recovered locally by
// re-showing the message; nothing is retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
