package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrUpstream               = errors.New("upstream service error")
	ErrInsufficientCredits    = errors.New("insufficient credits")
	ErrInsufficientTranscript = errors.New("insufficient transcript data")
	ErrVendorNotConfigured    = errors.New("voice vendor not configured")
)

// Validationf wraps ErrValidation with a user-facing message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a user-facing message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Upstreamf wraps ErrUpstream with context about the failing dependency.
func Upstreamf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUpstream, fmt.Sprintf(format, args...))
}

// Status maps an error to its HTTP status code. Unknown errors are 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInsufficientCredits),
		errors.Is(err, ErrInsufficientTranscript):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message extracts the user-facing text, stripping the sentinel prefix that
// Validationf and friends prepend.
func Message(err error) string {
	for _, sentinel := range []error{ErrValidation, ErrNotFound, ErrUpstream} {
		if errors.Is(err, sentinel) {
			msg := err.Error()
			prefix := sentinel.Error() + ": "
			if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
				return msg[len(prefix):]
			}
		}
	}
	return err.Error()
}
