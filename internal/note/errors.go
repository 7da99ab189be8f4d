package note

import (
	"errors"
	"fmt"
)

// Error kinds. Store implementations wrap or return errors matching exactly
// one of these so callers can route them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("not authenticated")
	ErrNotFound   = errors.New("note not found")
	ErrNetwork    = errors.New("store unreachable")
)

// ValidationError reports a bad or missing field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes a *ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid returns a validation error for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Kind classifies an error for display routing.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindNetwork
	KindUnknown
)

// String returns the display name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not-found"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// KindOf classifies err.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// FieldOf returns the offending field of a validation error, if any.
func FieldOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
