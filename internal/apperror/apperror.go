package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure.
type Kind string

const (
	KindValidation             Kind = "validation"
	KindInsufficientFunds      Kind = "insufficient_funds"
	KindNotFound               Kind = "not_found"
	KindInvalidStateTransition Kind = "invalid_state_transition"
	KindConflict               Kind = "conflict"
)

// Error is the structured error returned by every domain operation. Field names
// the offending input when one can be identified.
type Error struct {
	Kind    Kind   `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
}

// Is reports a match against any *Error of the same kind, so the sentinels
// below work with errors.Is regardless of field or message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation             = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrInsufficientFunds      = &Error{Kind: KindInsufficientFunds, Message: "insufficient funds"}
	ErrNotFound               = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidStateTransition = &Error{Kind: KindInvalidStateTransition, Message: "invalid state transition"}
	ErrConflict               = &Error{Kind: KindConflict, Message: "conflict"}
)

func Validation(field, format string, args ...any) error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func InsufficientFunds(field, format string, args ...any) error {
	return &Error{Kind: KindInsufficientFunds, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing record of the named entity.
func NotFound(entity, id string) error {
	return &Error{Kind: KindNotFound, Field: entity, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// InvalidTransition reports a disallowed change of a state field.
func InvalidTransition(field string, from, to any) error {
	return &Error{Kind: KindInvalidStateTransition, Field: field, Message: fmt.Sprintf("cannot move from %v to %v", from, to)}
}

func Conflict(field, format string, args ...any) error {
	return &Error{Kind: KindConflict, Field: field, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of err, or "" for errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
