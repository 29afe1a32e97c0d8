package scheme

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicateTicket   = errors.New("duplicate ticket number")
	ErrNotFound          = errors.New("scheme not found")
	ErrForbidden         = errors.New("actor not allowed to perform this operation")
	ErrConcurrentUpdate  = errors.New("scheme was modified concurrently")
)

type FieldError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationError lists every violated field, not just the first one.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records a violation.
func (e *ValidationError) Add(field string, value any, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Value: value, Message: msg})
}

// OrNil returns e when at least one field was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

type InvalidTransitionError struct {
	SchemeID string
	Op       Op
	From     Status
	Reason   string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: scheme %s: %s", ErrInvalidTransition, e.SchemeID, e.Reason)
	}
	return fmt.Sprintf("%s: scheme %s cannot %s from %s", ErrInvalidTransition, e.SchemeID, e.Op, e.From)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

type DuplicateTicketError struct {
	SchemeID     string
	TicketNumber int
}

func (e *DuplicateTicketError) Error() string {
	return fmt.Sprintf("%s: scheme %s ticket %d", ErrDuplicateTicket, e.SchemeID, e.TicketNumber)
}

func (e *DuplicateTicketError) Unwrap() error { return ErrDuplicateTicket }

type NotFoundError struct {
	SchemeID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, e.SchemeID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
