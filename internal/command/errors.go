package command

import (
	"errors"
	"fmt"
)

// Kind classifies why a command failed.
type Kind string

const (
	KindInvalid     Kind = "invalid"
	KindUnavailable Kind = "unavailable"
	KindTimeout     Kind = "timeout"
	KindStorage     Kind = "storage"
)

// FieldViolation describes one rejected request field.
type FieldViolation struct {
	Field       string
	Description string
}

// CommandError is the only error type a command returns. Message is safe
// to show to a user; Err keeps the underlying cause for logs.
type CommandError struct {
	Kind       Kind
	Message    string
	Violations []FieldViolation
	Err        error
}

func (e *CommandError) Error() string {
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func newCommandError(kind Kind, message string, err error) *CommandError {
	return &CommandError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindStorage when err did not come
// from a command.
func KindOf(err error) Kind {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Kind
	}
	return KindStorage
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
