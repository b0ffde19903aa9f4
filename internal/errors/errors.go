// internal/errors/errors.go
package appErrors

import "fmt"

// ValidationError rejects bad input before persistence. Never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func NewValidation(reason string) error {
	return &ValidationError{Reason: reason}
}

// ConflictError signals a duplicate message id. Callers must not retry
// with the same id.
type ConflictError struct {
	ID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("scheduled message %s already exists", e.ID)
}

func NewConflict(id string) error {
	return &ConflictError{ID: id}
}

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// AlreadyProcessingError is returned when a cancel request loses the race
// against a dispatcher claiming the message.
type AlreadyProcessingError struct {
	ID string
}

func (e *AlreadyProcessingError) Error() string {
	return fmt.Sprintf("message %s is already processing", e.ID)
}

func NewAlreadyProcessing(id string) error {
	return &AlreadyProcessingError{ID: id}
}
