// Package errs holds the error kinds returned by the order core.
//
// Every kind has a sentinel (ErrValidation, ErrConflict, ...) and a struct
// carrying details. Unwrap returns the sentinel, so callers classify with
// errors.Is and read details with errors.As.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("object not found")
	ErrConflict          = errors.New("order no longer available")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("action is forbidden")
	ErrStorage           = errors.New("storage unavailable")
)

type ValidationError struct {
	ParamName string
	Cause     error
}

func NewValidationError(paramName string) *ValidationError {
	return &ValidationError{ParamName: paramName}
}

func NewValidationErrorWithCause(paramName string, cause error) *ValidationError {
	return &ValidationError{ParamName: paramName, Cause: cause}
}

func (e *ValidationError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValidation, e.ParamName), e.Cause)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type NotFoundError struct {
	Entity string
	ID     int64
}

func NewNotFoundError(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s %d", ErrNotFound, e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConflictError means a compare-and-swap precondition no longer held at
// write time.
type ConflictError struct {
	OrderID int64
}

func NewConflictError(orderID int64) *ConflictError {
	return &ConflictError{OrderID: orderID}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: order %d", ErrConflict, e.OrderID)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

type InvalidTransitionError struct {
	OrderID int64
	From    string
	Action  string
}

func NewInvalidTransitionError(orderID int64, from, action string) *InvalidTransitionError {
	return &InvalidTransitionError{OrderID: orderID, From: from, Action: action}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s order %d in status %s", ErrInvalidTransition, e.Action, e.OrderID, e.From)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type ForbiddenError struct {
	ActorID int64
	Reason  string
}

func NewForbiddenError(actorID int64, reason string) *ForbiddenError {
	return &ForbiddenError{ActorID: actorID, Reason: reason}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: actor %d: %s", ErrForbidden, e.ActorID, e.Reason)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// StorageError wraps a failure of the underlying store. It is the only
// kind that is safe to retry.
type StorageError struct {
	Op    string
	Cause error
}

func NewStorageError(op string, cause error) *StorageError {
	return &StorageError{Op: op, Cause: cause}
}

func (e *StorageError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrStorage, e.Op), e.Cause)
}

func (e *StorageError) Unwrap() error {
	return ErrStorage
}

func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorage)
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %s)", msg, sanitize(cause.Error()))
}

func sanitize(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
