package myerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError marks malformed or missing input the client can fix.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AuthorizationError marks a role or ownership mismatch.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

func NewAuthorization(format string, args ...any) error {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError marks an oversell, exceeded capacity or stale allocation.
// Required/Available carry the quantities the caller needs to act on.
type ConflictError struct {
	Msg       string
	Required  float64
	Available float64
}

func (e *ConflictError) Error() string {
	if e.Required == 0 && e.Available == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: required %.2f, available %.2f", e.Msg, e.Required, e.Available)
}

func NewConflict(msg string, required, available float64) error {
	return &ConflictError{Msg: msg, Required: required, Available: available}
}

// ExternalServiceError marks a geocoding, directions or solver failure.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func NewExternal(service string, err error) error {
	return &ExternalServiceError{Service: service, Err: err}
}

// TransactionError marks a failure inside an atomic reservation. The
// transaction it wraps has been rolled back in full.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

func NewTransaction(op string, err error) error {
	return &TransactionError{Op: op, Err: err}
}

// StatusCode maps the taxonomy onto HTTP status codes.
func StatusCode(err error) int {
	var (
		validationErr    *ValidationError
		authorizationErr *AuthorizationError
		notFoundErr      *NotFoundError
		conflictErr      *ConflictError
		externalErr      *ExternalServiceError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authorizationErr):
		return http.StatusForbidden
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	case errors.As(err, &externalErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
