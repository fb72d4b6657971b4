package users

import (
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/errorutils"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/uptrace/bun/driver/pgdriver"
)

// ErrorKind classifies a failure for the person looking at the page
type ErrorKind string

const (
	ErrorKindUnauthorized ErrorKind = "unauthorized"
	ErrorKindValidation   ErrorKind = "validation"
	ErrorKindBackend      ErrorKind = "backend"
)

// Store operations, used to label errors and metrics
const (
	OpList   = "list"
	OpCreate = "create"
	OpDelete = "delete"
)

// StoreError represents a failed call against the backing store
type StoreError struct {
	Kind  ErrorKind
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("user store error [%s] during %s: %v", e.Kind, e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError wraps cause and records its classification
func NewStoreError(op string, cause error) *StoreError {
	return &StoreError{
		Kind:  classifyCause(cause),
		Op:    op,
		Cause: cause,
	}
}

// ValidationError represents a missing or blank form field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError reports whether err is, or wraps, a ValidationError
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// Classify returns the kind of err. Errors that did not come through
// NewStoreError are classified on the spot.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if IsValidationError(err) {
		return ErrorKindValidation
	}
	var sErr *StoreError
	if errors.As(err, &sErr) {
		return sErr.Kind
	}
	return classifyCause(err)
}

// authSubstrings is a fallback for transports that only report text,
// e.g. oauth2 token refresh failures. It is a heuristic.
var authSubstrings = []string{
	"unauthorized",
	"unauthenticated",
	"401",
	"permission denied",
	"permission_denied",
	"403",
}

func classifyCause(err error) ErrorKind {
	if isStructuredAuthError(err) {
		return ErrorKindUnauthorized
	}
	msg := strings.ToLower(err.Error())
	for _, s := range authSubstrings {
		if strings.Contains(msg, s) {
			return ErrorKindUnauthorized
		}
	}
	return ErrorKindBackend
}

func isStructuredAuthError(err error) bool {
	// errorutils checks the concrete type without unwrapping
	for e := err; e != nil; e = errors.Unwrap(e) {
		if errorutils.IsUnauthenticated(e) || errorutils.IsPermissionDenied(e) {
			return true
		}
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		code := pgErr.Field('C')
		// class 28: invalid authorization specification
		if strings.HasPrefix(code, "28") || code == "42501" {
			return true
		}
	}

	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		if strings.HasPrefix(neoErr.Code, "Neo.ClientError.Security.") {
			return true
		}
	}

	return false
}

// User-facing messages
const (
	MessageUnauthorized = "Authentication error: check your Firebase credentials and database security rules."
	MessageUnexpected   = "An unexpected error occurred"
	MessageMissingField = "Please provide both name and email."
)

// UserMessage renders err as text suitable for a flash message
func UserMessage(err error) string {
	switch Classify(err) {
	case ErrorKindUnauthorized:
		return MessageUnauthorized
	case ErrorKindValidation:
		return MessageMissingField
	default:
		var sErr *StoreError
		if errors.As(err, &sErr) {
			return fmt.Sprintf("%s: %v", MessageUnexpected, sErr.Cause)
		}
		return fmt.Sprintf("%s: %v", MessageUnexpected, err)
	}
}
