// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. This enables better error categorization, logging,
// and user experience by providing context-aware error information.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// CredentialsRejected indicates the backend refused a login attempt.
	CredentialsRejected Kind = "credentials_rejected"
	// RegistrationInvalid indicates the backend refused a registration request.
	RegistrationInvalid Kind = "registration_invalid"
	// RefreshRejected indicates the refresh token is expired, revoked, or otherwise unusable.
	RefreshRejected Kind = "refresh_rejected"
	// NotAuthenticated indicates an operation requiring a session was called without one.
	NotAuthenticated Kind = "not_authenticated"
	// Transient indicates a network or server failure that may succeed on retry.
	Transient Kind = "transient"
	// StorageFailed indicates the OS keychain rejected a read or write.
	StorageFailed Kind = "storage_failed"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind carried by err, or Transient when err has no kind.
// Unclassified failures are treated as retryable rather than fatal.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Transient
}
