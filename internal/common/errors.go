// Package common defines the error taxonomy shared by the funder store,
// services and transport. Callers should use errors.Is against the sentinel
// values, or errors.As with *Error to read the kind and metadata.
package common

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error classification.
type Kind string

const (
	KindNotFound               Kind = "NOT_FOUND"
	KindDuplicateKey           Kind = "DUPLICATE_KEY"
	KindInvalidArgument        Kind = "INVALID_ARGUMENT"
	KindQuotaExceeded          Kind = "QUOTA_EXCEEDED"
	KindDataIntegrityViolation Kind = "DATA_INTEGRITY_VIOLATION"
	KindInternal               Kind = "INTERNAL"
)

var (
	// Store-level errors.
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "not found"}
	ErrDuplicateKey  = &Error{Kind: KindDuplicateKey, Message: "duplicate key"}
	ErrDataIntegrity = &Error{Kind: KindDataIntegrityViolation, Message: "data integrity violation"}

	// Service-level errors.
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrQuotaExceeded   = &Error{Kind: KindQuotaExceeded, Message: "quota exceeded"}
	ErrInternal        = &Error{Kind: KindInternal, Message: "internal error"}
)

// Error is a classified error with optional metadata (field names, amounts)
// and an optional underlying cause.
type Error struct {
	Kind     Kind
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same Kind, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithMetadata creates an error carrying key/value context.
func WithMetadata(kind Kind, message string, metadata map[string]string) *Error {
	return &Error{Kind: kind, Message: message, Metadata: metadata}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MetadataOf returns the metadata attached to err, if any.
func MetadataOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Metadata
	}
	return nil
}
