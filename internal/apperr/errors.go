// Package apperr defines the error taxonomy shared by the editing core
// and its CLI/API surfaces.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for exit codes and HTTP status mapping.
type Kind int

const (
	// KindInternal is an invariant violation inside the core.
	KindInternal Kind = iota
	// KindHeadlineNotFound means an identifier did not resolve to a headline.
	KindHeadlineNotFound
	// KindFileNotFound means a referenced document does not exist.
	KindFileNotFound
	// KindParse means malformed structured input (batch JSON, config).
	KindParse
	// KindInvalidArgs means an unknown command or malformed argument.
	KindInvalidArgs
)

// String returns the stable name used in JSON envelopes.
func (k Kind) String() string {
	switch k {
	case KindHeadlineNotFound:
		return "headline_not_found"
	case KindFileNotFound:
		return "file_not_found"
	case KindParse:
		return "parse_error"
	case KindInvalidArgs:
		return "invalid_args"
	default:
		return "internal_error"
	}
}

// Error is a classified error with an optional detail string.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetail returns a copy of e carrying the given detail.
func (e *Error) WithDetail(detail string) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Detail: detail}
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is a classified error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
