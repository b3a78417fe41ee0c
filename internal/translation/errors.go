package translation

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures. Only NETWORK_ERROR is retryable.
type ErrorKind string

const (
	KindNetworkError       ErrorKind = "NETWORK_ERROR"
	KindTimeout            ErrorKind = "TIMEOUT"
	KindSegmentNotFound    ErrorKind = "SEGMENT_NOT_FOUND"
	KindHandlerError       ErrorKind = "HANDLER_ERROR"
	KindContextNotFound    ErrorKind = "CONTEXT_NOT_FOUND"
	KindSentenceNotFound   ErrorKind = "SENTENCE_NOT_FOUND"
	KindUnknownMessageType ErrorKind = "UNKNOWN_MESSAGE_TYPE"
)

// Error is a classified pipeline error.
type Error struct {
	Kind    ErrorKind
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// NewError creates a classified error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError classifies an underlying error.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Wrapped: err}
}

// KindOf extracts the ErrorKind from an error chain, defaulting to
// HANDLER_ERROR for unclassified errors.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindHandlerError
}

// IsRetryable reports whether the request manager may retry after err.
// Timeouts are deliberate aborts and are never retried.
func IsRetryable(err error) bool {
	return KindOf(err) == KindNetworkError
}
