// Package cferr defines the error classification shared by every stage of
// the cf pipeline. Each stage returns a *Error tagged with a Kind; the
// presenter is the only place a Kind is mapped to output styling.
package cferr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Config: a required environment value is missing. Raised before any
	// network activity.
	Config Kind = iota
	// Argument: malformed or missing command-line input.
	Argument
	// Network: a transport-level failure (DNS, timeout, reset) on either
	// provider call.
	Network
	// Generation: the generation provider returned a non-success status.
	Generation
	// Upload: the delivery provider returned a non-success status.
	Upload
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "configuration error"
	case Argument:
		return "argument error"
	case Network:
		return "network error"
	case Generation:
		return "generation error"
	case Upload:
		return "upload error"
	default:
		return "error"
	}
}

type Error struct {
	Kind    Kind
	Status  int // HTTP status for provider errors, 0 otherwise
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s [%d]: %s", e.Kind, e.Status, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying cause while keeping it reachable
// through errors.Is/As chains.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf reports the classification of err. ok is false for errors that
// did not originate from a pipeline stage.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsUsage reports whether err should be rendered as a local usage problem
// (bad flags or missing credentials) rather than a provider failure.
func IsUsage(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == Config || k == Argument)
}
