package extractor

import (
	"errors"
	"fmt"
)

// Kind classifies extraction failures.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindFetch
	KindTimeout
	KindParse
)

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrValidation = errors.New("validation error")
	ErrFetch      = errors.New("fetch error")
	ErrTimeout    = errors.New("timeout error")
	ErrParse      = errors.New("parse error")
)

// ErrURLRequired is the cause of a validation failure for a missing url.
var ErrURLRequired = errors.New("url is required")

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindFetch:
		return "fetch"
	case KindTimeout:
		return "timeout"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindFetch:
		return ErrFetch
	case KindTimeout:
		return ErrTimeout
	case KindParse:
		return ErrParse
	default:
		return nil
	}
}

// Error is returned by Extractor.Extract for every failure.
type Error struct {
	Kind       Kind
	URL        string
	StatusCode int    // upstream status, zero when no response was received
	Status     string // upstream status text, e.g. "404 Not Found"
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindValidation && e.Err != nil:
		return e.Err.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("failed to fetch url: %s", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Kind, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s", e.Kind, e.URL)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinel, so errors.Is(err, ErrTimeout) works.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the Kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
