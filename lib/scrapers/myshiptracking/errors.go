package myshiptracking

import (
	"errors"
	"fmt"
)

// ErrMarkupMismatch means the page no longer has the structure the
// extraction rules expect.
var ErrMarkupMismatch = errors.New("markup does not match extraction rules")

// ErrTransport covers failed requests and non-success statuses.
var ErrTransport = errors.New("transport failure")

// ErrInvalidArgument is a caller error, it is never retried.
var ErrInvalidArgument = errors.New("invalid argument")

type MarkupError struct {
	Rule   string
	Reason string
}

func (e *MarkupError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrMarkupMismatch.Error(), e.Rule, e.Reason)
}

func (e *MarkupError) Is(target error) bool {
	return target == ErrMarkupMismatch
}

func markupErrorf(rule string, format string, args ...any) error {
	return &MarkupError{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

type TransportError struct {
	Url        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: GET %s: %s", ErrTransport.Error(), e.Url, e.Err.Error())
	}
	return fmt.Sprintf("%s: GET %s: status %d", ErrTransport.Error(), e.Url, e.StatusCode)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
