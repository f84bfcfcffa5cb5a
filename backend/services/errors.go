package services

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is; every *Error unwraps to exactly one of them.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrReference           = errors.New("dangling reference")
	ErrConflict            = errors.New("conflict")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrTransport           = errors.New("store unavailable")
)

// Error carries the failing operation alongside its kind and cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalid(op, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: ErrInvalidArgument, Err: fmt.Errorf(format, args...)}
}

func reference(op, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: ErrReference, Err: fmt.Errorf(format, args...)}
}

// transport wraps a storage fault. Nil stays nil so call sites can wrap
// unconditionally.
func transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: ErrTransport, Err: err}
}
