// Package fault defines the typed error values shared by the simulation
// core. Every failure the core can report carries one of a small set of
// stable codes so callers can branch on the class of failure without
// parsing messages.
package fault

import (
	"errors"
	"fmt"
)

type Code string

const (
	// NotFound: unknown or inactive entity id.
	NotFound Code = "NOT_FOUND"
	// InvalidArgument: non-positive time delta, malformed spawn request.
	InvalidArgument Code = "INVALID_ARGUMENT"
	// VersionMismatch: snapshot format version not supported.
	VersionMismatch Code = "VERSION_MISMATCH"
	// CorruptData: referential integrity broken on load or at tick time.
	CorruptData Code = "CORRUPT_DATA"
	// Cancelled: cooperative cancellation between ticks.
	Cancelled Code = "CANCELLED"
)

type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is match any *Error with the same code, so sentinel
// comparisons like errors.Is(err, fault.New(fault.NotFound, "")) work.
func (e *Error) Is(target error) bool {
	var fe *Error
	if errors.As(target, &fe) {
		return fe.Code == e.Code
	}
	return false
}

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the fault code from err, or "" for non-fault errors.
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

func IsNotFound(err error) bool        { return CodeOf(err) == NotFound }
func IsInvalidArgument(err error) bool { return CodeOf(err) == InvalidArgument }
func IsVersionMismatch(err error) bool { return CodeOf(err) == VersionMismatch }
func IsCorruptData(err error) bool     { return CodeOf(err) == CorruptData }
func IsCancelled(err error) bool       { return CodeOf(err) == Cancelled }
