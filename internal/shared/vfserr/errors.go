// Package vfserr defines the failure taxonomy shared by every file gateway component.
//
// All failures are a single *Error carrying a Kind. Callers match on the kind with
// errors.Is against the exported sentinels:
//
//	if errors.Is(err, vfserr.NotFound) {
//	    // 404
//	}
package vfserr

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure
type Kind string

const (
	KindUnauthorized   Kind = "unauthorized"
	KindInvalidPath    Kind = "invalid_path"
	KindNotFound       Kind = "not_found"
	KindAlreadyExists  Kind = "already_exists"
	KindProtected      Kind = "protected"
	KindIOFailure      Kind = "io_failure"
	KindArchiveFailure Kind = "archive_failure"
)

// Sentinels for errors.Is matching
var (
	Unauthorized   = &Error{Kind: KindUnauthorized}
	InvalidPath    = &Error{Kind: KindInvalidPath}
	NotFound       = &Error{Kind: KindNotFound}
	AlreadyExists  = &Error{Kind: KindAlreadyExists}
	Protected      = &Error{Kind: KindProtected}
	IOFailure      = &Error{Kind: KindIOFailure}
	ArchiveFailure = &Error{Kind: KindArchiveFailure}
)

// Error is a typed gateway failure
type Error struct {
	Kind Kind
	Op   string
	Path string
	Msg  string
	Err  error
}

// New creates an error of the given kind
func New(kind Kind, op, path, msg string) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Msg: msg}
}

// Wrap creates an error of the given kind around a cause
func Wrap(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}

	switch {
	case e.Op != "" && e.Path != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	default:
		return msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or KindIOFailure for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIOFailure
}
