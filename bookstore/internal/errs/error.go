package errs

import (
	"errors"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrFileProcessing = errors.New("file processing failed")
)

// Error carries a user facing message for one of the sentinels above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func NotFound(msg string) error       { return New(ErrNotFound, msg) }
func Validation(msg string) error     { return New(ErrValidation, msg) }
func Unauthorized(msg string) error   { return New(ErrUnauthorized, msg) }
func Forbidden(msg string) error      { return New(ErrForbidden, msg) }
func Conflict(msg string) error       { return New(ErrConflict, msg) }
func FileProcessing(msg string) error { return New(ErrFileProcessing, msg) }
