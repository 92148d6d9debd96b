package thumbcrawl

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"

	// ENETWORK is a transport failure or a non-2xx HTTP response.
	ENETWORK = "network"
	// EDECODE means the downloaded bytes are not a valid image.
	EDECODE = "decode"
	// EIO is a failure to encode or write a file.
	EIO = "io"
	// ETIMEOUT means a page did not settle within the render deadline.
	ETIMEOUT = "render_timeout"
	// EEXHAUSTED means no free destination path was found within the ceiling.
	EEXHAUSTED = "path_exhausted"
	// ENOPAGINATION means no numeric pagination entries were found.
	ENOPAGINATION = "pagination_unavailable"
)

// Error represents an application-specific error.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable error message.
	Message string

	// HTTP status code for ENETWORK errors caused by a response, zero otherwise.
	Status int

	// Underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("thumbcrawl error: code=%s message=%s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("thumbcrawl error: code=%s message=%s", e.Code, e.Message)
}

// Unwrap returns the underlying cause so errors.Is sees context errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrapf is like Errorf but records err as the underlying cause.
func Wrapf(err error, code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}

// ErrorStatus returns the HTTP status carried by an ENETWORK error, or zero.
func ErrorStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
