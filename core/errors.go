package core

import (
	"errors"
	"fmt"
)

// Error codes. A resolution fails because a font is missing on the content
// site (EMISSING), the site cannot be reached (ECONNECTION), or the font or
// a persisted file cannot be decoded (ECORRUPT).
const (
	NOERROR     int = 0
	EMISSING    int = 122 // resource does not exist
	EINVALID    int = 123 // validation failed
	ECONNECTION int = 124 // remote resource not connected
	EINTERNAL   int = 125 // internal error
	ECORRUPT    int = 126 // resource exists but cannot be decoded
)

var codeText = map[int]string{
	NOERROR:     "OK",
	EMISSING:    "not found",
	EINVALID:    "invalid",
	ECONNECTION: "transport failure",
	EINTERNAL:   "internal error",
	ECORRUPT:    "corrupt",
}

// CodeText returns a short description of an error code.
func CodeText(code int) string {
	if t, ok := codeText[code]; ok {
		return t
	}
	return "undefined error"
}

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() int
	UserMessage() string
}

type coreError struct {
	cause error
	code  int
	msg   string
}

func (e coreError) Unwrap() error {
	return e.cause
}

func (e coreError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%d] %s", e.code, e.msg)
	}
	return fmt.Sprintf("[%d] %s: %v", e.code, e.msg, e.cause)
}

func (e coreError) ErrorCode() int {
	return e.code
}

func (e coreError) UserMessage() string {
	return e.msg
}

var _ AppError = coreError{}

// Error creates an error with an error code and a user-message.
func Error(code int, format string, v ...interface{}) error {
	return coreError{code: code, msg: fmt.Sprintf(format, v...)}
}

// WrapError wraps err in an error with an error code and a user-message.
// If err is nil, the result carries the code's description as its cause.
func WrapError(err error, code int, format string, v ...interface{}) error {
	if err == nil {
		err = errors.New(CodeText(code))
	}
	return coreError{cause: err, code: code, msg: fmt.Sprintf(format, v...)}
}

// Code returns the error code of err. The outermost code wins: an
// ECONNECTION error wrapping an EMISSING error reports ECONNECTION.
// Errors without a code report EINTERNAL, nil reports NOERROR.
func Code(err error) int {
	if err == nil {
		return NOERROR
	}
	var e AppError
	if errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// Is is a predicate: does err carry error code code?
func Is(err error, code int) bool {
	return err != nil && Code(err) == code
}

// UserMessage returns the message of err meant for users, or the
// description of its code if it has none.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e AppError
	if errors.As(err, &e) && e.UserMessage() != "" {
		return e.UserMessage()
	}
	return CodeText(Code(err))
}
