// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import (
	"fmt"

	"github.com/juju/errors"
)

// Error is the error type returned inside facade results and RPC
// responses.
type Error struct {
	Message string                 `json:"message"`
	Code    string                 `json:"code"`
	Info    map[string]interface{} `json:"info,omitempty"`
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// ErrorCode returns the error code.
func (e Error) ErrorCode() string {
	return e.Code
}

// ErrorResult holds the error status of a single operation.
type ErrorResult struct {
	Error *Error `json:"error,omitempty"`
}

// The Code constants hold error codes for well known errors.
const (
	CodeNotFound        = "not found"
	CodeUnauthorized    = "unauthorized access"
	CodeNotImplemented  = "not implemented"
	CodeNotSupported    = "not supported"
	CodeNotValid        = "not valid"
	CodeBadRequest      = "bad request"
	CodeForbidden       = "forbidden"
	CodeRedirect        = "redirection required"
	CodeNotYetAvailable = "not yet available"
)

// ErrCode returns the error code associated with
// the given error, or the empty string if there
// is none.
func ErrCode(err error) string {
	type ErrorCoder interface {
		ErrorCode() string
	}
	var coder ErrorCoder
	if errors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// TranslateWellKnownError translates a well known error code into the
// matching juju/errors error, so that callers can use errors.Is.
func TranslateWellKnownError(err error) error {
	code := ErrCode(err)
	switch code {
	case CodeNotFound:
		return errors.NewNotFound(err, "")
	case CodeUnauthorized:
		return errors.NewUnauthorized(err, "")
	case CodeNotImplemented:
		return errors.NewNotImplemented(err, "")
	case CodeNotSupported:
		return errors.NewNotSupported(err, "")
	case CodeNotValid:
		return errors.NewNotValid(err, "")
	case CodeBadRequest:
		return errors.NewBadRequest(err, "")
	case CodeForbidden:
		return errors.NewForbidden(err, "")
	case CodeNotYetAvailable:
		return errors.NewNotYetAvailable(err, "")
	}
	return err
}
