// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"errors"
	"fmt"
)

// ErrorCode classifies RFBError values into the taxonomy a session's
// handshake and dispatch loop can terminate on.
type ErrorCode int

const (
	// CodeTransport indicates the stream read or write failed or ended
	// unexpectedly.
	CodeTransport ErrorCode = iota
	// CodeUnrecognizedProtocolElement indicates the peer sent an
	// ill-formed or unsupported value at a position the protocol defines.
	CodeUnrecognizedProtocolElement
	// CodeNoSupportedAuthenticationMethods indicates the intersection of
	// offered and configured authentication methods was empty.
	CodeNoSupportedAuthenticationMethods
	// CodeAuthenticationFailed indicates the embedder rejected credentials.
	CodeAuthenticationFailed
	// CodeSanityCheck indicates a self-consistency violation, such as no
	// framebuffer being available or an impossibly large count.
	CodeSanityCheck
	// CodeInvalidArgument indicates caller misuse of the embedder-facing
	// API.
	CodeInvalidArgument
)

// String returns the taxonomy name used in error messages.
func (c ErrorCode) String() string {
	switch c {
	case CodeTransport:
		return "transport"
	case CodeUnrecognizedProtocolElement:
		return "unrecognized_protocol_element"
	case CodeNoSupportedAuthenticationMethods:
		return "no_supported_authentication_methods"
	case CodeAuthenticationFailed:
		return "authentication_failed"
	case CodeSanityCheck:
		return "sanity_check"
	case CodeInvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

// RFBError provides structured error information with operation context,
// a taxonomy code, and error wrapping.
type RFBError struct {
	Op      string
	Code    ErrorCode
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *RFBError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rfb %s: %s: %s: %v", e.Code, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("rfb %s: %s: %s", e.Code, e.Op, e.Message)
}

// Unwrap returns the underlying error for error chain unwrapping.
func (e *RFBError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target error by op and code.
func (e *RFBError) Is(target error) bool {
	var rfbErr *RFBError
	if errors.As(target, &rfbErr) {
		return e.Code == rfbErr.Code && e.Op == rfbErr.Op
	}
	return false
}

// NewRFBError creates a new RFBError.
func NewRFBError(op string, code ErrorCode, message string, err error) *RFBError {
	return &RFBError{Op: op, Code: code, Message: message, Err: err}
}

// WrapError wraps an existing error with RFB-specific context. Returns nil
// if err is nil.
func WrapError(op string, code ErrorCode, message string, err error) error {
	if err == nil {
		return nil
	}
	return &RFBError{Op: op, Code: code, Message: message, Err: err}
}

// IsRFBError reports whether err is an RFBError, optionally matching one of
// the given codes.
func IsRFBError(err error, code ...ErrorCode) bool {
	var rfbErr *RFBError
	if !errors.As(err, &rfbErr) {
		return false
	}
	if len(code) == 0 {
		return true
	}
	for _, c := range code {
		if rfbErr.Code == c {
			return true
		}
	}
	return false
}

// GetErrorCode extracts the ErrorCode from err, or -1 if err is not an
// RFBError.
func GetErrorCode(err error) ErrorCode {
	var rfbErr *RFBError
	if errors.As(err, &rfbErr) {
		return rfbErr.Code
	}
	return ErrorCode(-1)
}

func transportError(op, message string, err error) error {
	return NewRFBError(op, CodeTransport, message, err)
}

func protocolError(op, message string, err error) error {
	return NewRFBError(op, CodeUnrecognizedProtocolElement, message, err)
}

func noAuthMethodsError(op, message string) error {
	return NewRFBError(op, CodeNoSupportedAuthenticationMethods, message, nil)
}

func authenticationError(op, message string, err error) error {
	return NewRFBError(op, CodeAuthenticationFailed, message, err)
}

func sanityError(op, message string) error {
	return NewRFBError(op, CodeSanityCheck, message, nil)
}

func invalidArgumentError(op, message string) error {
	return NewRFBError(op, CodeInvalidArgument, message, nil)
}

// validationErr reports a malformed value received from the peer at a
// position the protocol defines.
func validationErr(op, message string, err error) error {
	return NewRFBError(op, CodeUnrecognizedProtocolElement, message, err)
}
