package ami

import "errors"

// ErrorCode classifies client-side failures.
type ErrorCode string

const (
	// CodeNotConnected: an action was attempted while the client was
	// not in the Connected state. The transport is never touched.
	CodeNotConnected ErrorCode = "NOT_CONNECTED"
	// CodeDisconnected: an in-flight action was invalidated by a
	// connection teardown.
	CodeDisconnected ErrorCode = "DISCONNECTED"
	// CodeActionTimeout: no response arrived within the timeout window.
	CodeActionTimeout ErrorCode = "ACTION_TIMEOUT"
	// CodeTransportError: a socket-level failure, surfaced primarily
	// during connect.
	CodeTransportError ErrorCode = "TRANSPORT_ERROR"
)

// Error is a typed client error carrying a machine-readable code.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError builds an *Error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}

// ResponseError is a failure reply from the backend. Its Error text is
// the backend Message field verbatim; callers depend on exact strings
// such as "Extension not found".
type ResponseError struct {
	Message  string
	Response *Message
}

func (e *ResponseError) Error() string { return e.Message }

// NewResponseError builds a *ResponseError from a failure reply.
func NewResponseError(resp *Message) *ResponseError {
	return &ResponseError{Message: resp.ErrorMessage(), Response: resp}
}
