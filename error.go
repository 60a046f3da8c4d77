package talaria

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Error is a Go error that describes a failed client operation.
type Error struct {
	kind    ErrorKind
	message string
	cause   error
	code    int
	errType string

	m         sync.Mutex
	dataValue any
	dataJSON  json.RawMessage
}

// newError returns a new Error of the given kind.
//
// The options are applied in order.
func newError(kind ErrorKind, options []ErrorOption) *Error {
	e := &Error{
		kind: kind,
	}

	for _, opt := range options {
		opt(e)
	}

	return e
}

// NewError returns a new Error of the given kind.
func NewError(kind ErrorKind, options ...ErrorOption) *Error {
	if kind < TransportFailure || kind > RPCError {
		panic(fmt.Sprintf("unknown error kind (%d)", int(kind)))
	}

	return newError(kind, options)
}

// Kind returns the category of failure that the error describes.
func (e *Error) Kind() ErrorKind {
	return e.kind
}

// Code returns the application-defined error code reported by the server.
//
// It is zero unless the error kind is RPCError and the server supplied a
// numeric code.
func (e *Error) Code() int {
	return e.code
}

// Type returns the application-defined error type reported by the server,
// converted to its string form.
//
// It is empty unless the error kind is RPCError and the server supplied a
// type.
func (e *Error) Type() string {
	return e.errType
}

// Message returns the error message.
func (e *Error) Message() string {
	if e.message != "" {
		return e.message
	}

	return e.kind.String()
}

// MarshalData returns the JSON representation of the data value associated
// with the error.
//
// For errors produced by a client call this is the error value exactly as the
// server supplied it.
//
// ok is false if there is no data associated with the error.
func (e *Error) MarshalData() (_ json.RawMessage, ok bool, _ error) {
	e.m.Lock()
	defer e.m.Unlock()

	if e.dataJSON == nil {
		if e.dataValue == nil {
			return nil, false, nil
		}

		d, err := json.Marshal(e.dataValue)
		if err != nil {
			return nil, false, err
		}

		e.dataJSON = d
	}

	return e.dataJSON, true, nil
}

// UnmarshalData unmarshals the associated data value into v.
//
// ok is false if there is no data associated with the error.
func (e *Error) UnmarshalData(v any) (ok bool, _ error) {
	data, ok, err := e.MarshalData()
	if !ok || err != nil {
		return false, err
	}

	return true, json.Unmarshal(data, v)
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.kind == RPCError {
		if e.message == "" {
			return fmt.Sprintf("%s [%d]", e.kind, e.code)
		}

		return fmt.Sprintf("%s [%d]: %s", e.kind, e.code, e.message)
	}

	return describeError(e.kind, e.message)
}

// Unwrap returns the cause of e, if known.
func (e *Error) Unwrap() error {
	return e.cause
}

// ErrorOption is an option that provides further information about an error.
type ErrorOption func(*Error)

// WithCause is an ErrorOption that associates a causal error with a client
// error.
//
// c is wrapped by the resulting error, such that it can be used with
// errors.Is() and errors.As().
//
// If the error does not already have a user-defined message, c.Error() is
// used as the user-defined message.
func WithCause(c error) ErrorOption {
	return func(e *Error) {
		e.cause = c

		if e.message == "" {
			// If there is no user-defined error message already provided, use
			// this error as the message.
			e.message = c.Error()
		}
	}
}

// WithMessage is an ErrorOption that provides a user-defined error message.
//
// This message should be used to provide additional information that can help
// diagnose the error.
func WithMessage(format string, values ...any) ErrorOption {
	return func(e *Error) {
		e.message = fmt.Sprintf(format, values...)
	}
}

// WithData is an ErrorOption that associates additional data with an error.
func WithData(data any) ErrorOption {
	return func(e *Error) {
		e.dataValue = data
	}
}

// WithRPCDetails is an ErrorOption that records the application-defined code
// and type reported by the server alongside an RPCError.
func WithRPCDetails(code int, errorType string) ErrorOption {
	return func(e *Error) {
		e.code = code
		e.errType = errorType
	}
}
