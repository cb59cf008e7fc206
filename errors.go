/*
This file defines the four failure kinds from the error-handling design
(transport, protocol, server, codec). ServerError mirrors the shape of
pascaldekloe/redis's client error type: the server's error line is kept
verbatim and a Prefix accessor exposes the error-kind word Redis puts
first ("ERR", "WRONGTYPE", "MOVED", ...).
*/
package redwire

import (
	"errors"
	"fmt"
)

// ErrConnClosed is returned by Send when the outbound half of a
// connection has already terminated.
var ErrConnClosed = errors.New("redwire: connection closed")

// ErrTransactionInProgress is returned when a second MULTI is submitted
// while a transaction is already in progress.
var ErrTransactionInProgress = errors.New("redwire: transaction already in progress")

// ErrTransactionDiscarded is the domain error every queued command
// resolves with on DISCARD or an EXEC answered with Null (a WATCH
// abort). When EXEC is answered with an error reply, the queued
// commands resolve with that error instead.
var ErrTransactionDiscarded = errors.New("redwire: transaction discarded")

// ServerError is a "-ERR ..." reply decoded as UTF-8 and surfaced to the
// caller as a domain error. The connection stays healthy.
type ServerError string

// Error honors the error interface.
func (e ServerError) Error() string {
	return fmt.Sprintf("redwire: server error: %s", string(e))
}

// Prefix returns the leading word, which conventionally identifies the
// error kind ("ERR", "WRONGTYPE", "NOSCRIPT", ...).
func (e ServerError) Prefix() string {
	s := string(e)
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return s[:i]
		}
	}
	return s
}

// ProtocolError signals a malformed RESP stream: an unknown tag byte, a
// reply with no command awaiting it, a transaction reply whose length
// does not match the queued count, or a non-QUEUED reply to a queued
// command. The connection that produced it must be considered poisoned.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("redwire: protocol error: %s", e.Msg)
}

func protocolErrorf(format string, args ...any) *ProtocolError {
	return &ProtocolError{Msg: fmt.Sprintf(format, args...)}
}

// CodecError is returned when no registered converter matches a value or
// a requested target type, or when a value is rejected outright (e.g. a
// NaN float argument). It resolves the offending command only; the
// connection stays healthy.
type CodecError struct {
	Msg string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("redwire: codec error: %s", e.Msg)
}

func codecErrorf(format string, args ...any) *CodecError {
	return &CodecError{Msg: fmt.Sprintf(format, args...)}
}

// TransportError wraps a socket read/write failure. It resolves every
// outstanding command and the connection's Done future, and is
// unrecoverable for the affected connection.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("redwire: transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func transportError(err error) *TransportError {
	return &TransportError{Err: err}
}
