/*
Client is the Online mode surface: the full typed command table
(commands_*.go), a pipelined submission mode, and the raw "run an
arbitrary command line" primitive everything else is built on.

A Client owns exactly one Connection and one OnlineDispatcher. It is
intended for use from a single goroutine; the pipeline flag in
particular is deliberately not synchronized against concurrent
submissions, matching the one-caller contract of the whole core.
*/
package redwire

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Client is an Online-mode handle on one connection.
type Client struct {
	conn   *Connection
	disp   *OnlineDispatcher
	dec    *Decoders
	logger *zap.Logger

	pipelined bool
	deferred  []*Command
}

// DialOnline connects to uri and returns a ready Online client.
func DialOnline(uri string, opts Options) (*Client, error) {
	conn, err := Dial(uri, opts)
	if err != nil {
		return nil, err
	}
	return NewClient(conn, opts), nil
}

// NewClient wraps an existing connection in an Online client, binding a
// fresh dispatcher to it. The connection's previous mode, if any, loses
// the reply stream.
func NewClient(conn *Connection, opts Options) *Client {
	dec := opts.decoders()
	return &Client{
		conn:   conn,
		disp:   NewOnlineDispatcher(conn, opts.encoders(), dec, opts.Logger),
		dec:    dec,
		logger: opts.logger(),
	}
}

// Connection exposes the underlying transport so a caller can construct
// a secondary mode on it — the documented path is authenticate via
// Online, then hand the connection to NewPubSub.
func (c *Client) Connection() *Connection { return c.conn }

// Decoders returns the client's decoder registry for custom converter
// registration. Registration while commands are in flight is disallowed
// by contract.
func (c *Client) Decoders() *Decoders { return c.dec }

// Encoders returns the client's encoder registry.
func (c *Client) Encoders() *Encoders { return c.disp.enc }

// Run submits an arbitrary command line with an optional mapper and
// returns its completion. In pipeline mode the command is deferred
// until Flush; otherwise it is written immediately.
func (c *Client) Run(mapper Mapper, args ...any) *Command {
	cmd := NewCommand(args, mapper)
	if c.pipelined {
		c.deferred = append(c.deferred, cmd)
		return cmd
	}
	c.disp.Send(cmd)
	return cmd
}

// Do submits an arbitrary command line and waits for its result,
// decoded with the default converters (strings for bulk payloads,
// int64 for integers, []any for arrays, nil for Null).
func (c *Client) Do(args ...any) (any, error) {
	return c.Run(nil, args...).Wait()
}

// Pipeline enters pipeline mode: subsequent submissions accumulate
// instead of being written. Calling it while already pipelining is a
// no-op.
func (c *Client) Pipeline() {
	c.pipelined = true
}

// Flush leaves pipeline mode, hands every deferred command to the
// dispatcher's batch path as one socket write, and returns the
// completions in submission order.
func (c *Client) Flush() ([]*Command, error) {
	cmds := c.deferred
	c.deferred = nil
	c.pipelined = false
	if len(cmds) == 0 {
		return nil, nil
	}
	err := c.disp.SendBatch(cmds)
	return cmds, err
}

// ClientReply toggles the server's reply mode for this connection. The
// returned command resolves with "OK" for ReplyOn and with the Null
// sentinel for ReplyOff/ReplySkip (the server does not reply to those).
// The toggle is not refused inside a MULTI transaction, where OFF or
// SKIP leaves the client's outstanding queue out of step with the
// server's replies.
func (c *Client) ClientReply(mode ReplyMode) *Command {
	var word string
	switch mode {
	case ReplyOff:
		word = "OFF"
	case ReplySkip:
		word = "SKIP"
	default:
		word = "ON"
	}
	return c.Run(nil, CLIENT, "REPLY", word)
}

// Multi begins a transaction. Commands submitted after it resolve only
// when the closing Exec or Discard is answered.
func (c *Client) Multi() *Command { return c.Run(nil, MULTI) }

// Exec commits the open transaction. Each queued command resolves with
// its element of the EXEC array reply.
func (c *Client) Exec() *Command { return c.Run(nil, EXEC) }

// Discard aborts the open transaction; every queued command resolves
// with ErrTransactionDiscarded.
func (c *Client) Discard() *Command { return c.Run(nil, DISCARD) }

// Watch registers keys for the optimistic lock: if any is modified
// before Exec, the transaction aborts with a Null EXEC reply.
func (c *Client) Watch(keys ...string) *Command {
	args := make([]any, 0, len(keys)+1)
	args = append(args, WATCH)
	for _, k := range keys {
		args = append(args, k)
	}
	return c.Run(nil, args...)
}

// Unwatch drops every watched key.
func (c *Client) Unwatch() *Command { return c.Run(nil, UNWATCH) }

// Close disconnects. Commands deferred in an unflushed pipeline are
// resolved with ErrConnClosed; their loss is reported alongside any
// disconnect error.
func (c *Client) Close() error {
	var merr *multierror.Error
	if len(c.deferred) > 0 {
		for _, cmd := range c.deferred {
			cmd.ResolveError(ErrConnClosed)
		}
		c.logger.Warn("unflushed pipeline discarded on close",
			zap.Int("count", len(c.deferred)))
		merr = multierror.Append(merr, fmt.Errorf("redwire: %d pipelined commands discarded on close", len(c.deferred)))
		c.deferred = nil
		c.pipelined = false
	}
	if err := c.conn.Disconnect(); err != nil {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}
