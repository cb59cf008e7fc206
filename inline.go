/*
Inline (terminal) mode, for interactive sessions. The read path is
Monitor's: raw bytes are republished on a broadcast stream. The write
path passes caller-formed bytes through unmodified — the caller is
speaking Redis's inline command syntax and supplies its own trailing
CRLF.
*/
package redwire

import (
	"sync"

	"go.uber.org/zap"
)

// Terminal is a raw byte pass-through on one connection.
type Terminal struct {
	conn   *Connection
	logger *zap.Logger

	mu        sync.Mutex
	listeners []chan []byte
	closed    bool
}

// DialTerminal connects to uri and returns an inline-mode handle.
func DialTerminal(uri string, opts Options) (*Terminal, error) {
	conn, err := Dial(uri, opts)
	if err != nil {
		return nil, err
	}
	return NewTerminal(conn, opts), nil
}

// NewTerminal rebinds an existing connection into inline mode.
func NewTerminal(conn *Connection, opts Options) *Terminal {
	t := &Terminal{
		conn:   conn,
		logger: opts.logger(),
	}
	conn.Listen(t.onData, t.onTransportNotice, t.onConnDone)
	return t
}

// Connection exposes the underlying transport.
func (t *Terminal) Connection() *Connection { return t.conn }

// Send writes already-formed bytes, trailing CRLF included, without
// any encoding.
func (t *Terminal) Send(line []byte) error {
	return t.conn.Send(line)
}

// Stream registers and returns a listener for the raw reply bytes. The
// channel closes when the connection terminates.
func (t *Terminal) Stream() <-chan []byte {
	ch := make(chan []byte, 64)
	t.mu.Lock()
	if t.closed {
		close(ch)
	} else {
		t.listeners = append(t.listeners, ch)
	}
	t.mu.Unlock()
	return ch
}

// Close disconnects and closes every listener.
func (t *Terminal) Close() error {
	return t.conn.Disconnect()
}

func (t *Terminal) onData(chunk []byte) {
	t.mu.Lock()
	listeners := t.listeners
	t.mu.Unlock()
	for _, ch := range listeners {
		ch <- chunk
	}
}

func (t *Terminal) onTransportNotice(err error) {
	t.logger.Warn("terminal observed transport error", zap.Error(err))
}

func (t *Terminal) onConnDone(error) {
	t.mu.Lock()
	listeners := t.listeners
	t.listeners = nil
	t.closed = true
	t.mu.Unlock()
	for _, ch := range listeners {
		close(ch)
	}
}
