/*
Monitor mode. After the single MONITOR command, Redis streams a
prefixed text line for every command it processes; those lines need no
RESP interpretation on this side, so the dispatcher forwards raw bytes
verbatim onto a broadcast stream. Everything after Start is one-way.
*/
package redwire

import (
	"bytes"
	"sync"

	"go.uber.org/zap"
)

// Monitor is a connection used for passive observation.
type Monitor struct {
	conn   *Connection
	enc    *Encoders
	logger *zap.Logger

	mu        sync.Mutex
	listeners []chan []byte
	closed    bool
	started   bool
}

// DialMonitor connects to uri and returns a Monitor handle. Call Start
// to begin the stream.
func DialMonitor(uri string, opts Options) (*Monitor, error) {
	conn, err := Dial(uri, opts)
	if err != nil {
		return nil, err
	}
	return NewMonitor(conn, opts), nil
}

// NewMonitor rebinds an existing connection into Monitor mode.
func NewMonitor(conn *Connection, opts Options) *Monitor {
	m := &Monitor{
		conn:   conn,
		enc:    opts.encoders(),
		logger: opts.logger(),
	}
	conn.Listen(m.onData, m.onTransportNotice, m.onConnDone)
	return m
}

// Connection exposes the underlying transport.
func (m *Monitor) Connection() *Connection { return m.conn }

// Start sends the MONITOR command. It is the only command this mode
// ever writes; calling it again is a no-op.
func (m *Monitor) Start() error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	var buf bytes.Buffer
	if err := WriteLine(&buf, m.enc, []any{MONITOR}); err != nil {
		return err
	}
	return m.conn.Send(buf.Bytes())
}

// Stream registers and returns a listener for the raw monitor bytes.
// The first chunk carries the "+OK" acknowledging MONITOR. The channel
// closes when the connection terminates.
func (m *Monitor) Stream() <-chan []byte {
	ch := make(chan []byte, 64)
	m.mu.Lock()
	if m.closed {
		close(ch)
	} else {
		m.listeners = append(m.listeners, ch)
	}
	m.mu.Unlock()
	return ch
}

// Close disconnects and closes every listener.
func (m *Monitor) Close() error {
	return m.conn.Disconnect()
}

func (m *Monitor) onData(chunk []byte) {
	m.mu.Lock()
	listeners := m.listeners
	m.mu.Unlock()
	for _, ch := range listeners {
		ch <- chunk
	}
}

func (m *Monitor) onTransportNotice(err error) {
	m.logger.Warn("monitor observed transport error", zap.Error(err))
}

func (m *Monitor) onConnDone(error) {
	m.mu.Lock()
	listeners := m.listeners
	m.listeners = nil
	m.closed = true
	m.mu.Unlock()
	for _, ch := range listeners {
		close(ch)
	}
}
