/*
Connection owns one TCP (optionally TLS) socket to a Redis-compatible
server. It is deliberately thin: the dispatcher variants own all RESP and
transaction semantics, Connection only owns the wire — reading raw bytes
off the socket, writing raw bytes to it, and fanning out failure exactly
once.

Listen's callback triple is rebindable so a connection can be handed
from one operational mode to another (Online to PubSub after AUTH is
the common case). Bytes that arrive while no callbacks are bound are
buffered and handed to the next onData installed; bytes already
delivered to a mode's onData stay with that mode.
*/
package redwire

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConnState is the connection lifecycle. A dialed connection starts
// connected; there is no reconnect, so the only transition is to
// closed.
type ConnState int32

const (
	StateConnected ConnState = iota
	StateClosed
)

// Connection is a single dialed socket, shared by whichever dispatcher
// mode currently owns it.
type Connection struct {
	id     uuid.UUID
	conn   net.Conn
	logger *zap.Logger

	state atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex

	cbMu     sync.Mutex
	onData   func([]byte)
	onError  func(error)
	onDoneFn func(error)
	pending  []byte

	doneOnce sync.Once
	doneCh   chan struct{}
	doneErr  error
}

// Dial parses uri (redis:// or rediss://), opens the socket, sets
// TCP_NODELAY, and returns a ready connection. Hosts must be non-empty
// and ports are mandatory.
func Dial(uri string, opts Options) (*Connection, error) {
	u, err := parseURI(uri)
	if err != nil {
		return nil, err
	}
	dialer := net.Dialer{Timeout: opts.dialTimeout()}
	raw, err := dialer.Dial("tcp", net.JoinHostPort(u.Host, u.Port))
	if err != nil {
		return nil, err
	}
	if tcpConn, ok := raw.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	var conn net.Conn = raw
	if u.TLS {
		tlsConf := opts.TLSConfig
		if tlsConf == nil {
			tlsConf = &tls.Config{ServerName: u.Host}
		}
		tlsConn := tls.Client(raw, tlsConf)
		if err := tlsConn.Handshake(); err != nil {
			raw.Close()
			return nil, err
		}
		conn = tlsConn
	}
	return newConnection(conn, opts), nil
}

func newConnection(conn net.Conn, opts Options) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		id:     uuid.New(),
		conn:   conn,
		logger: opts.logger(),
		ctx:    ctx,
		cancel: cancel,
		doneCh: make(chan struct{}),
	}
	c.logger.Debug("connection established",
		zap.String("conn_id", c.id.String()),
		zap.String("remote", conn.RemoteAddr().String()))
	go c.readLoop()
	return c
}

// ID returns the connection's client-side identity, used for log
// correlation.
func (c *Connection) ID() uuid.UUID { return c.id }

func (c *Connection) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }
func (c *Connection) LocalAddr() net.Addr  { return c.conn.LocalAddr() }

// GetState returns the current lifecycle state.
func (c *Connection) GetState() ConnState {
	return ConnState(c.state.Load())
}

// Listen installs the dispatcher callbacks. It may be called again later
// to rebind a connection from one mode to another (Online -> PubSub):
// bytes that arrived while no onData was bound are flushed through the
// new onData before new reads are delivered to it.
func (c *Connection) Listen(onData func([]byte), onError func(error), onDone func(error)) {
	c.cbMu.Lock()
	c.onData, c.onError, c.onDoneFn = onData, onError, onDone
	pending := c.pending
	c.pending = nil
	c.cbMu.Unlock()

	if len(pending) > 0 && onData != nil {
		onData(pending)
	}
	if c.GetState() == StateClosed && onDone != nil {
		onDone(c.doneErr)
	}
}

func (c *Connection) readLoop() {
	buf := make([]byte, 64*1024)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			c.deliver(chunk)
		}
		if err != nil {
			c.fail(err)
			return
		}
	}
}

func (c *Connection) deliver(chunk []byte) {
	c.cbMu.Lock()
	cb := c.onData
	if cb == nil {
		c.pending = append(c.pending, chunk...)
		c.cbMu.Unlock()
		return
	}
	c.cbMu.Unlock()
	cb(chunk)
}

// Send writes b to the socket. It is non-blocking with respect to
// replies (it never waits for a response) but does block on the
// underlying Write call.
func (c *Connection) Send(b []byte) error {
	if c.GetState() == StateClosed {
		return ErrConnClosed
	}
	c.writeMu.Lock()
	_, err := c.conn.Write(b)
	c.writeMu.Unlock()
	if err != nil {
		c.fail(err)
		return transportError(err)
	}
	return nil
}

// Done returns a channel that closes once the connection terminates,
// either gracefully or with a transport error (retrievable via Err).
func (c *Connection) Done() <-chan struct{} { return c.doneCh }

// Err returns the error the connection closed with, or nil for a
// graceful shutdown. Only meaningful after Done has closed.
func (c *Connection) Err() error { return c.doneErr }

func (c *Connection) fail(err error) {
	c.doneOnce.Do(func() {
		c.doneErr = err
		c.state.Store(int32(StateClosed))
		c.logger.Warn("connection failed",
			zap.String("conn_id", c.id.String()),
			zap.Error(err))
		c.cbMu.Lock()
		onErr, onDone := c.onError, c.onDoneFn
		c.cbMu.Unlock()
		if onErr != nil && err != nil {
			onErr(err)
		}
		if onDone != nil {
			onDone(err)
		}
		c.cancel()
		c.conn.Close()
		close(c.doneCh)
	})
}

// Disconnect flushes, closes, and destroys the connection. It is
// idempotent with respect to an already-errored socket — whichever of
// Disconnect/fail runs first wins, the other is a no-op.
func (c *Connection) Disconnect() error {
	var closeErr error
	c.doneOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		c.logger.Debug("connection closed", zap.String("conn_id", c.id.String()))
		c.cbMu.Lock()
		onDone := c.onDoneFn
		c.cbMu.Unlock()
		if onDone != nil {
			onDone(nil)
		}
		c.cancel()
		closeErr = c.conn.Close()
		close(c.doneCh)
	})
	return closeErr
}
