/*
Conn wraps one accepted client socket with buffered I/O, lifecycle
state, and the per-connection session the protocol requires: reply-mode
suppression, the open transaction, subscription membership, and whether
the connection has entered monitor mode.

All public methods are safe for concurrent use. The session fields are
written only by the connection's own serve goroutine; channels and
patterns are also read by publishing connections under the server lock.
*/
package respserver

import (
	"bufio"
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

type replyMode int

const (
	replyOn replyMode = iota
	replyOff
	replySkip
)

// Conn represents a client connection.
type Conn struct {
	conn      net.Conn
	reader    *bufio.Reader
	writer    *bufio.Writer
	server    *Server
	state     atomic.Int32
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	lastUsed  time.Time

	// Session state, owned by the serve goroutine.
	mode      replyMode
	inTx      bool
	txDirty   bool
	txQueue   []*Command
	watched   map[string]uint64
	channels  map[string]struct{}
	patterns  map[string]struct{}
	monitor   bool

	// Pushed frames (pubsub messages, monitor lines) from other
	// connections' goroutines interleave with this connection's own
	// replies; writes are serialized here.
	writeMu sync.Mutex
}

func newConn(netConn net.Conn, s *Server, ctx context.Context, cancel context.CancelFunc) *Conn {
	return &Conn{
		conn:     netConn,
		reader:   bufio.NewReader(netConn),
		writer:   bufio.NewWriter(netConn),
		server:   s,
		ctx:      ctx,
		cancel:   cancel,
		lastUsed: time.Now(),
	}
}

// setState updates the connection state and fires the server's state
// hook if configured.
func (c *Conn) setState(state ConnState) {
	c.state.Store(int32(state))
	if c.server.ConnStateHook != nil {
		c.server.ConnStateHook(c.conn, state)
	}
}

// GetState returns the current connection state.
func (c *Conn) GetState() ConnState {
	return ConnState(c.state.Load())
}

// Close closes the connection exactly once. Safe to call from any
// goroutine, any number of times.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.setState(StateClosed)
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// RemoteAddr returns the client's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// LocalAddr returns the server-side address of this connection.
func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// push writes a server-initiated frame (a pubsub message or a monitor
// line) and flushes immediately, so it cannot sit buffered behind a
// reply that is not coming.
func (c *Conn) push(v Value) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.writeValue(v); err != nil {
		return err
	}
	return c.writer.Flush()
}

// reply writes a response frame under the same lock pushes use.
func (c *Conn) reply(v Value) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.writeValue(v); err != nil {
		return err
	}
	return c.writer.Flush()
}

// subscriptionCount is the total channel plus pattern subscriptions.
func (c *Conn) subscriptionCount() int64 {
	return int64(len(c.channels) + len(c.patterns))
}
