/*
Server lifecycle and command dispatch.

The dispatch path separates protocol built-ins from registered
handlers. Transactions (MULTI/EXEC/DISCARD/WATCH/UNWATCH), reply-mode
suppression (CLIENT REPLY), publish/subscribe, MONITOR, and QUIT are
implemented by the server itself, because they change how the
connection behaves rather than what a command computes. Everything
else routes through the registered handler for the command name,
wrapped in the middleware chain.

WATCH is backed by a cross-connection key version counter: every
handler-routed write command bumps its key's version, and EXEC answers
Null when any watched key's version moved since WATCH. This gives the
optimistic-lock abort real semantics rather than a test-only switch.
*/
package respserver

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net"
	"path"
	"strings"
	"time"
)

// NewServer creates a server instance ready to accept connections,
// with the built-in PING and ECHO handlers registered (QUIT is handled
// by dispatch itself).
func NewServer(address string) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	server := &Server{
		Address:        address,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxConnections: 1000,
		ErrorLog:       log.New(log.Writer(), "[respserver] ", log.LstdFlags),
		handlers:       make(map[string]Handler),
		keyVersions:    make(map[string]uint64),
		subscribers:    make(map[*Conn]struct{}),
		monitors:       make(map[*Conn]struct{}),
		activeConns:    make(map[*Conn]struct{}),
		ctx:            ctx,
		cancel:         cancel,
	}

	server.registerDefaultHandlers()
	return server
}

func (s *Server) registerDefaultHandlers() {
	s.RegisterCommandFunc("PING", func(conn *Conn, cmd *Command) Value {
		if len(cmd.Args) == 0 {
			return Status("PONG")
		}
		return Bulk(cmd.Args[0])
	})

	s.RegisterCommandFunc("ECHO", func(conn *Conn, cmd *Command) Value {
		if len(cmd.Args) != 1 {
			return Errorf("ERR wrong number of arguments for 'echo' command")
		}
		return Bulk(cmd.Args[0])
	})
}

// RegisterCommand registers a handler for a command name
// (case-insensitive).
func (s *Server) RegisterCommand(name string, handler Handler) error {
	if name == "" || handler == nil {
		return fmt.Errorf("empty command name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[strings.ToUpper(name)] = handler
	return nil
}

// RegisterCommandFunc registers a function as a command handler.
func (s *Server) RegisterCommandFunc(name string, handler func(conn *Conn, cmd *Command) Value) error {
	if name == "" || handler == nil {
		return fmt.Errorf("empty command name")
	}
	return s.RegisterCommand(name, HandlerFunc(handler))
}

// Listen starts listening on the configured address, TLS when
// configured. Idempotent.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	var err error
	if s.TLSConfig != nil {
		s.listener, err = tls.Listen("tcp", s.Address, s.TLSConfig)
	} else {
		s.listener, err = net.Listen("tcp", s.Address)
	}
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Address, err)
	}
	return nil
}

// Addr returns the listener's address, useful when binding port 0.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until shutdown, handling each in its own
// goroutine.
func (s *Server) Serve() error {
	if err := s.Listen(); err != nil {
		return err
	}
	defer s.listener.Close()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.inShutdown.Load() {
				return nil
			}
			s.ErrorLog.Printf("Accept error: %v", err)
			continue
		}

		s.wg.Add(1)
		go func(netConn net.Conn) {
			defer s.wg.Done()

			if s.MaxConnections > 0 && s.connCount.Add(1) > int64(s.MaxConnections) {
				s.connCount.Add(-1)
				netConn.Close()
				s.ErrorLog.Printf("Connection limit reached, rejecting connection from %s", netConn.RemoteAddr())
				return
			}

			s.handleConnectionInternal(netConn)
			s.connCount.Add(-1)
		}(conn)
	}
}

// Shutdown gracefully shuts down the server: stop accepting, close
// every connection, run shutdown hooks, wait for the serve goroutines
// within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.cancel()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			return err
		}
	}

	s.mu.RLock()
	for conn := range s.activeConns {
		if err := conn.Close(); err != nil {
			return err
		}
	}
	s.mu.RUnlock()

	s.mu.Lock()
	for _, fn := range s.onShutdown {
		fn()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// OnShutdown registers a function to run during graceful shutdown.
func (s *Server) OnShutdown(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onShutdown = append(s.onShutdown, f)
}

// GetActiveConnections returns the number of live connections.
func (s *Server) GetActiveConnections() int64 {
	return s.connCount.Load()
}

// IsShutdown reports whether the server is shutting down.
func (s *Server) IsShutdown() bool {
	return s.inShutdown.Load()
}

func (s *Server) handleConnectionInternal(netConn net.Conn) {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	conn := newConn(netConn, s, ctx, cancel)
	conn.state.Store(int32(StateNew))

	s.mu.Lock()
	s.activeConns[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.activeConns, conn)
		delete(s.subscribers, conn)
		delete(s.monitors, conn)
		s.mu.Unlock()
	}()

	if s.ConnStateHook != nil {
		s.ConnStateHook(netConn, StateNew)
	}
	conn.setState(StateActive)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if s.ReadTimeout > 0 {
			if err := netConn.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
				s.ErrorLog.Printf("Failed to set read deadline: %v", err)
				return
			}
		}

		cmd, err := conn.readCommand()
		if err != nil {
			if err != io.EOF && conn.GetState() != StateClosed {
				s.ErrorLog.Printf("Error reading command from %s: %v", netConn.RemoteAddr(), err)
			}
			return
		}

		conn.mu.Lock()
		conn.lastUsed = time.Now()
		conn.mu.Unlock()

		if s.WriteTimeout > 0 {
			if err := netConn.SetWriteDeadline(time.Now().Add(s.WriteTimeout)); err != nil {
				return
			}
		}

		if err := s.dispatch(conn, cmd); err != nil {
			if conn.GetState() != StateClosed {
				s.ErrorLog.Printf("Error responding to %s: %v", netConn.RemoteAddr(), err)
			}
			return
		}
	}
}

// dispatch routes one command through the protocol built-ins or the
// registered handler table and writes whatever reply the current
// session state allows.
func (s *Server) dispatch(conn *Conn, cmd *Command) error {
	if !conn.monitor {
		s.feedMonitors(conn, cmd)
	}

	name := strings.ToUpper(cmd.Name)
	switch name {
	case "CLIENT":
		if len(cmd.Args) == 2 && strings.EqualFold(cmd.Args[0], "REPLY") {
			return s.handleClientReply(conn, cmd.Args[1])
		}
	case "MULTI":
		if conn.inTx {
			return conn.maybeReply(Errorf("ERR MULTI calls can not be nested"))
		}
		conn.inTx = true
		conn.txDirty = false
		conn.txQueue = nil
		return conn.maybeReply(OK())
	case "EXEC":
		return s.handleExec(conn)
	case "DISCARD":
		if !conn.inTx {
			return conn.maybeReply(Errorf("ERR DISCARD without MULTI"))
		}
		conn.clearTx()
		return conn.maybeReply(OK())
	case "WATCH":
		return s.handleWatch(conn, cmd.Args)
	case "UNWATCH":
		conn.watched = nil
		return conn.maybeReply(OK())
	case "SUBSCRIBE", "UNSUBSCRIBE", "PSUBSCRIBE", "PUNSUBSCRIBE":
		return s.handleSubscription(conn, name, cmd.Args)
	case "PUBLISH":
		if len(cmd.Args) != 2 {
			return conn.maybeReply(Errorf("ERR wrong number of arguments for 'publish' command"))
		}
		n := s.publish(cmd.Args[0], []byte(cmd.Args[1]))
		return conn.maybeReply(Int(n))
	case "MONITOR":
		conn.monitor = true
		s.mu.Lock()
		s.monitors[conn] = struct{}{}
		s.mu.Unlock()
		return conn.maybeReply(OK())
	case "QUIT":
		if err := conn.reply(OK()); err != nil {
			return err
		}
		return conn.Close()
	}

	if conn.inTx {
		return s.queueInTx(conn, cmd)
	}

	return conn.maybeReply(s.runCommand(conn, cmd))
}

// runCommand executes a handler-routed command through the middleware
// chain and bumps the written key's version.
func (s *Server) runCommand(conn *Conn, cmd *Command) Value {
	defer func() {
		if r := recover(); r != nil {
			s.ErrorLog.Printf("PANIC in command handler '%s': %v", cmd.Name, r)
		}
	}()

	s.mu.RLock()
	handler, exists := s.handlers[strings.ToUpper(cmd.Name)]
	s.mu.RUnlock()

	if !exists {
		return Errorf("ERR unknown command '%s'", cmd.Name)
	}

	response := s.wrap(handler).Handle(conn, cmd)

	if isWriteCommand(cmd.Name) && len(cmd.Args) > 0 {
		s.mu.Lock()
		s.keyVersions[cmd.Args[0]]++
		s.mu.Unlock()
	}
	return response
}

func (s *Server) handleClientReply(conn *Conn, mode string) error {
	switch strings.ToUpper(mode) {
	case "ON":
		conn.mode = replyOn
		return conn.reply(OK())
	case "OFF":
		conn.mode = replyOff
		return nil
	case "SKIP":
		// SKIP suppresses the reply to the *next* command; the toggle
		// itself is silent too.
		conn.mode = replySkip
		return nil
	default:
		return conn.maybeReply(Errorf("ERR syntax error"))
	}
}

// maybeReply applies the connection's reply mode to a would-be reply.
func (c *Conn) maybeReply(v Value) error {
	switch c.mode {
	case replyOff:
		return nil
	case replySkip:
		c.mode = replyOn
		return nil
	default:
		return c.reply(v)
	}
}

func (s *Server) queueInTx(conn *Conn, cmd *Command) error {
	s.mu.RLock()
	_, exists := s.handlers[strings.ToUpper(cmd.Name)]
	s.mu.RUnlock()
	if !exists {
		conn.txDirty = true
		return conn.maybeReply(Errorf("ERR unknown command '%s'", cmd.Name))
	}
	conn.txQueue = append(conn.txQueue, cmd)
	return conn.maybeReply(Status("QUEUED"))
}

func (s *Server) handleExec(conn *Conn) error {
	if !conn.inTx {
		return conn.maybeReply(Errorf("ERR EXEC without MULTI"))
	}
	if conn.txDirty {
		conn.clearTx()
		return conn.maybeReply(Errorf("EXECABORT Transaction discarded because of previous errors."))
	}
	if s.watchViolated(conn) {
		conn.clearTx()
		return conn.maybeReply(Nil())
	}

	results := make([]Value, len(conn.txQueue))
	for i, qc := range conn.txQueue {
		results[i] = s.runCommand(conn, qc)
	}
	conn.clearTx()
	return conn.maybeReply(Value{Type: Array, Array: results})
}

func (c *Conn) clearTx() {
	c.inTx = false
	c.txDirty = false
	c.txQueue = nil
	c.watched = nil
}

func (s *Server) handleWatch(conn *Conn, keys []string) error {
	if conn.inTx {
		return conn.maybeReply(Errorf("ERR WATCH inside MULTI is not allowed"))
	}
	if conn.watched == nil {
		conn.watched = make(map[string]uint64, len(keys))
	}
	s.mu.RLock()
	for _, k := range keys {
		conn.watched[k] = s.keyVersions[k]
	}
	s.mu.RUnlock()
	return conn.maybeReply(OK())
}

func (s *Server) watchViolated(conn *Conn) bool {
	if len(conn.watched) == 0 {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range conn.watched {
		if s.keyVersions[k] != v {
			return true
		}
	}
	return false
}

func (s *Server) handleSubscription(conn *Conn, name string, args []string) error {
	pattern := name == "PSUBSCRIBE" || name == "PUNSUBSCRIBE"
	subscribe := name == "SUBSCRIBE" || name == "PSUBSCRIBE"

	if conn.channels == nil {
		conn.channels = make(map[string]struct{})
	}
	if conn.patterns == nil {
		conn.patterns = make(map[string]struct{})
	}

	target := conn.channels
	if pattern {
		target = conn.patterns
	}

	// UNSUBSCRIBE with no arguments drops every subscription of the
	// matching kind.
	if !subscribe && len(args) == 0 {
		args = make([]string, 0, len(target))
		for ch := range target {
			args = append(args, ch)
		}
	}

	s.mu.Lock()
	for _, ch := range args {
		if subscribe {
			target[ch] = struct{}{}
			s.subscribers[conn] = struct{}{}
		} else {
			delete(target, ch)
		}
	}
	if conn.subscriptionCount() == 0 {
		delete(s.subscribers, conn)
	}
	s.mu.Unlock()

	// One confirmation per enumerated channel, in enumeration order.
	for _, ch := range args {
		ev := ArrayOf(
			Bulk(strings.ToLower(name)),
			Bulk(ch),
			Int(conn.subscriptionCount()),
		)
		if err := conn.push(ev); err != nil {
			return err
		}
	}
	return nil
}

// publish delivers a message to every matching subscriber and returns
// the receiver count.
func (s *Server) publish(channel string, payload []byte) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var delivered int64
	for conn := range s.subscribers {
		if _, ok := conn.channels[channel]; ok {
			ev := ArrayOf(Bulk("message"), Bulk(channel), Value{Type: BulkString, Bulk: payload})
			if conn.push(ev) == nil {
				delivered++
			}
		}
		for pat := range conn.patterns {
			if ok, _ := path.Match(pat, channel); ok {
				ev := ArrayOf(Bulk("pmessage"), Bulk(pat), Bulk(channel), Value{Type: BulkString, Bulk: payload})
				if conn.push(ev) == nil {
					delivered++
				}
			}
		}
	}
	return delivered
}

// feedMonitors streams a formatted observation line to every monitor
// connection.
func (s *Server) feedMonitors(source *Conn, cmd *Command) {
	s.mu.RLock()
	monitors := make([]*Conn, 0, len(s.monitors))
	for m := range s.monitors {
		monitors = append(monitors, m)
	}
	s.mu.RUnlock()
	if len(monitors) == 0 {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%.6f [0 %s] %q", float64(time.Now().UnixMicro())/1e6, source.RemoteAddr(), cmd.Name)
	for _, arg := range cmd.Args {
		fmt.Fprintf(&b, " %q", arg)
	}
	line := Status(b.String())

	for _, m := range monitors {
		if err := m.push(line); err != nil {
			s.ErrorLog.Printf("Error feeding monitor %s: %v", m.RemoteAddr(), err)
		}
	}
}

// isWriteCommand reports whether the command mutates its first-argument
// key, for WATCH version tracking.
func isWriteCommand(name string) bool {
	switch strings.ToUpper(name) {
	case "SET", "SETEX", "SETNX", "SETRANGE", "GETSET", "GETDEL", "APPEND",
		"INCR", "INCRBY", "INCRBYFLOAT", "DECR", "DECRBY",
		"DEL", "UNLINK", "EXPIRE", "PEXPIRE", "PERSIST", "RENAME",
		"LPUSH", "RPUSH", "LPOP", "RPOP", "LSET", "LREM", "LTRIM", "LINSERT",
		"HSET", "HSETNX", "HDEL", "HINCRBY", "HINCRBYFLOAT",
		"SADD", "SREM", "SPOP", "SMOVE",
		"ZADD", "ZREM", "ZINCRBY", "ZPOPMAX", "ZPOPMIN",
		"XADD", "XDEL", "XTRIM":
		return true
	default:
		return false
	}
}
