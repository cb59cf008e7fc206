/*
Middleware support. A middleware wraps command processing: it can
inspect or rewrite the command, veto it by answering without calling
next, or post-process the reply. Middlewares run in registration order,
outermost first, around whichever handler the dispatch selects.
*/
package respserver

// Middleware processes a command and decides whether to pass it on.
type Middleware func(conn *Conn, cmd *Command, next Handler) Value

// Use registers a middleware. Middlewares apply to every handler-routed
// command, including those replayed by EXEC; the protocol-level
// built-ins (MULTI itself, SUBSCRIBE, MONITOR, CLIENT REPLY) bypass
// them.
func (s *Server) Use(m Middleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middlewares = append(s.middlewares, m)
}

// UseFunc is Use with the function type spelled out at the call site.
func (s *Server) UseFunc(m func(conn *Conn, cmd *Command, next Handler) Value) {
	s.Use(m)
}

// wrap builds the middleware chain around h, outermost middleware
// first.
func (s *Server) wrap(h Handler) Handler {
	s.mu.RLock()
	mws := s.middlewares
	s.mu.RUnlock()

	for i := len(mws) - 1; i >= 0; i-- {
		m := mws[i]
		next := h
		h = HandlerFunc(func(conn *Conn, cmd *Command) Value {
			return m(conn, cmd, next)
		})
	}
	return h
}
