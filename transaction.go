/*
transaction is the MULTI/EXEC state machine overlaid on the Online
dispatcher's outstanding FIFO. It owns exactly two pieces of
state: whether a transaction is in progress, and the ordered list of
commands the server has acknowledged with QUEUED since MULTI.
*/
package redwire

// transaction tracks one connection's MULTI..EXEC/DISCARD cycle.
type transaction struct {
	inProgress bool
	queued     []*Command
}

// begin marks a transaction in-progress iff cmd is MULTI. It is only
// ever called while no transaction is already in progress — a second
// MULTI is rejected at submission time.
func (t *transaction) begin(cmd *Command) {
	if cmd.IsMulti() {
		t.inProgress = true
	}
}

// onReply handles a non-error reply arriving while in-progress.
func (t *transaction) onReply(cmd *Command, r Reply, dec *Decoders) error {
	switch {
	case cmd.IsExec():
		if r.Kind == KindNull {
			// WATCH saw a conflicting write: the optimistic-lock abort.
			for _, q := range t.queued {
				q.ResolveError(ErrTransactionDiscarded)
			}
			cmd.ResolveReply(r, dec)
			t.clear()
			return nil
		}
		if r.Kind != KindArray {
			return protocolErrorf("EXEC reply must be array or null, got %s", r.Kind)
		}
		if len(r.Array) != len(t.queued) {
			return protocolErrorf("EXEC reply has %d elements, queued %d commands", len(r.Array), len(t.queued))
		}
		for i, q := range t.queued {
			elem := r.Array[i]
			if elem.Kind == KindError {
				q.ResolveError(elem.AsError())
			} else {
				q.ResolveReply(elem, dec)
			}
		}
		cmd.ResolveReply(r, dec)
		t.clear()
		return nil

	case cmd.IsDiscard():
		for _, q := range t.queued {
			q.ResolveError(ErrTransactionDiscarded)
		}
		cmd.ResolveReply(r, dec)
		t.clear()
		return nil

	default:
		if r.Kind != KindSimpleString || string(r.Bytes) != "QUEUED" {
			return protocolErrorf("expected QUEUED inside transaction, got %s", r)
		}
		t.queued = append(t.queued, cmd)
		return nil
	}
}

// onErrorReply handles a "-ERR ..." reply arriving while in-progress.
func (t *transaction) onErrorReply(cmd *Command, err error) {
	if cmd.IsExec() {
		for _, q := range t.queued {
			q.ResolveError(err)
		}
		cmd.ResolveError(err)
		t.clear()
		return
	}
	// The offending command resolves with the error and is not queued;
	// the server will refuse EXEC for this transaction later.
	cmd.ResolveError(err)
}

// onTransportError resolves every queued command when the connection is
// lost mid-transaction.
func (t *transaction) onTransportError(err error) {
	for _, q := range t.queued {
		q.ResolveError(err)
	}
	t.clear()
}

// discardAll resolves every queued command on a graceful close that
// happens mid-transaction.
func (t *transaction) discardAll(err error) {
	if !t.inProgress {
		return
	}
	for _, q := range t.queued {
		q.ResolveError(err)
	}
	t.clear()
}

func (t *transaction) clear() {
	t.inProgress = false
	t.queued = nil
}
