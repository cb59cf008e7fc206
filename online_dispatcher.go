/*
OnlineDispatcher is the normal request/response multiplexer: it owns the
outstanding FIFO, the current Reply Mode, and the Transaction overlay,
and is what every ordinary command, pipeline, and MULTI/EXEC block runs
through.
*/
package redwire

import (
	"bytes"
	"container/list"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// OnlineDispatcher binds the RESP reply stream to caller-visible Command
// completions, preserving FIFO correlation.
type OnlineDispatcher struct {
	conn   *Connection
	enc    *Encoders
	dec    *Decoders
	logger *zap.Logger

	mu          sync.Mutex
	outstanding *list.List
	mode        ReplyMode
	tx          transaction

	decoder Decoder
}

// NewOnlineDispatcher binds itself to conn's callback triple and is
// ready to accept commands immediately.
func NewOnlineDispatcher(conn *Connection, enc *Encoders, dec *Decoders, logger *zap.Logger) *OnlineDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &OnlineDispatcher{
		conn:        conn,
		enc:         enc,
		dec:         dec,
		logger:      logger,
		outstanding: list.New(),
	}
	conn.Listen(d.onData, d.onTransportNotice, d.onConnDone)
	return d
}

// Send writes one command line and classifies it against the current
// Reply Mode.
func (d *OnlineDispatcher) Send(cmd *Command) error {
	return d.SendBatch([]*Command{cmd})
}

// SendBatch concatenates every command's encoded line into a single
// socket write — the pipelining fast path — then classifies each command
// in submission order exactly as Send would.
func (d *OnlineDispatcher) SendBatch(cmds []*Command) error {
	var buf bytes.Buffer
	toSend := make([]*Command, 0, len(cmds))
	for _, cmd := range cmds {
		if cmd.IsMulti() {
			d.mu.Lock()
			inProgress := d.tx.inProgress
			d.mu.Unlock()
			if inProgress {
				cmd.ResolveError(ErrTransactionInProgress)
				continue
			}
		}
		var line bytes.Buffer
		if err := WriteLine(&line, d.enc, cmd.Line()); err != nil {
			cmd.ResolveError(err)
			continue
		}
		buf.Write(line.Bytes())
		toSend = append(toSend, cmd)
	}
	if len(toSend) == 0 {
		return nil
	}
	// Enqueue before writing: once bytes hit the wire the reply can
	// race back on the read goroutine, and a reply must never find an
	// empty FIFO.
	for _, cmd := range toSend {
		d.classifyAndEnqueue(cmd)
	}
	if err := d.conn.Send(buf.Bytes()); err != nil {
		// The connection is gone (or was already gone, in which case
		// onConnDone ran before these commands were enqueued); drain
		// whatever is still outstanding so nothing waits forever.
		for _, cmd := range d.drainOutstanding() {
			cmd.ResolveError(err)
		}
		return err
	}
	return nil
}

// classifyAndEnqueue applies the per-command Reply Mode
// classification: a CLIENT REPLY command updates the mode and, for
// OFF/SKIP, resolves itself with Null instead of enqueueing; while the
// mode is OFF every other command resolves with Null without
// enqueueing; while the mode is SKIP exactly one command resolves with
// Null and the mode reverts to ON; otherwise the command is enqueued.
func (d *OnlineDispatcher) classifyAndEnqueue(cmd *Command) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cmd.IsClientReply() {
		d.mode = cmd.ReplyMode()
		if d.mode != ReplyOn {
			cmd.ResolveVoid()
			return
		}
		d.outstanding.PushBack(cmd)
		return
	}

	switch d.mode {
	case ReplyOff:
		cmd.ResolveVoid()
	case ReplySkip:
		cmd.ResolveVoid()
		d.mode = ReplyOn
	default:
		d.outstanding.PushBack(cmd)
	}
}

func (d *OnlineDispatcher) popOutstanding() *Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	front := d.outstanding.Front()
	if front == nil {
		return nil
	}
	d.outstanding.Remove(front)
	return front.Value.(*Command)
}

func (d *OnlineDispatcher) drainOutstanding() []*Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Command, 0, d.outstanding.Len())
	for e := d.outstanding.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Command))
	}
	d.outstanding.Init()
	return out
}

func (d *OnlineDispatcher) onData(chunk []byte) {
	replies, err := d.decoder.Feed(chunk)
	for _, r := range replies {
		d.onReply(r)
	}
	if err != nil {
		d.poison(err)
	}
}

func (d *OnlineDispatcher) onReply(r Reply) {
	cmd := d.popOutstanding()
	if cmd == nil {
		d.poison(protocolErrorf("reply with no outstanding command: %s", r))
		return
	}

	d.mu.Lock()
	inTx := d.tx.inProgress
	d.mu.Unlock()

	switch {
	case inTx && r.Kind == KindError:
		d.tx.onErrorReply(cmd, r.AsError())
	case inTx:
		if err := d.tx.onReply(cmd, r, d.dec); err != nil {
			// The popped command still gets its completion before the
			// stream is declared unusable.
			cmd.ResolveError(err)
			d.poison(err)
		}
	case r.Kind != KindError:
		d.mu.Lock()
		d.tx.begin(cmd)
		d.mu.Unlock()
		cmd.ResolveReply(r, d.dec)
	default:
		cmd.ResolveReply(r, d.dec)
	}
}

// poison treats a malformed stream as a transport failure: the reader
// already observed corrupted framing, so there is no well-defined place
// to resume, and the connection is torn down exactly like a socket
// error.
func (d *OnlineDispatcher) poison(err error) {
	d.logger.Error("protocol error, poisoning connection", zap.Error(err))
	d.conn.fail(err)
}

func (d *OnlineDispatcher) onTransportNotice(err error) {
	d.logger.Warn("online dispatcher observed transport error", zap.Error(err))
}

func (d *OnlineDispatcher) onConnDone(err error) {
	remaining := d.drainOutstanding()

	if err == nil {
		for _, cmd := range remaining {
			cmd.ResolveError(ErrConnClosed)
		}
		d.mu.Lock()
		d.tx.discardAll(ErrConnClosed)
		d.mu.Unlock()
		return
	}

	te := transportError(err)
	if len(remaining) > 0 {
		var merr *multierror.Error
		for _, cmd := range remaining {
			cmd.ResolveError(te)
			merr = multierror.Append(merr, te)
		}
		d.logger.Error("transport error resolved outstanding commands",
			zap.Int("count", len(remaining)), zap.Error(merr.ErrorOrNil()))
	}
	d.mu.Lock()
	d.tx.onTransportError(te)
	d.mu.Unlock()
}
