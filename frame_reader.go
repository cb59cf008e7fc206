/*
Incremental RESP parsing.

Decoder consumes an arbitrary byte stream — however it happens to be
chunked by the network — and emits complete Reply values as soon as they
are available. No reader in this file ever blocks or assumes a chunk
boundary lines up with a protocol boundary: a chunk may end mid-CRLF,
mid-length-prefix, or mid-payload, and the next Feed call picks up
exactly where the last one left off.

Three readers cover the five tags of the grammar:
  - lineReader handles Simple String, Error, and Integer (all are a tag
    byte already consumed by the caller, followed by one CRLF-terminated
    line).
  - bulkReader handles Bulk String: a length line, then either nothing
    more (Null, length -1) or exactly length payload bytes and a
    mandatory trailing CRLF.
  - arrayReader handles Array: a length line, then exactly length child
    values, each of which reads its own tag byte and recurses.

Decoder is the tag-byte driver every reply-consuming dispatcher runs its
inbound bytes through.
*/
package redwire

import "strconv"

// frameReader is the shared contract for the three concrete readers. A
// frameReader is constructed with its tag byte already consumed; feed is
// called zero or more times with the remaining bytes of the reply until
// isDone reports true, at which point value returns the parsed Reply and
// the frameReader is discarded.
type frameReader interface {
	feed(chunk []byte) (consumed int, err error)
	isDone() bool
	value() Reply
}

func newFrameReader(tag byte) (frameReader, error) {
	switch tag {
	case '+':
		return &lineReader{kind: KindSimpleString}, nil
	case '-':
		return &lineReader{kind: KindError}, nil
	case ':':
		return &lineReader{kind: KindInteger}, nil
	case '$':
		return &bulkReader{}, nil
	case '*':
		return &arrayReader{}, nil
	default:
		return nil, protocolErrorf("unknown RESP tag byte %q", tag)
	}
}

// lineReader accumulates bytes until a CRLF is seen. The CR and LF are
// stripped; a lone CR is simply buffered like any other byte and only
// dropped once the following LF confirms it was the terminator's first
// half, so a chunk split between CR and LF is tolerated for free.
type lineReader struct {
	kind Kind
	buf  []byte
	ok   bool
}

func (l *lineReader) feed(chunk []byte) (int, error) {
	for i, b := range chunk {
		if b == '\n' {
			if n := len(l.buf); n > 0 && l.buf[n-1] == '\r' {
				l.buf = l.buf[:n-1]
			}
			l.ok = true
			return i + 1, nil
		}
		l.buf = append(l.buf, b)
	}
	return len(chunk), nil
}

func (l *lineReader) isDone() bool { return l.ok }

func (l *lineReader) value() Reply {
	return Reply{Kind: l.kind, Bytes: l.buf}
}

// bulkReader reads a length-prefixed, binary-safe payload. remaining
// walks from the declared length down through 0 (payload fully read)
// to -2 (the two trailing CRLF bytes consumed); the two CRLF steps are
// taken one byte at a time, so that an arbitrary split inside the
// trailing CRLF never needs special casing.
type bulkReader struct {
	lenLine   lineReader
	haveLen   bool
	remaining int
	payload   []byte
	isNull    bool
	ok        bool
}

func (b *bulkReader) feed(chunk []byte) (int, error) {
	total := 0
	if !b.haveLen {
		n, err := b.lenLine.feed(chunk)
		total += n
		chunk = chunk[n:]
		if err != nil {
			return total, err
		}
		if !b.lenLine.isDone() {
			return total, nil
		}
		length, err := parseLength(b.lenLine.buf)
		if err != nil {
			return total, protocolErrorf("invalid bulk length: %v", err)
		}
		b.haveLen = true
		if length == -1 {
			b.isNull = true
			b.ok = true
			return total, nil
		}
		b.remaining = length
		b.payload = make([]byte, 0, length)
	}
	for len(chunk) > 0 && !b.ok {
		if b.remaining > 0 {
			take := b.remaining
			if take > len(chunk) {
				take = len(chunk)
			}
			b.payload = append(b.payload, chunk[:take]...)
			b.remaining -= take
			chunk = chunk[take:]
			total += take
			continue
		}
		// Trailing CRLF: remaining is 0, then -1; two single-byte steps.
		chunk = chunk[1:]
		total++
		b.remaining--
		if b.remaining == -2 {
			b.ok = true
		}
	}
	return total, nil
}

func (b *bulkReader) isDone() bool { return b.ok }

func (b *bulkReader) value() Reply {
	if b.isNull {
		return Reply{Kind: KindNull}
	}
	return Reply{Kind: KindBulk, Bytes: b.payload}
}

// arrayReader reads a length-prefixed sequence of child replies,
// constructing one child frameReader at a time and feeding it from the
// same incoming chunk the array itself is being fed from.
type arrayReader struct {
	lenLine lineReader
	haveLen bool
	length  int
	isNull  bool
	elems   []Reply
	child   frameReader
	ok      bool
}

func (a *arrayReader) feed(chunk []byte) (int, error) {
	total := 0
	if !a.haveLen {
		n, err := a.lenLine.feed(chunk)
		total += n
		chunk = chunk[n:]
		if err != nil {
			return total, err
		}
		if !a.lenLine.isDone() {
			return total, nil
		}
		length, err := parseLength(a.lenLine.buf)
		if err != nil {
			return total, protocolErrorf("invalid array length: %v", err)
		}
		a.haveLen = true
		if length == -1 {
			a.isNull = true
			a.ok = true
			return total, nil
		}
		a.length = length
		a.elems = make([]Reply, 0, length)
		if length == 0 {
			a.ok = true
			return total, nil
		}
	}
	for len(chunk) > 0 && !a.ok {
		if a.child == nil {
			tag := chunk[0]
			chunk = chunk[1:]
			total++
			r, err := newFrameReader(tag)
			if err != nil {
				return total, err
			}
			a.child = r
			continue
		}
		n, err := a.child.feed(chunk)
		total += n
		chunk = chunk[n:]
		if err != nil {
			return total, err
		}
		if n == 0 {
			// The child needs more bytes than this chunk has left.
			break
		}
		if a.child.isDone() {
			a.elems = append(a.elems, a.child.value())
			a.child = nil
			if len(a.elems) == a.length {
				a.ok = true
			}
		}
	}
	return total, nil
}

func (a *arrayReader) isDone() bool { return a.ok }

func (a *arrayReader) value() Reply {
	if a.isNull {
		return Reply{Kind: KindNull}
	}
	return Reply{Kind: KindArray, Array: a.elems}
}

func parseLength(line []byte) (int, error) {
	return strconv.Atoi(string(line))
}

// Decoder is the outer driver: it owns the current in-flight frameReader
// (if any) and turns a stream of arbitrarily sized byte chunks into a
// sequence of complete Reply values. Feed may be called with any nonzero
// number of bytes, including one at a time.
type Decoder struct {
	cur frameReader
}

// Feed appends chunk to the decoder and returns every Reply that became
// complete as a result. A protocol error poisons the Decoder: the caller
// must not call Feed again.
func (d *Decoder) Feed(chunk []byte) ([]Reply, error) {
	var out []Reply
	for len(chunk) > 0 {
		if d.cur == nil {
			tag := chunk[0]
			chunk = chunk[1:]
			r, err := newFrameReader(tag)
			if err != nil {
				return out, err
			}
			d.cur = r
			continue
		}
		n, err := d.cur.feed(chunk)
		if err != nil {
			return out, err
		}
		chunk = chunk[n:]
		if d.cur.isDone() {
			out = append(out, d.cur.value())
			d.cur = nil
			continue
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}
