/*
RESP command-line encoding. Every command the client sends is a RESP
array of bulk strings — never any other RESP shape — so the writer only
needs to implement that one encoding, plus a batched variant that
concatenates several command lines into a single buffer for one socket
write (the pipelining fast path).
*/
package redwire

import (
	"bytes"
	"strconv"
)

// WriteLine appends the RESP array-of-bulk-strings encoding of args to
// buf, encoding each argument through enc.
//
//	*<n>\r\n ( $<len>\r\n <bytes>\r\n ){n}
func WriteLine(buf *bytes.Buffer, enc *Encoders, args []any) error {
	buf.WriteByte('*')
	buf.WriteString(strconv.Itoa(len(args)))
	buf.WriteString("\r\n")
	for _, arg := range args {
		b, err := enc.Encode(arg)
		if err != nil {
			return err
		}
		buf.WriteByte('$')
		buf.WriteString(strconv.Itoa(len(b)))
		buf.WriteString("\r\n")
		buf.Write(b)
		buf.WriteString("\r\n")
	}
	return nil
}

// WriteBatch encodes every line in lines into buf back to back, for a
// single pipelined socket write.
func WriteBatch(buf *bytes.Buffer, enc *Encoders, lines [][]any) error {
	for _, line := range lines {
		if err := WriteLine(buf, enc, line); err != nil {
			return err
		}
	}
	return nil
}
