package redwire

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// render flattens a Reply into a canonical text form so two parses of
// the same stream can be compared regardless of nil-versus-empty slice
// representation.
func render(r Reply) string {
	switch r.Kind {
	case KindNull:
		return "null"
	case KindArray:
		parts := make([]string, len(r.Array))
		for i, e := range r.Array {
			parts[i] = render(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%s(%s)", r.Kind, string(r.Bytes))
	}
}

func renderAll(rs []Reply) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = render(r)
	}
	return strings.Join(parts, ";")
}

func feedChunks(t *testing.T, chunks [][]byte) []Reply {
	t.Helper()
	var d Decoder
	var out []Reply
	for _, c := range chunks {
		rs, err := d.Feed(c)
		require.NoError(t, err)
		out = append(out, rs...)
	}
	return out
}

func TestDecoderSingleReplies(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple string", "+OK\r\n", "SimpleString(OK)"},
		{"empty simple string", "+\r\n", "SimpleString()"},
		{"error", "-ERR unknown command\r\n", "Error(ERR unknown command)"},
		{"integer", ":42\r\n", "Integer(42)"},
		{"negative integer", ":-7\r\n", "Integer(-7)"},
		{"bulk", "$5\r\nhello\r\n", "Bulk(hello)"},
		{"empty bulk", "$0\r\n\r\n", "Bulk()"},
		{"null bulk", "$-1\r\n", "null"},
		{"bulk with crlf payload", "$7\r\na\r\nb\r\nc\r\n", "Bulk(a\r\nb\r\nc)"},
		{"empty array", "*0\r\n", "[]"},
		{"null array", "*-1\r\n", "null"},
		{"array", "*2\r\n$3\r\nfoo\r\n:9\r\n", "[Bulk(foo),Integer(9)]"},
		{"nested array", "*2\r\n*1\r\n+a\r\n*0\r\n", "[[SimpleString(a)],[]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feedChunks(t, [][]byte{[]byte(tt.input)})
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, render(got[0]))
		})
	}
}

// TestDecoderChunkSplitInvariance feeds a multi-reply stream whole,
// byte by byte, and at every single split point, and requires the same
// reply sequence each time.
func TestDecoderChunkSplitInvariance(t *testing.T) {
	stream := []byte("+OK\r\n:1234\r\n$6\r\nfoobar\r\n*3\r\n$3\r\nfoo\r\n$-1\r\n*2\r\n:1\r\n+x\r\n-ERR nope\r\n")

	whole := feedChunks(t, [][]byte{stream})
	want := renderAll(whole)
	require.NotEmpty(t, want)

	t.Run("byte by byte", func(t *testing.T) {
		chunks := make([][]byte, len(stream))
		for i := range stream {
			chunks[i] = stream[i : i+1]
		}
		assert.Equal(t, want, renderAll(feedChunks(t, chunks)))
	})

	t.Run("every two-chunk split", func(t *testing.T) {
		for i := 1; i < len(stream); i++ {
			got := feedChunks(t, [][]byte{stream[:i], stream[i:]})
			require.Equalf(t, want, renderAll(got), "split at %d", i)
		}
	})

	t.Run("three byte chunks", func(t *testing.T) {
		var chunks [][]byte
		for i := 0; i < len(stream); i += 3 {
			end := i + 3
			if end > len(stream) {
				end = len(stream)
			}
			chunks = append(chunks, stream[i:end])
		}
		assert.Equal(t, want, renderAll(feedChunks(t, chunks)))
	})
}

// TestDecoderNullElementByteByByte is the chunk-split scenario from the
// framing contract: an array containing a bulk and a null, one byte at
// a time, must come out as exactly one array reply.
func TestDecoderNullElementByteByByte(t *testing.T) {
	stream := []byte("*2\r\n$3\r\nfoo\r\n$-1\r\n")
	var d Decoder
	var out []Reply
	for _, b := range stream {
		rs, err := d.Feed([]byte{b})
		require.NoError(t, err)
		out = append(out, rs...)
	}
	require.Len(t, out, 1)
	assert.Equal(t, "[Bulk(foo),null]", render(out[0]))
}

func TestDecoderUnknownTag(t *testing.T) {
	var d Decoder
	_, err := d.Feed([]byte("?weird\r\n"))
	require.Error(t, err)
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
}

func TestDecoderUnknownTagInsideArray(t *testing.T) {
	var d Decoder
	_, err := d.Feed([]byte("*1\r\n%oops\r\n"))
	require.Error(t, err)
}

func TestDecoderInvalidLength(t *testing.T) {
	var d Decoder
	_, err := d.Feed([]byte("$abc\r\n"))
	require.Error(t, err)
}

func TestDecoderRepliesSpanningChunks(t *testing.T) {
	// A chunk ending exactly between the CR and LF of a length line,
	// and another ending inside a payload's trailing CRLF.
	chunks := [][]byte{
		[]byte("$3\r"),
		[]byte("\nabc\r"),
		[]byte("\n+PONG\r\n"),
	}
	got := feedChunks(t, chunks)
	require.Len(t, got, 2)
	assert.Equal(t, "Bulk(abc)", render(got[0]))
	assert.Equal(t, "SimpleString(PONG)", render(got[1]))
}

func TestDecoderManyRepliesOneChunk(t *testing.T) {
	got := feedChunks(t, [][]byte{[]byte("+A\r\n+B\r\n+C\r\n")})
	require.Len(t, got, 3)
	assert.Equal(t, "SimpleString(A);SimpleString(B);SimpleString(C)", renderAll(got))
}
