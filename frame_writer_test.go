package redwire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLineEncoding(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoders()
	err := WriteLine(&buf, enc, []any{"SET", "key", "value"})
	require.NoError(t, err)
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n", buf.String())
}

func TestWriteLineMixedArgumentTypes(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoders()
	err := WriteLine(&buf, enc, []any{SET, "n", int64(42)})
	require.NoError(t, err)
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$1\r\nn\r\n$2\r\n42\r\n", buf.String())
}

// TestWriterReaderRoundTrip parses the writer's output back through the
// frame reader and requires an array of bulks carrying the original
// argument bytes.
func TestWriterReaderRoundTrip(t *testing.T) {
	lines := [][]any{
		{"PING"},
		{"SET", "key", "value"},
		{"ECHO", ""},
		{"SET", "bin", []byte("a\r\nb")},
		{"LPUSH", "l", "x", "y", "z"},
	}
	enc := NewEncoders()
	for _, line := range lines {
		var buf bytes.Buffer
		require.NoError(t, WriteLine(&buf, enc, line))

		var d Decoder
		replies, err := d.Feed(buf.Bytes())
		require.NoError(t, err)
		require.Len(t, replies, 1)
		r := replies[0]
		require.Equal(t, KindArray, r.Kind)
		require.Len(t, r.Array, len(line))
		for i, arg := range line {
			want, err := enc.Encode(arg)
			require.NoError(t, err)
			assert.Equal(t, KindBulk, r.Array[i].Kind)
			assert.Equal(t, want, r.Array[i].Bytes)
		}
	}
}

func TestWriteBatchConcatenates(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoders()
	err := WriteBatch(&buf, enc, [][]any{{"PING"}, {"PING"}, {"PING"}})
	require.NoError(t, err)

	var d Decoder
	replies, err := d.Feed(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, replies, 3)
	for _, r := range replies {
		assert.Equal(t, KindArray, r.Kind)
	}
}

func TestWriteLineEncoderError(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoders()
	err := WriteLine(&buf, enc, []any{"SET", "k", struct{ X int }{1}})
	require.Error(t, err)
	var cerr *CodecError
	require.ErrorAs(t, err, &cerr)
}
