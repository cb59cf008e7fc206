package redwire

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDefaults(t *testing.T) {
	enc := NewEncoders()
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hello", "hello"},
		{"bytes", []byte{0x00, 0xff}, "\x00\xff"},
		{"int64", int64(-42), "-42"},
		{"int", 7, "7"},
		{"uint16", uint16(65535), "65535"},
		{"float64", 3.25, "3.25"},
		{"float32", float32(1.5), "1.5"},
		{"positive infinity", math.Inf(1), "+inf"},
		{"negative infinity", math.Inf(-1), "-inf"},
		{"command type", GET, "GET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enc.Encode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncodeNaNRejected(t *testing.T) {
	enc := NewEncoders()
	_, err := enc.Encode(math.NaN())
	require.Error(t, err)
	var cerr *CodecError
	require.ErrorAs(t, err, &cerr)
}

func TestEncodeUnknownType(t *testing.T) {
	enc := NewEncoders()
	_, err := enc.Encode(struct{}{})
	require.Error(t, err)
	_, err = enc.Encode(nil)
	require.Error(t, err)
}

func TestEncodeRegisterReplaces(t *testing.T) {
	enc := NewEncoders()
	enc.Register(stringType, func(v any) ([]byte, error) {
		return []byte("override:" + v.(string)), nil
	})
	got, err := enc.Encode("x")
	require.NoError(t, err)
	assert.Equal(t, "override:x", string(got))

	// A clone made afterwards carries the override; re-registering on
	// the clone must not touch the original.
	clone := enc.Clone()
	clone.Register(stringType, func(v any) ([]byte, error) {
		return []byte(v.(string)), nil
	})
	got, err = enc.Encode("x")
	require.NoError(t, err)
	assert.Equal(t, "override:x", string(got))
}

func TestEncodeUserType(t *testing.T) {
	type point struct{ x, y int }
	enc := NewEncoders()
	enc.Register(reflect.TypeOf(point{}), func(v any) ([]byte, error) {
		p := v.(point)
		return []byte(string(rune('0'+p.x)) + "," + string(rune('0'+p.y))), nil
	})
	got, err := enc.Encode(point{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "1,2", string(got))
}

func TestDecodeDefaults(t *testing.T) {
	dec := NewDecoders()

	v, err := dec.Decode(stringType, Reply{Kind: KindBulk, Bytes: []byte("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hi", v)

	v, err = dec.Decode(stringType, Reply{Kind: KindSimpleString, Bytes: []byte("OK")})
	require.NoError(t, err)
	assert.Equal(t, "OK", v)

	v, err = dec.Decode(int64Type, Reply{Kind: KindInteger, Bytes: []byte("-3")})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), v)

	v, err = dec.Decode(float64Typ, Reply{Kind: KindBulk, Bytes: []byte("2.5")})
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	v, err = dec.Decode(float64Typ, Reply{Kind: KindBulk, Bytes: []byte("+inf")})
	require.NoError(t, err)
	assert.True(t, math.IsInf(v.(float64), 1))
}

func TestDecodeErrorReply(t *testing.T) {
	dec := NewDecoders()
	_, err := dec.Decode(stringType, Reply{Kind: KindError, Bytes: []byte("ERR boom")})
	require.Error(t, err)
	var serr ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "ERR", serr.Prefix())
}

// TestDecodeNullability: Null decodes to the zero value for pointer and
// interface targets and fails for everything else.
func TestDecodeNullability(t *testing.T) {
	dec := NewDecoders()

	v, err := dec.Decode(reflect.TypeOf((*string)(nil)), Reply{Kind: KindNull})
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = dec.Decode(anyType, Reply{Kind: KindNull})
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = dec.Decode(stringType, Reply{Kind: KindNull})
	require.Error(t, err)
	var cerr *CodecError
	require.ErrorAs(t, err, &cerr)
}

func TestDecodePointerRelaxation(t *testing.T) {
	dec := NewDecoders()
	v, err := dec.Decode(reflect.TypeOf((*string)(nil)), Reply{Kind: KindBulk, Bytes: []byte("val")})
	require.NoError(t, err)
	p, ok := v.(*string)
	require.True(t, ok)
	require.NotNil(t, p)
	assert.Equal(t, "val", *p)
}

func TestDecodeSlice(t *testing.T) {
	dec := NewDecoders()
	arr := Reply{Kind: KindArray, Array: []Reply{
		{Kind: KindBulk, Bytes: []byte("a")},
		{Kind: KindBulk, Bytes: []byte("b")},
	}}

	ss, err := DecodeSlice[string](arr, dec)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ss)

	// A Null element fails for a non-nullable element type...
	withNull := Reply{Kind: KindArray, Array: []Reply{
		{Kind: KindBulk, Bytes: []byte("a")},
		{Kind: KindNull},
	}}
	_, err = DecodeSlice[string](withNull, dec)
	require.Error(t, err)

	// ...and passes for a nullable one.
	ps, err := DecodeSlice[*string](withNull, dec)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "a", *ps[0])
	assert.Nil(t, ps[1])

	anys, err := DecodeSlice[any](withNull, dec)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", nil}, anys)
}

func TestDecodeAnyArray(t *testing.T) {
	dec := NewDecoders()
	arr := Reply{Kind: KindArray, Array: []Reply{
		{Kind: KindInteger, Bytes: []byte("1")},
		{Kind: KindBulk, Bytes: []byte("two")},
		{Kind: KindArray, Array: []Reply{{Kind: KindSimpleString, Bytes: []byte("x")}}},
	}}
	v, err := dec.Decode(anyType, arr)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "two", []any{"x"}}, v)
}

func TestDecodeNoConverter(t *testing.T) {
	dec := NewDecoders()
	type custom struct{}
	_, err := dec.Decode(reflect.TypeOf(custom{}), Reply{Kind: KindBulk, Bytes: []byte("x")})
	require.Error(t, err)
	var cerr *CodecError
	require.ErrorAs(t, err, &cerr)
}
