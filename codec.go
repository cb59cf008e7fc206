/*
The codec is two ordered, per-connection registries: Encoders turns an
outbound argument value into wire bytes, Decoders turns an inbound Reply
into a caller-requested Go type. Both are consulted on every command, so
lookup is a linear scan over a short list rather than anything fancier.

Registration is first-match-after-replace: registering a converter for a
type that is already registered replaces the existing entry in place;
otherwise it is appended to the end. Default converters are registered
by NewEncoders/NewDecoders so user registration always runs before the
fallback entries are reached.

math/big-ish coercions (an int32 argument, a time.Duration alias) are
handled by github.com/spf13/cast rather than a
hand-rolled reflect.Kind switch per numeric width — that is exactly the
permissive coercion cast exists for.
*/
package redwire

import (
	"math"
	"reflect"
	"strconv"

	"github.com/spf13/cast"
)

var (
	bytesType  = reflect.TypeOf([]byte(nil))
	stringType = reflect.TypeOf("")
	int64Type  = reflect.TypeOf(int64(0))
	float64Typ = reflect.TypeOf(float64(0))
	anyType    = reflect.TypeOf((*any)(nil)).Elem()
	anySlcType = reflect.TypeOf([]any(nil))
)

// EncodeFunc turns a Go value into its RESP bulk-string payload.
type EncodeFunc func(v any) ([]byte, error)

type encEntry struct {
	source reflect.Type
	// kindMatch, when set, is consulted for values whose concrete type
	// isn't source itself (the numeric/alias catch-all).
	kindMatch func(reflect.Kind) bool
	fn        EncodeFunc
}

// Encoders is the outbound half of the codec.
type Encoders struct {
	entries []encEntry
}

// NewEncoders returns a registry with the default converters: []byte
// (identity), string (UTF-8), signed integers (decimal), and finite
// doubles (decimal, with +inf/-inf sentinels; NaN is rejected).
func NewEncoders() *Encoders {
	e := &Encoders{}
	e.Register(bytesType, func(v any) ([]byte, error) {
		return v.([]byte), nil
	})
	e.Register(stringType, func(v any) ([]byte, error) {
		return []byte(v.(string)), nil
	})
	e.Register(int64Type, func(v any) ([]byte, error) {
		return strconv.AppendInt(nil, v.(int64), 10), nil
	})
	e.Register(float64Typ, encodeFloat)
	e.registerNumericFallback()
	return e
}

func encodeFloat(v any) ([]byte, error) {
	f := v.(float64)
	switch {
	case math.IsNaN(f):
		return nil, codecErrorf("cannot encode NaN")
	case math.IsInf(f, 1):
		return []byte("+inf"), nil
	case math.IsInf(f, -1):
		return []byte("-inf"), nil
	default:
		return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
	}
}

// registerNumericFallback appends a catch-all for kinds that aren't
// []byte/string/int64/float64 exactly: numeric aliases (int, int32,
// uint16, a named duration type, ...) coerce through cast, and named
// string types (CommandType most of all) encode as their underlying
// string, so every Go alias round trips without an explicit
// registration.
func (e *Encoders) registerNumericFallback() {
	e.entries = append(e.entries, encEntry{
		kindMatch: func(k reflect.Kind) bool {
			switch k {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
				reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				return true
			case reflect.Float32, reflect.Float64, reflect.String:
				return true
			default:
				return false
			}
		},
		fn: func(v any) ([]byte, error) {
			rv := reflect.ValueOf(v)
			switch rv.Kind() {
			case reflect.String:
				return []byte(rv.String()), nil
			case reflect.Float32, reflect.Float64:
				f, err := cast.ToFloat64E(v)
				if err != nil {
					return nil, codecErrorf("%v", err)
				}
				return encodeFloat(f)
			default:
				n, err := cast.ToInt64E(v)
				if err != nil {
					return nil, codecErrorf("%v", err)
				}
				return strconv.AppendInt(nil, n, 10), nil
			}
		},
	})
}

// Register adds or replaces the encoder for values of type source.
func (e *Encoders) Register(source reflect.Type, fn EncodeFunc) {
	for i, ent := range e.entries {
		if ent.source == source {
			e.entries[i].fn = fn
			return
		}
	}
	e.entries = append(e.entries, encEntry{source: source, fn: fn})
}

// Clone copies the registry so a shared Encoders can seed a new
// connection's without later mutation on one leaking into the other.
func (e *Encoders) Clone() *Encoders {
	c := &Encoders{entries: make([]encEntry, len(e.entries))}
	copy(c.entries, e.entries)
	return c
}

// Encode looks up the first registered converter whose declared source
// type accepts v and runs it; the kind fallback is tried only when no
// registered source type accepts v.
func (e *Encoders) Encode(v any) ([]byte, error) {
	if v == nil {
		return nil, codecErrorf("cannot encode nil argument")
	}
	vt := reflect.TypeOf(v)
	for _, ent := range e.entries {
		if ent.source != nil && vt.AssignableTo(ent.source) {
			return ent.fn(v)
		}
	}
	for _, ent := range e.entries {
		if ent.kindMatch != nil && ent.kindMatch(vt.Kind()) {
			return ent.fn(v)
		}
	}
	return nil, codecErrorf("no encoder registered for %T", v)
}

// DecodeFunc turns a Reply into a Go value. dec is passed through so
// array element decoding can recurse without a package-level global.
type DecodeFunc func(r Reply, dec *Decoders) (any, error)

type decEntry struct {
	accepts func(Kind) bool
	target  reflect.Type
	fn      DecodeFunc
}

// Decoders is the inbound half of the codec.
type Decoders struct {
	entries []decEntry
}

func isBulkOrSimple(k Kind) bool { return k == KindBulk || k == KindSimpleString }
func isNumeric(k Kind) bool {
	return k == KindBulk || k == KindSimpleString || k == KindInteger
}
func isArrayKind(k Kind) bool { return k == KindArray }
func anyKind(Kind) bool       { return true }

// NewDecoders returns a registry with the default converters, inverting
// NewEncoders' defaults for Bulk/SimpleString/Integer, plus a generic
// "any" converter used for array-of-any decoding and ad hoc inspection.
func NewDecoders() *Decoders {
	d := &Decoders{}
	d.Register(bytesType, isBulkOrSimple, func(r Reply, _ *Decoders) (any, error) {
		return append([]byte(nil), r.Bytes...), nil
	})
	d.Register(stringType, isBulkOrSimple, func(r Reply, _ *Decoders) (any, error) {
		return string(r.Bytes), nil
	})
	d.Register(int64Type, func(k Kind) bool { return k == KindInteger || k == KindBulk || k == KindSimpleString }, func(r Reply, _ *Decoders) (any, error) {
		n, err := cast.ToInt64E(string(r.Bytes))
		if err != nil {
			return nil, codecErrorf("not an integer: %v", err)
		}
		return n, nil
	})
	d.Register(float64Typ, isNumeric, func(r Reply, _ *Decoders) (any, error) {
		s := string(r.Bytes)
		switch s {
		case "+inf", "inf":
			return math.Inf(1), nil
		case "-inf":
			return math.Inf(-1), nil
		}
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, codecErrorf("not a float: %v", err)
		}
		return f, nil
	})
	d.Register(anyType, anyKind, decodeAny)
	d.Register(anySlcType, isArrayKind, func(r Reply, dec *Decoders) (any, error) {
		out := make([]any, 0, len(r.Array))
		for _, elem := range r.Array {
			v, err := dec.Decode(anyType, elem)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	})
	return d
}

func decodeAny(r Reply, dec *Decoders) (any, error) {
	switch r.Kind {
	case KindNull:
		return nil, nil
	case KindBulk, KindSimpleString:
		return string(r.Bytes), nil
	case KindInteger:
		return dec.Decode(int64Type, r)
	case KindArray:
		return dec.Decode(anySlcType, r)
	case KindError:
		return nil, r.AsError()
	default:
		return nil, codecErrorf("unrepresentable reply kind %s", r.Kind)
	}
}

// Register adds or replaces the decoder for a given target type.
func (d *Decoders) Register(target reflect.Type, accepts func(Kind) bool, fn DecodeFunc) {
	for i, ent := range d.entries {
		if ent.target == target {
			d.entries[i] = decEntry{accepts: accepts, target: target, fn: fn}
			return
		}
	}
	d.entries = append(d.entries, decEntry{accepts: accepts, target: target, fn: fn})
}

// Clone copies the registry, mirroring Encoders.Clone.
func (d *Decoders) Clone() *Decoders {
	c := &Decoders{entries: make([]decEntry, len(d.entries))}
	copy(c.entries, d.entries)
	return c
}

// Decode converts r into requested. Two relaxations are built in rather
// than registered per entry, so nullability is part of the type query
// itself:
//   - if r is Null and requested is a pointer or interface type (the
//     "optional of T" shapes), the zero value of requested is returned
//     instead of an error;
//   - if r is Null and requested is any other (non-nullable) type,
//     decoding fails with a CodecError rather than a panic or a zero
//     value silently standing in for "absent".
func (d *Decoders) Decode(requested reflect.Type, r Reply) (any, error) {
	if r.Kind == KindError {
		return nil, r.AsError()
	}
	if r.Kind == KindNull {
		if requested.Kind() == reflect.Pointer || requested.Kind() == reflect.Interface {
			return reflect.Zero(requested).Interface(), nil
		}
		return nil, codecErrorf("cannot decode null as non-nullable type %s", requested)
	}
	for _, ent := range d.entries {
		if !ent.accepts(r.Kind) {
			continue
		}
		if ent.target == requested {
			return ent.fn(r, d)
		}
		if requested.Kind() == reflect.Pointer && ent.target == requested.Elem() {
			v, err := ent.fn(r, d)
			if err != nil {
				return nil, err
			}
			pv := reflect.New(requested.Elem())
			pv.Elem().Set(reflect.ValueOf(v))
			return pv.Interface(), nil
		}
	}
	return nil, codecErrorf("no decoder from %s to %s", r.Kind, requested)
}

// DecodeSlice decodes an Array reply element-wise into []T, applying
// Decode's Null relaxation per element (so []*string and []any tolerate
// Null members while []string does not).
func DecodeSlice[T any](r Reply, dec *Decoders) ([]T, error) {
	if r.Kind == KindNull {
		return nil, nil
	}
	if r.Kind != KindArray {
		return nil, codecErrorf("expected array, got %s", r.Kind)
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	out := make([]T, 0, len(r.Array))
	for _, elem := range r.Array {
		v, err := dec.Decode(t, elem)
		if err != nil {
			return nil, err
		}
		tv, _ := v.(T)
		out = append(out, tv)
	}
	return out, nil
}
