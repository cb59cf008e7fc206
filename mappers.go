/*
Structured-reply mappers.

Most commands decode through the codec's default converters; the ones in
this file answer with a shaped Array (a scan page with its cursor, a
stream entry with its field map, a geo coordinate pair, an XINFO
key/value dump) and need a per-command function that knows the shape.
Each mapper consumes the Array Reply and builds the caller-visible
record.

Flat key,value,key,value arrays — HGETALL, CONFIG GET, XINFO — are
lifted into a map once and, where the caller wants a struct, decoded by
field tag through mapstructure instead of a hand-written switch per
field.
*/
package redwire

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// Standard simple mappers the command surface attaches by result type.

func mapText(r Reply, dec *Decoders) (any, error) {
	return dec.Decode(stringType, r)
}

func mapInt(r Reply, dec *Decoders) (any, error) {
	return dec.Decode(int64Type, r)
}

func mapFloat(r Reply, dec *Decoders) (any, error) {
	return dec.Decode(float64Typ, r)
}

func mapBytes(r Reply, dec *Decoders) (any, error) {
	return dec.Decode(bytesType, r)
}

// mapOptionalText tolerates a Null reply (GET on a missing key),
// returning nil for it instead of a string.
func mapOptionalText(r Reply, dec *Decoders) (any, error) {
	if r.Kind == KindNull {
		return nil, nil
	}
	return dec.Decode(stringType, r)
}

func mapStrings(r Reply, dec *Decoders) (any, error) {
	return DecodeSlice[string](r, dec)
}

// mapStringMap folds a flat key,value,... Array into a map. HGETALL and
// CONFIG GET both answer in this shape.
func mapStringMap(r Reply, dec *Decoders) (any, error) {
	return replyToStringMap(r)
}

func replyToStringMap(r Reply) (map[string]string, error) {
	if r.Kind == KindNull {
		return nil, nil
	}
	if r.Kind != KindArray {
		return nil, codecErrorf("expected flat key/value array, got %s", r.Kind)
	}
	if len(r.Array)%2 != 0 {
		return nil, codecErrorf("key/value array has odd length %d", len(r.Array))
	}
	out := make(map[string]string, len(r.Array)/2)
	for i := 0; i < len(r.Array); i += 2 {
		out[string(r.Array[i].Bytes)] = string(r.Array[i+1].Bytes)
	}
	return out, nil
}

// DecodeReply lifts a flat key,value,... Array reply into dst, a
// pointer to a struct whose fields carry `redis:"field-name"` tags.
// Untyped values pass through as strings; numeric struct fields are
// coerced on the way in. Fields the reply does not mention keep their
// zero value, and reply keys with no matching field are dropped.
func DecodeReply(r Reply, dst any) error {
	kv, err := replyToAnyMap(r)
	if err != nil {
		return err
	}
	cfg := &mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          "redis",
		WeaklyTypedInput: true,
	}
	d, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return codecErrorf("%v", err)
	}
	if err := d.Decode(kv); err != nil {
		return codecErrorf("%v", err)
	}
	return nil
}

func replyToAnyMap(r Reply) (map[string]any, error) {
	if r.Kind != KindArray {
		return nil, codecErrorf("expected flat key/value array, got %s", r.Kind)
	}
	if len(r.Array)%2 != 0 {
		return nil, codecErrorf("key/value array has odd length %d", len(r.Array))
	}
	out := make(map[string]any, len(r.Array)/2)
	for i := 0; i < len(r.Array); i += 2 {
		key := string(r.Array[i].Bytes)
		val := r.Array[i+1]
		switch val.Kind {
		case KindNull:
			out[key] = nil
		case KindInteger:
			out[key] = cast.ToInt64(string(val.Bytes))
		case KindArray:
			out[key] = val
		default:
			out[key] = string(val.Bytes)
		}
	}
	return out, nil
}

// ScanResult is one page of a SCAN/HSCAN/SSCAN/ZSCAN iteration: the
// cursor to resume from (0 when the iteration is complete) and the
// page's members.
type ScanResult struct {
	Cursor uint64
	Keys   []string
}

func mapScan(r Reply, dec *Decoders) (any, error) {
	if r.Kind != KindArray || len(r.Array) != 2 {
		return nil, codecErrorf("scan reply must be a two-element array, got %s", r)
	}
	cursor, err := cast.ToUint64E(string(r.Array[0].Bytes))
	if err != nil {
		return nil, codecErrorf("scan cursor: %v", err)
	}
	keys, err := DecodeSlice[string](r.Array[1], dec)
	if err != nil {
		return nil, err
	}
	return &ScanResult{Cursor: cursor, Keys: keys}, nil
}

// StreamEntry is one XADD-produced entry: its ID and field map.
type StreamEntry struct {
	ID     string
	Fields map[string]string
}

func decodeStreamEntry(r Reply) (*StreamEntry, error) {
	if r.Kind == KindNull {
		return nil, nil
	}
	if r.Kind != KindArray || len(r.Array) != 2 {
		return nil, codecErrorf("stream entry must be [id, fields], got %s", r)
	}
	fields, err := replyToStringMap(r.Array[1])
	if err != nil {
		return nil, err
	}
	return &StreamEntry{ID: string(r.Array[0].Bytes), Fields: fields}, nil
}

// mapStreamEntries decodes an XRANGE/XREVRANGE reply.
func mapStreamEntries(r Reply, _ *Decoders) (any, error) {
	if r.Kind == KindNull {
		return []*StreamEntry(nil), nil
	}
	if r.Kind != KindArray {
		return nil, codecErrorf("expected array of stream entries, got %s", r.Kind)
	}
	out := make([]*StreamEntry, 0, len(r.Array))
	for _, elem := range r.Array {
		e, err := decodeStreamEntry(elem)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// GeoPos is one GEOPOS coordinate pair.
type GeoPos struct {
	Longitude float64
	Latitude  float64
}

// mapGeoPos decodes a GEOPOS reply: an array with one element per
// requested member, each either Null (unknown member) or a
// [longitude, latitude] pair.
func mapGeoPos(r Reply, _ *Decoders) (any, error) {
	if r.Kind != KindArray {
		return nil, codecErrorf("expected array of positions, got %s", r.Kind)
	}
	out := make([]*GeoPos, 0, len(r.Array))
	for _, elem := range r.Array {
		if elem.Kind == KindNull {
			out = append(out, nil)
			continue
		}
		if elem.Kind != KindArray || len(elem.Array) != 2 {
			return nil, codecErrorf("geo position must be [longitude, latitude], got %s", elem)
		}
		lon, err := cast.ToFloat64E(string(elem.Array[0].Bytes))
		if err != nil {
			return nil, codecErrorf("longitude: %v", err)
		}
		lat, err := cast.ToFloat64E(string(elem.Array[1].Bytes))
		if err != nil {
			return nil, codecErrorf("latitude: %v", err)
		}
		out = append(out, &GeoPos{Longitude: lon, Latitude: lat})
	}
	return out, nil
}

// XInfoStream is the XINFO STREAM summary record.
type XInfoStream struct {
	Length          int64        `redis:"length"`
	RadixTreeKeys   int64        `redis:"radix-tree-keys"`
	RadixTreeNodes  int64        `redis:"radix-tree-nodes"`
	Groups          int64        `redis:"groups"`
	LastGeneratedID string       `redis:"last-generated-id"`
	FirstEntry      *StreamEntry `redis:"-"`
	LastEntry       *StreamEntry `redis:"-"`
}

// XInfoGroup is one element of the XINFO GROUPS reply.
type XInfoGroup struct {
	Name            string `redis:"name"`
	Consumers       int64  `redis:"consumers"`
	Pending         int64  `redis:"pending"`
	LastDeliveredID string `redis:"last-delivered-id"`
}

// mapXInfo selects the decoder for an XINFO reply by the requested
// subcommand: the reply shape is polymorphic, so the mapper must be
// too. STREAM answers a flat key/value dump with two embedded entry
// values; GROUPS answers an array of such dumps.
func mapXInfo(subcommand string) Mapper {
	switch strings.ToUpper(subcommand) {
	case "GROUPS":
		return func(r Reply, _ *Decoders) (any, error) {
			if r.Kind != KindArray {
				return nil, codecErrorf("XINFO GROUPS reply must be an array, got %s", r.Kind)
			}
			out := make([]*XInfoGroup, 0, len(r.Array))
			for _, elem := range r.Array {
				var g XInfoGroup
				if err := DecodeReply(elem, &g); err != nil {
					return nil, err
				}
				out = append(out, &g)
			}
			return out, nil
		}
	default: // STREAM
		return func(r Reply, _ *Decoders) (any, error) {
			var info XInfoStream
			if err := DecodeReply(r, &info); err != nil {
				return nil, err
			}
			// The two entry-valued fields are nested arrays that
			// mapstructure cannot interpret; pick them out by hand.
			kv, err := replyToAnyMap(r)
			if err != nil {
				return nil, err
			}
			if raw, ok := kv["first-entry"].(Reply); ok {
				if info.FirstEntry, err = decodeStreamEntry(raw); err != nil {
					return nil, err
				}
			}
			if raw, ok := kv["last-entry"].(Reply); ok {
				if info.LastEntry, err = decodeStreamEntry(raw); err != nil {
					return nil, err
				}
			}
			return &info, nil
		}
	}
}
