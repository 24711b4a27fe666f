package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"vectorlog/internal/clock"
	"vectorlog/internal/vlog"
)

// ErrDecode matches every *DecodeError through errors.Is.
var ErrDecode = errors.New("decode failed")

// DecodeError reports a payload that is not valid JSON, does not match the
// schema, or holds values a clock or entry cannot carry.
type DecodeError struct {
	What string // "clock", "entry", "value" or "log"
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDecode) true for any DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// Kind is the tag of an encoded value.
type Kind string

const (
	KindClock Kind = "clock"
	KindEntry Kind = "entry"
)

// Value is one of ClockValue or EntryValue.
type Value interface {
	Kind() Kind
	isValue()
}

// ClockValue wraps a vector clock.
type ClockValue struct {
	Clock clock.VectorClock
}

func (ClockValue) Kind() Kind { return KindClock }
func (ClockValue) isValue()   {}

// EntryValue wraps a log entry.
type EntryValue struct {
	Entry vlog.Entry
}

func (EntryValue) Kind() Kind { return KindEntry }
func (EntryValue) isValue()   {}

type clockWire struct {
	Type  Kind              `json:"type"`
	Clock clock.VectorClock `json:"clock"`
}

type entryWire struct {
	Type    Kind              `json:"type"`
	Clock   clock.VectorClock `json:"clock"`
	Content string            `json:"content"`
	Writer  *string           `json:"writer"`
}

func toEntryWire(e vlog.Entry) entryWire {
	w := entryWire{Type: KindEntry, Clock: e.Clock, Content: e.Content}
	if !e.IsRoot() {
		writer := e.Writer
		w.Writer = &writer
	}
	return w
}

func (w entryWire) entry() vlog.Entry {
	e := vlog.Entry{Clock: w.Clock, Content: w.Content}
	if w.Writer != nil {
		e.Writer = *w.Writer
	}
	return e
}

// Encode serializes a tagged value.
func Encode(v Value) ([]byte, error) {
	switch val := v.(type) {
	case ClockValue:
		return EncodeClock(val.Clock)
	case EntryValue:
		return EncodeEntry(val.Entry)
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

// EncodeClock serializes a clock envelope.
func EncodeClock(c clock.VectorClock) ([]byte, error) {
	return json.Marshal(clockWire{Type: KindClock, Clock: c})
}

// EncodeEntry serializes an entry envelope. A root entry has a null writer.
func EncodeEntry(e vlog.Entry) ([]byte, error) {
	return json.Marshal(toEntryWire(e))
}

// EncodeLog serializes entries as a JSON array in append order.
func EncodeLog(entries []vlog.Entry) ([]byte, error) {
	wires := make([]entryWire, len(entries))
	for i, e := range entries {
		wires[i] = toEntryWire(e)
	}
	return json.MarshalIndent(wires, "", "  ")
}

// Decode parses any tagged value.
func Decode(data []byte) (Value, error) {
	if err := validate(envelopeValidator, data); err != nil {
		return nil, &DecodeError{What: "value", Err: err}
	}

	var tag struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, &DecodeError{What: "value", Err: err}
	}

	switch tag.Type {
	case KindClock:
		var w clockWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, &DecodeError{What: "clock", Err: err}
		}
		return ClockValue{Clock: w.Clock}, nil
	case KindEntry:
		var w entryWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, &DecodeError{What: "entry", Err: err}
		}
		return EntryValue{Entry: w.entry()}, nil
	default:
		return nil, &DecodeError{What: "value", Err: fmt.Errorf("unknown type %q", tag.Type)}
	}
}

// DecodeClock parses a clock envelope.
func DecodeClock(data []byte) (clock.VectorClock, error) {
	v, err := Decode(data)
	if err != nil {
		return clock.VectorClock{}, err
	}
	cv, ok := v.(ClockValue)
	if !ok {
		return clock.VectorClock{}, &DecodeError{What: "clock", Err: fmt.Errorf("got %s", v.Kind())}
	}
	return cv.Clock, nil
}

// DecodeEntry parses an entry envelope.
func DecodeEntry(data []byte) (vlog.Entry, error) {
	v, err := Decode(data)
	if err != nil {
		return vlog.Entry{}, err
	}
	ev, ok := v.(EntryValue)
	if !ok {
		return vlog.Entry{}, &DecodeError{What: "entry", Err: fmt.Errorf("got %s", v.Kind())}
	}
	return ev.Entry, nil
}

// DecodeLog parses a JSON array of entry envelopes.
func DecodeLog(data []byte) ([]vlog.Entry, error) {
	if err := validate(logValidator, data); err != nil {
		return nil, &DecodeError{What: "log", Err: err}
	}

	var wires []entryWire
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, &DecodeError{What: "log", Err: err}
	}

	entries := make([]vlog.Entry, len(wires))
	for i, w := range wires {
		entries[i] = w.entry()
	}
	return entries, nil
}

// validate checks raw JSON against a compiled schema.
func validate(schema *jsonschema.Schema, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON: trailing data")
	}
	return schema.Validate(doc)
}
