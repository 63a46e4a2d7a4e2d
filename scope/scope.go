// Package scope resolves a calculated field's symbolic byte range into
// a concrete [start, end) slice of the phase-1 encode buffer.
package scope

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is one of the named scopes a calculated field can declare.
// Unrecognized names are a parse-time SchemaError, not a runtime
// surprise.
type Kind int

const (
	AllPrevious Kind = iota
	EntireFile
	FieldRange
	FromField
	ToField
	AfterField
	LastNBytes
	SpecificBytes
)

var names = map[string]Kind{
	"all_previous":   AllPrevious,
	"from_start":     AllPrevious,
	"entire_file":    EntireFile,
	"field_range":    FieldRange,
	"from_field":     FromField,
	"to_field":       ToField,
	"after_field":    AfterField,
	"last_n_bytes":   LastNBytes,
	"specific_bytes": SpecificBytes,
}

// ParseKind maps a schema-level scope name to its Kind.
func ParseKind(name string) (Kind, bool) {
	k, ok := names[name]
	return k, ok
}

// Spec is the parsed, schema-time representation of a scope descriptor.
// Exactly the fields relevant to Kind are populated; the rest are zero.
type Spec struct {
	Kind       Kind
	StartField string // field_range/from_field/after_field: scope_start
	EndField   string // field_range/to_field: scope_end
	N          int64  // last_n_bytes: scope_start parsed as an integer
	RangeLo    int    // specific_bytes "a:b" or "i"
	RangeHi    int
	HasHi      bool
}

// Fields holds the offset/size bookkeeping needed to
// resolve a Spec. Offsets and Sizes are keyed by field name.
type Fields struct {
	Offsets map[string]uint32
	Sizes   map[string]uint32
}

// Resolve turns spec into a concrete [start, end) byte range over a
// buffer whose length-so-far is bufLen (the calculated field's own
// phase-1 offset — for entire_file this is the full phase-1 buffer
// length).
func (s Spec) Resolve(f Fields, bufLen uint32) (start, end uint32, err error) {
	switch s.Kind {
	case AllPrevious:
		return 0, bufLen, nil

	case EntireFile:
		return 0, bufLen, nil

	case FieldRange:
		so, eo, err := f.boundsFor(s.StartField, s.EndField)
		if err != nil {
			return 0, 0, err
		}
		return so, eo, nil

	case FromField:
		off, ok := f.Offsets[s.StartField]
		if !ok {
			return 0, 0, missingField("scope_start", s.StartField)
		}
		return off, bufLen, nil

	case ToField:
		off, sz, ok := f.get(s.EndField)
		if !ok {
			return 0, 0, missingField("scope_end", s.EndField)
		}
		return 0, off + sz, nil

	case AfterField:
		off, sz, ok := f.get(s.StartField)
		if !ok {
			return 0, 0, missingField("scope_start", s.StartField)
		}
		return off + sz, bufLen, nil

	case LastNBytes:
		if s.N < 0 {
			return 0, 0, badRange(fmt.Sprintf("last_n_bytes: negative N %d", s.N))
		}
		n := uint32(s.N)
		if n > bufLen {
			return 0, bufLen, nil
		}
		return bufLen - n, bufLen, nil

	case SpecificBytes:
		if !s.HasHi {
			return uint32(s.RangeLo), uint32(s.RangeLo + 1), nil
		}
		if s.RangeHi < s.RangeLo {
			return 0, 0, badRange(fmt.Sprintf("specific_bytes: %d:%d", s.RangeLo, s.RangeHi))
		}
		return uint32(s.RangeLo), uint32(s.RangeHi), nil

	default:
		return 0, 0, &Error{Kind: UnknownScope, Msg: "unrecognized scope kind"}
	}
}

func (f Fields) get(name string) (off, sz uint32, ok bool) {
	off, ok = f.Offsets[name]
	if !ok {
		return 0, 0, false
	}
	sz = f.Sizes[name]
	return off, sz, true
}

func (f Fields) boundsFor(startName, endName string) (uint32, uint32, error) {
	so, ok := f.Offsets[startName]
	if !ok {
		return 0, 0, missingField("scope_start", startName)
	}
	eo, esz, ok := f.get(endName)
	if !ok {
		return 0, 0, missingField("scope_end", endName)
	}
	return so, eo + esz, nil
}

// ParseSpecificBytes parses the "a:b" or "i" textual form used for a
// specific_bytes scope.
func ParseSpecificBytes(raw string) (Spec, error) {
	raw = strings.TrimSpace(raw)
	if idx := strings.IndexByte(raw, ':'); idx >= 0 {
		lo, err := strconv.Atoi(strings.TrimSpace(raw[:idx]))
		if err != nil {
			return Spec{}, badRange("bad specific_bytes range " + raw)
		}
		hi, err := strconv.Atoi(strings.TrimSpace(raw[idx+1:]))
		if err != nil {
			return Spec{}, badRange("bad specific_bytes range " + raw)
		}
		return Spec{Kind: SpecificBytes, RangeLo: lo, RangeHi: hi, HasHi: true}, nil
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return Spec{}, badRange("bad specific_bytes index " + raw)
	}
	return Spec{Kind: SpecificBytes, RangeLo: i}, nil
}
