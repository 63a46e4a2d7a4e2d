// Package codec implements the two-phase serializer, the symmetric
// deserializer, the union resolver, and the codec facade that ties
// schema, expr, scope and function together.
package codec

import "fmt"

// EncodeErrorKind classifies the ways Encode can fail.
type EncodeErrorKind int

const (
	MissingField EncodeErrorKind = iota
	TypeMismatch
	OutOfRange
)

func (k EncodeErrorKind) String() string {
	switch k {
	case MissingField:
		return "MissingField"
	case TypeMismatch:
		return "TypeMismatch"
	case OutOfRange:
		return "OutOfRange"
	default:
		return "Unknown"
	}
}

// EncodeError is raised by Codec.Encode, naming the offending field path.
type EncodeError struct {
	Kind EncodeErrorKind
	Path string
	Msg  string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode: %s at %q: %s", e.Kind, e.Path, e.Msg)
}

func errTypeMismatch(msg string) *EncodeError { return &EncodeError{Kind: TypeMismatch, Msg: msg} }
func errOutOfRange(msg string) *EncodeError   { return &EncodeError{Kind: OutOfRange, Msg: msg} }

// wrapEncodeErr attaches path to err if err is a bare *EncodeError missing
// one (e.g. from encodePrimitive, which doesn't know its field's path).
func wrapEncodeErr(path string, err error) error {
	if ee, ok := err.(*EncodeError); ok {
		if ee.Path == "" {
			ee.Path = path
		}
		return ee
	}
	return &EncodeError{Kind: TypeMismatch, Path: path, Msg: err.Error()}
}

// DecodeErrorKind classifies the ways Decode can fail.
type DecodeErrorKind int

const (
	UnexpectedEnd DecodeErrorKind = iota
	BadEncoding
)

func (k DecodeErrorKind) String() string {
	if k == UnexpectedEnd {
		return "UnexpectedEnd"
	}
	return "BadEncoding"
}

// DecodeError is raised by Codec.Decode, naming the offending field path.
type DecodeError struct {
	Kind DecodeErrorKind
	Path string
	Msg  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %s at %q: %s", e.Kind, e.Path, e.Msg)
}

// UnionErrorKind classifies the ways union resolution can fail.
type UnionErrorKind int

const (
	UnknownVariant UnionErrorKind = iota
	MissingDiscriminator
)

func (k UnionErrorKind) String() string {
	if k == UnknownVariant {
		return "UnknownVariant"
	}
	return "MissingDiscriminator"
}

// UnionError is raised while encoding/decoding a discriminated union.
type UnionError struct {
	Kind  UnionErrorKind
	Path  string
	Value string
}

func (e *UnionError) Error() string {
	if e.Kind == MissingDiscriminator {
		return fmt.Sprintf("union: missing discriminator at %q", e.Path)
	}
	return fmt.Sprintf("union: unknown variant %q at %q", e.Value, e.Path)
}
