// Package schema implements the typed field-descriptor tree that a
// binary layout is built from, and the parser that constructs one from a
// raw (JSON/YAML-shaped) schema document.
package schema

import (
	"github.com/benjamin-larsen/bincodec/document"
	"github.com/benjamin-larsen/bincodec/expr"
	"github.com/benjamin-larsen/bincodec/scope"
)

// Endianness selects the byte order a Schema's primitives encode/decode with.
type Endianness int

const (
	Little Endianness = iota
	Big
)

// PrimitiveKind enumerates primitive types.
type PrimitiveKind int

const (
	Int8 PrimitiveKind = iota
	Int16
	Int24
	Int32
	Int64
	Uint8
	Uint16
	Uint24
	Uint32
	Uint64
	Float32
	Float64
	Char
)

// Width returns the primitive's fixed byte width on the wire.
func (k PrimitiveKind) Width() uint32 {
	switch k {
	case Int8, Uint8, Char:
		return 1
	case Int16, Uint16:
		return 2
	case Int24, Uint24:
		return 3
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// Signed reports whether k is a signed integer kind.
func (k PrimitiveKind) Signed() bool {
	switch k {
	case Int8, Int16, Int24, Int32, Int64:
		return true
	default:
		return false
	}
}

// Float reports whether k is a floating-point kind.
func (k PrimitiveKind) Float() bool {
	return k == Float32 || k == Float64
}

// Body is the tagged-union payload of a Field: exactly one of the
// concrete types below, each carrying only the attributes relevant to
// its own kind, rather than one flat struct with unused fields.
type Body interface{ bodyTag() }

// Primitive is a fixed-width numeric/char field.
type Primitive struct {
	Kind PrimitiveKind
}

func (Primitive) bodyTag() {}

// String is a fixed or variable-length text field.
type String struct {
	Size     int // meaningful only when Fixed
	Fixed    bool
	Encoding string
}

func (String) bodyTag() {}

// Array is a fixed, length-field-driven, or open-ended element sequence.
type Array struct {
	Element     *Field
	Size        int        // >=0 when Fixed; negative sentinel when Open
	Fixed       bool       // Size is authoritative element count
	Open        bool       // decode until EOF, no prefix on encode
	LengthField *expr.Expr // element count comes from this expression
}

func (Array) bodyTag() {}

// Struct is an ordered sequence of child fields.
type Struct struct {
	Fields []*Field
}

func (Struct) bodyTag() {}

// Union is a discriminated union: the discriminator's stringified value
// selects one variant field list, treated as an anonymous inline struct
// at the union's position.
type Union struct {
	Discriminator document.Path
	Variants      map[string][]*Field
	VariantOrder  []string // variant keys, collected by ranging over a map: the order is not defined and does not follow the schema's declaration order
}

func (Union) bodyTag() {}

// Calculated marks a numeric Field as phase-2 patched: it pairs with a
// Primitive body, where wire width still comes from the primitive kind
// but the value is computed, not read from the document, on encode.
type Calculated struct {
	Function string
	Params   map[string]any
	Scope    scope.Spec
}

// Field is one node of the parsed schema tree.
type Field struct {
	Name      string
	Body      Body
	Condition *expr.Expr
	Calc      *Calculated // non-nil for calculated fields; Body is Primitive
}

// IsElementSentinel reports whether this field is an array's virtual
// element descriptor (name "#"), excluded from document paths.
func (f *Field) IsElementSentinel() bool { return f.Name == "#" }

// Schema is the parsed root: an ordered field list plus endianness.
type Schema struct {
	Endianness  Endianness
	Description string
	Version     string
	Fields      []*Field
}
