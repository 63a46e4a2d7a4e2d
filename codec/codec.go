package codec

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/benjamin-larsen/bincodec/function"
	"github.com/benjamin-larsen/bincodec/schema"
)

// Codec is the facade: a schema bound to a byte order and a function
// registry, exposing Encode and Decode (with DecodeFile as the form of
// Decode that reads its input from a path). It is immutable after
// New returns and safe for concurrent use — an encode or decode call
// only touches its own transient bookkeeping.
type Codec struct {
	schema *schema.Schema
	order  binary.ByteOrder
	funcs  *function.Registry
}

// Option customizes Codec construction.
type Option func(*Codec)

// WithRegistry swaps in a function.Registry with additional or replaced
// calculated-field functions.
func WithRegistry(r *function.Registry) Option {
	return func(c *Codec) { c.funcs = r }
}

// New builds a Codec from an already-parsed schema.
func New(s *schema.Schema, opts ...Option) (*Codec, error) {
	c := &Codec{schema: s, funcs: function.NewRegistry()}
	if s.Endianness == schema.Big {
		c.order = binary.BigEndian
	} else {
		c.order = binary.LittleEndian
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromSource accepts the schema as a mapping, raw YAML/JSON bytes, a
// filesystem path (a string is always a path), or an io.Reader — any form
// schema.Load understands.
func NewFromSource(src any, opts ...Option) (*Codec, error) {
	s, err := schema.Load(src)
	if err != nil {
		return nil, err
	}
	return New(s, opts...)
}

// Schema returns the schema this codec was constructed from.
func (c *Codec) Schema() *schema.Schema { return c.schema }

// DecodeFile reads path and decodes it the same way Decode does,
// closing the file on every exit path.
func (c *Codec) DecodeFile(path string) (any, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return c.Decode(data)
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
