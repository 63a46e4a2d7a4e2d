package codec

import (
	"errors"
	"log"
	"strings"

	"github.com/benjamin-larsen/bincodec/document"
	"github.com/benjamin-larsen/bincodec/schema"
)

// decodeState walks a byte buffer left to right, materializing a
// document built at a running path.
type decodeState struct {
	c   *Codec
	buf []byte
	pos uint32
}

// Decode reads data against the schema, producing the same document
// shape Encode accepts.
func (c *Codec) Decode(data []byte) (any, error) {
	st := &decodeState{c: c, buf: data}
	root := map[string]any{}
	scopes := document.Scopes{}.Push(root)
	if err := st.decodeFields(c.schema.Fields, root, scopes); err != nil {
		return nil, err
	}
	return root, nil
}

func (st *decodeState) read(n uint32, path string) ([]byte, error) {
	if st.pos+n > uint32(len(st.buf)) {
		return nil, &DecodeError{Kind: UnexpectedEnd, Path: path, Msg: "not enough bytes remaining"}
	}
	b := st.buf[st.pos : st.pos+n]
	st.pos += n
	return b, nil
}

func (st *decodeState) decodeFields(fields []*schema.Field, out map[string]any, scopes document.Scopes) error {
	for _, f := range fields {
		val, ok, err := st.decodeField(f, scopes)
		if err != nil {
			return err
		}
		if ok {
			out[f.Name] = val
		}
	}
	return nil
}

func (st *decodeState) decodeField(f *schema.Field, scopes document.Scopes) (any, bool, error) {
	if f.Condition != nil {
		ok, err := f.Condition.EvalBool(scopes)
		if err != nil {
			return nil, false, exprErrToDecode(f.Name, err)
		}
		if !ok {
			return nil, false, nil
		}
	}
	val, err := st.decodeBody(f, f.Name, scopes)
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (st *decodeState) decodeBody(f *schema.Field, path string, scopes document.Scopes) (any, error) {
	switch b := f.Body.(type) {
	case schema.Primitive:
		bs, err := st.read(b.Kind.Width(), path)
		if err != nil {
			return nil, err
		}
		return decodePrimitive(st.c.order, b.Kind, bs), nil

	case schema.String:
		return st.decodeString(b, path)

	case schema.Array:
		return st.decodeArray(f, b, scopes)

	case schema.Struct:
		return st.decodeStruct(b, scopes)

	case schema.Union:
		return st.decodeUnion(path, b, scopes)

	default:
		return nil, &DecodeError{Kind: BadEncoding, Path: path, Msg: "unsupported field body"}
	}
}

func (st *decodeState) decodeString(b schema.String, path string) (string, error) {
	if b.Fixed {
		bs, err := st.read(uint32(b.Size), path)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(bs), "\x00"), nil
	}

	lenBytes, err := st.read(4, path)
	if err != nil {
		return "", err
	}
	n := st.c.order.Uint32(lenBytes)
	bs, err := st.read(n, path)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

func (st *decodeState) decodeArray(f *schema.Field, a schema.Array, scopes document.Scopes) ([]any, error) {
	out := []any{}

	if a.Open {
		for {
			val, ok, err := st.decodeElement(a.Element, scopes)
			if err != nil {
				if isUnexpectedEnd(err) {
					log.Printf("codec: open array %q: end of buffer after %d elements", f.Name, len(out))
					break
				}
				return nil, err
			}
			if ok {
				out = append(out, val)
			}
		}
		return out, nil
	}

	var count int
	if a.LengthField != nil {
		n, err := a.LengthField.EvalInt(scopes)
		if err != nil {
			return nil, exprErrToDecode(f.Name, err)
		}
		count = int(n)
	} else {
		count = a.Size
	}

	for i := 0; i < count; i++ {
		val, ok, err := st.decodeElement(a.Element, scopes)
		if err != nil {
			return nil, err
		}
		if !ok {
			val = nil
		}
		out = append(out, val)
	}
	return out, nil
}

func (st *decodeState) decodeElement(ef *schema.Field, scopes document.Scopes) (any, bool, error) {
	if ef.Condition != nil {
		ok, err := ef.Condition.EvalBool(scopes)
		if err != nil {
			return nil, false, exprErrToDecode("#", err)
		}
		if !ok {
			return nil, false, nil
		}
	}
	val, err := st.decodeBody(ef, "#", scopes)
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (st *decodeState) decodeStruct(b schema.Struct, scopes document.Scopes) (map[string]any, error) {
	out := map[string]any{}
	childScopes := scopes.Push(out)
	if err := st.decodeFields(b.Fields, out, childScopes); err != nil {
		return nil, err
	}
	return out, nil
}

func (st *decodeState) decodeUnion(path string, u schema.Union, scopes document.Scopes) (map[string]any, error) {
	if len(u.VariantOrder) == 0 {
		return nil, &UnionError{Kind: UnknownVariant, Path: path}
	}
	tagField := u.Variants[u.VariantOrder[0]][0]
	prim := tagField.Body.(schema.Primitive)
	width := prim.Kind.Width()

	peeked, err := st.read(width, path)
	if err != nil {
		return nil, err
	}
	st.pos -= width // rewind

	tagVal := decodePrimitive(st.c.order, prim.Kind, peeked)
	key := stringifyDiscriminator(tagVal)

	fields, ok := u.Variants[key]
	if !ok {
		return nil, &UnionError{Kind: UnknownVariant, Path: path, Value: key}
	}

	out := map[string]any{}
	childScopes := scopes.Push(out)
	if err := st.decodeFields(fields, out, childScopes); err != nil {
		return nil, err
	}
	return out, nil
}

func isUnexpectedEnd(err error) bool {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind == UnexpectedEnd
	}
	return false
}

func exprErrToDecode(path string, err error) error {
	return &DecodeError{Kind: BadEncoding, Path: path, Msg: err.Error()}
}
