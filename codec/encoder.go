package codec

import (
	"fmt"
	"strings"

	"github.com/benjamin-larsen/bincodec/document"
	"github.com/benjamin-larsen/bincodec/schema"
	"github.com/benjamin-larsen/bincodec/scope"
)

// encodeState is the two-phase serializer's transient per-call
// bookkeeping: it lives only for the duration of one Encode.
type encodeState struct {
	c       *Codec
	buf     []byte
	offsets map[string]uint32 // dotted internal path -> start offset
	sizes   map[string]uint32 // dotted internal path -> byte length
	queue   []queuedCalc
	root    any

	pathStack []string // ancestor segment names, not including the field being written
}

// queuedCalc is one phase-2 job: a calculated field plus the ancestor
// path it was queued under, so a bare scope_start/scope_end field name
// can be resolved relative to the nearest enclosing struct first.
type queuedCalc struct {
	key   string
	field *schema.Field
	frame []string
}

// Encode renders doc as bytes per the schema's field order: phase 1 lays
// out real and placeholder bytes, phase 2 patches every calculated
// field's placeholder in queue order.
func (c *Codec) Encode(doc any) ([]byte, error) {
	st := &encodeState{
		c:       c,
		offsets: make(map[string]uint32),
		sizes:   make(map[string]uint32),
		root:    doc,
	}
	if n, ok := c.schema.FixedSize(); ok {
		st.buf = make([]byte, 0, n)
	}
	scopes := document.Scopes{}.Push(doc)
	if err := st.encodeFields(c.schema.Fields, doc, scopes); err != nil {
		return nil, err
	}
	if err := st.patchAll(); err != nil {
		return nil, err
	}
	return st.buf, nil
}

func (st *encodeState) currentKey(name string) string {
	prefix := strings.Join(st.pathStack, ".")
	if prefix == "" {
		return name
	}
	if strings.HasPrefix(name, "[") {
		return prefix + name
	}
	return prefix + "." + name
}

func (st *encodeState) push(seg string) {
	st.pathStack = append(st.pathStack, seg)
}

func (st *encodeState) pop() {
	st.pathStack = st.pathStack[:len(st.pathStack)-1]
}

func (st *encodeState) encodeFields(fields []*schema.Field, node any, scopes document.Scopes) error {
	m, _ := node.(map[string]any)
	for _, f := range fields {
		var val any
		var present bool
		if m != nil {
			val, present = m[f.Name]
		}
		if err := st.encodeField(f, val, present, scopes); err != nil {
			return err
		}
	}
	return nil
}

func (st *encodeState) encodeField(f *schema.Field, val any, present bool, scopes document.Scopes) error {
	path := st.currentKey(f.Name)

	if f.Condition != nil {
		ok, err := f.Condition.EvalBool(scopes)
		if err != nil {
			return exprErrToEncode(path, err)
		}
		if !ok {
			return nil
		}
	}

	if f.Calc != nil {
		return st.queueCalculated(f, path)
	}

	if !present {
		return &EncodeError{Kind: MissingField, Path: path, Msg: "field not present in document"}
	}

	start := uint32(len(st.buf))
	if err := st.encodeBody(f.Body, val, scopes, path, f.Name); err != nil {
		return err
	}
	st.offsets[path] = start
	st.sizes[path] = uint32(len(st.buf)) - start
	return nil
}

func (st *encodeState) queueCalculated(f *schema.Field, path string) error {
	prim, ok := f.Body.(schema.Primitive)
	if !ok {
		return &EncodeError{Kind: TypeMismatch, Path: path, Msg: "calculated field must be numeric"}
	}
	width := prim.Kind.Width()
	start := uint32(len(st.buf))
	st.buf = append(st.buf, make([]byte, width)...)
	st.offsets[path] = start
	st.sizes[path] = width

	frame := append([]string(nil), st.pathStack...)
	st.queue = append(st.queue, queuedCalc{key: path, field: f, frame: frame})
	return nil
}

// encodeBody dispatches on a field's body kind. pushSeg is the internal
// bookkeeping segment to push onto pathStack while encoding a nested
// container's children (the field's own name for a struct-field body,
// or "[i]" for an array element body) — purely an implementation detail
// for scope field-name resolution, unrelated to the document path rules
// that govern decode output.
func (st *encodeState) encodeBody(body schema.Body, val any, scopes document.Scopes, path, pushSeg string) error {
	switch b := body.(type) {
	case schema.Primitive:
		bs, err := encodePrimitive(st.c.order, b.Kind, val)
		if err != nil {
			return wrapEncodeErr(path, err)
		}
		st.buf = append(st.buf, bs...)
		return nil

	case schema.String:
		return st.encodeString(b, val, path)

	case schema.Array:
		st.push(pushSeg)
		defer st.pop()
		return st.encodeArray(b, val, scopes, path)

	case schema.Struct:
		st.push(pushSeg)
		defer st.pop()
		childScopes := scopes.Push(val)
		return st.encodeFields(b.Fields, val, childScopes)

	case schema.Union:
		st.push(pushSeg)
		defer st.pop()
		return st.encodeUnion(val, b, scopes, path)

	default:
		return &EncodeError{Kind: TypeMismatch, Path: path, Msg: "unsupported field body"}
	}
}

func (st *encodeState) encodeString(b schema.String, val any, path string) error {
	s, _ := val.(string)
	if val != nil {
		if _, ok := val.(string); !ok {
			return &EncodeError{Kind: TypeMismatch, Path: path, Msg: "expected a string value"}
		}
	}
	raw := []byte(s)

	if b.Fixed {
		out := make([]byte, b.Size)
		copy(out, raw)
		st.buf = append(st.buf, out...)
		return nil
	}

	lenBuf := make([]byte, 4)
	st.c.order.PutUint32(lenBuf, uint32(len(raw)))
	st.buf = append(st.buf, lenBuf...)
	st.buf = append(st.buf, raw...)
	return nil
}

func (st *encodeState) encodeArray(a schema.Array, val any, scopes document.Scopes, path string) error {
	var list []any
	if val != nil {
		l, ok := val.([]any)
		if !ok {
			return &EncodeError{Kind: TypeMismatch, Path: path, Msg: "expected a list value"}
		}
		list = l
	}

	var count int
	switch {
	case a.LengthField != nil:
		n, err := a.LengthField.EvalInt(scopes)
		if err != nil {
			return exprErrToEncode(path, err)
		}
		count = int(n)
	case a.Fixed:
		count = a.Size
	case a.Open:
		count = len(list)
	}

	for i := 0; i < count; i++ {
		var elemVal any
		if i < len(list) {
			elemVal = list[i]
		}
		if err := st.encodeElement(a.Element, elemVal, scopes, i); err != nil {
			return err
		}
	}
	return nil
}

func (st *encodeState) encodeElement(ef *schema.Field, val any, scopes document.Scopes, idx int) error {
	seg := fmt.Sprintf("[%d]", idx)
	path := st.currentKey(seg)

	if ef.Condition != nil {
		ok, err := ef.Condition.EvalBool(scopes)
		if err != nil {
			return exprErrToEncode(path, err)
		}
		if !ok {
			return nil
		}
	}

	if ef.Calc != nil {
		st.push(seg)
		err := st.queueCalculated(ef, path)
		st.pop()
		return err
	}

	start := uint32(len(st.buf))
	if err := st.encodeBody(ef.Body, val, scopes, path, seg); err != nil {
		return err
	}
	st.offsets[path] = start
	st.sizes[path] = uint32(len(st.buf)) - start
	return nil
}

func (st *encodeState) encodeUnion(val any, u schema.Union, scopes document.Scopes, path string) error {
	m, _ := val.(map[string]any)
	childScopes := scopes.Push(m)
	discVal, ok := childScopes.Resolve(u.Discriminator)
	if !ok {
		return &UnionError{Kind: MissingDiscriminator, Path: path}
	}
	key := stringifyDiscriminator(discVal)
	fields, ok := u.Variants[key]
	if !ok {
		return &UnionError{Kind: UnknownVariant, Path: path, Value: key}
	}
	return st.encodeFields(fields, m, childScopes)
}

// --- phase 2: patch ---

func (st *encodeState) patchAll() error {
	finalLen := uint32(len(st.buf))
	for _, job := range st.queue {
		if err := st.patch(job, finalLen); err != nil {
			return err
		}
	}
	return nil
}

func (st *encodeState) patch(job queuedCalc, finalLen uint32) error {
	calc := job.field.Calc
	ownStart := st.offsets[job.key]
	ownSize := st.sizes[job.key]

	var bufLen uint32
	switch calc.Scope.Kind {
	case scope.EntireFile:
		bufLen = finalLen
	case scope.AllPrevious, scope.FromField, scope.AfterField, scope.LastNBytes:
		bufLen = ownStart
	}

	fields := st.scopeFields(job.frame, calc.Scope.StartField, calc.Scope.EndField)
	start, end, err := calc.Scope.Resolve(fields, bufLen)
	if err != nil {
		return fmt.Errorf("calculated field %q: %w", job.key, err)
	}
	if end > uint32(len(st.buf)) {
		end = uint32(len(st.buf))
	}
	if start > end {
		start = end
	}
	slice := st.buf[start:end]

	params := make(map[string]any, len(calc.Params)+1)
	for k, v := range calc.Params {
		params[k] = v
	}
	params["_field_size"] = int64(ownSize)

	value, err := st.c.funcs.Call(calc.Function, slice, st.root, params)
	if err != nil {
		return fmt.Errorf("calculated field %q: %w", job.key, err)
	}

	prim := job.field.Body.(schema.Primitive)
	putPrimitive(st.buf[ownStart:ownStart+ownSize], st.c.order, prim.Kind, value)
	return nil
}

// resolveFrame finds the nearest enclosing occurrence of a bare field
// name, searching from the full ancestor frame outward to the root —
// the same inside-out convention document.Scopes.Resolve uses for
// expressions.
func (st *encodeState) resolveFrame(frame []string, name string) (off, sz uint32, ok bool) {
	if name == "" {
		return 0, 0, false
	}
	for i := len(frame); i >= 0; i-- {
		var key string
		if i == 0 {
			key = name
		} else {
			key = strings.Join(frame[:i], ".") + "." + name
		}
		if o, found := st.offsets[key]; found {
			return o, st.sizes[key], true
		}
	}
	return 0, 0, false
}

func (st *encodeState) scopeFields(frame []string, names ...string) scope.Fields {
	f := scope.Fields{Offsets: map[string]uint32{}, Sizes: map[string]uint32{}}
	for _, n := range names {
		if n == "" {
			continue
		}
		if o, s, ok := st.resolveFrame(frame, n); ok {
			f.Offsets[n] = o
			f.Sizes[n] = s
		}
	}
	return f
}

func exprErrToEncode(path string, err error) error {
	return &EncodeError{Kind: TypeMismatch, Path: path, Msg: err.Error()}
}
