package schema

// FixedSize estimates the schema's encoded size when every field is
// statically sized, for callers that want to preallocate a buffer.
// It returns false if any field's size depends on the document (variable
// strings, length_field/open arrays, unions, conditions).
func (s *Schema) FixedSize() (uint32, bool) {
	return fixedSizeOfFields(s.Fields)
}

func fixedSizeOfFields(fields []*Field) (uint32, bool) {
	var total uint32
	for _, f := range fields {
		n, ok := f.FixedSize()
		if !ok {
			return 0, false
		}
		total += n
	}
	return total, true
}

// FixedSize reports a single field's statically-known wire width.
func (f *Field) FixedSize() (uint32, bool) {
	if f.Condition != nil {
		return 0, false
	}
	switch body := f.Body.(type) {
	case Primitive:
		return body.Kind.Width(), true
	case String:
		if !body.Fixed {
			return 0, false
		}
		return uint32(body.Size), true
	case Array:
		if !body.Fixed {
			return 0, false
		}
		elemSize, ok := body.Element.FixedSize()
		if !ok {
			return 0, false
		}
		return elemSize * uint32(body.Size), true
	case Struct:
		return fixedSizeOfFields(body.Fields)
	case Union:
		return 0, false
	default:
		return 0, false
	}
}

// lookup finds an immediate child field by name (struct fields, or a
// union variant's fields); it does not search nested structs.
func lookup(fields []*Field, name string) (*Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
