package schema

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/benjamin-larsen/bincodec/document"
	"github.com/benjamin-larsen/bincodec/expr"
	"github.com/benjamin-larsen/bincodec/scope"
)

// Parse converts raw schema bytes (YAML, or JSON — yaml.v3 accepts JSON as
// a YAML subset) into a typed *Schema. It is a total function for
// syntactically valid schemas and fails with *Error otherwise.
func Parse(data []byte) (*Schema, error) {
	var raw rawSchema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errContradiction("", "invalid schema document: "+err.Error())
	}
	return fromRaw(raw)
}

// ParseMap converts an already-decoded mapping (e.g. built by a caller's
// own JSON loader) the same way Parse does, by round-tripping it through
// the YAML encoder.
func ParseMap(m map[string]any) (*Schema, error) {
	buf, err := yaml.Marshal(m)
	if err != nil {
		return nil, errContradiction("", "invalid schema mapping: "+err.Error())
	}
	return Parse(buf)
}

func fromRaw(raw rawSchema) (*Schema, error) {
	s := &Schema{
		Description: raw.Description,
		Version:     raw.Version,
	}

	switch strings.ToLower(raw.Endianness) {
	case "", "little":
		s.Endianness = Little
	case "big":
		s.Endianness = Big
	default:
		return nil, errUnknownType("endianness", "must be \"little\" or \"big\", got "+raw.Endianness)
	}

	fields, err := convertFields(raw.Fields, "")
	if err != nil {
		return nil, err
	}
	s.Fields = fields

	if err := validateSiblingNames(fields, ""); err != nil {
		return nil, err
	}

	return s, nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func convertFields(raws []rawField, parentPath string) ([]*Field, error) {
	out := make([]*Field, 0, len(raws))
	for _, rf := range raws {
		f, err := convertField(rf, parentPath)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func validateSiblingNames(fields []*Field, path string) error {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f.Name == "#" {
			continue
		}
		if f.Name == "" {
			return errMissing(path, "field has no name")
		}
		if seen[f.Name] {
			return errContradiction(joinPath(path, f.Name), "duplicate sibling field name")
		}
		seen[f.Name] = true

		if arr, ok := f.Body.(Array); ok && arr.Open && i != len(fields)-1 {
			return errContradiction(joinPath(path, f.Name), "open-ended array must be the last field in its struct")
		}

		switch body := f.Body.(type) {
		case Struct:
			if err := validateSiblingNames(body.Fields, joinPath(path, f.Name)); err != nil {
				return err
			}
		case Array:
			if s, ok := body.Element.Body.(Struct); ok {
				if err := validateSiblingNames(s.Fields, joinPath(path, f.Name)); err != nil {
					return err
				}
			}
		case Union:
			for variant, fs := range body.Variants {
				if err := validateSiblingNames(fs, joinPath(path, f.Name)+"#"+variant); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func convertField(rf rawField, parentPath string) (*Field, error) {
	path := joinPath(parentPath, rf.Name)
	if rf.Name == "" {
		path = parentPath
	}

	f := &Field{Name: rf.Name}

	if rf.Condition != "" {
		c, err := expr.Compile(rf.Condition)
		if err != nil {
			return nil, errContradiction(path, "bad condition expression: "+err.Error())
		}
		f.Condition = c
	}

	body, err := convertBody(rf, path)
	if err != nil {
		return nil, err
	}
	f.Body = body

	if rf.Function != "" {
		prim, ok := body.(Primitive)
		if !ok {
			return nil, errContradiction(path, "function is only valid on a numeric field")
		}
		calc, err := convertCalculated(rf, path, prim)
		if err != nil {
			return nil, err
		}
		f.Calc = calc
	}

	return f, nil
}

func convertBody(rf rawField, path string) (Body, error) {
	switch strings.ToLower(rf.Type) {
	case "int8":
		return Primitive{Kind: Int8}, nil
	case "int16":
		return Primitive{Kind: Int16}, nil
	case "int24":
		return Primitive{Kind: Int24}, nil
	case "int32":
		return Primitive{Kind: Int32}, nil
	case "int64":
		return Primitive{Kind: Int64}, nil
	case "uint8":
		return Primitive{Kind: Uint8}, nil
	case "uint16":
		return Primitive{Kind: Uint16}, nil
	case "uint24":
		return Primitive{Kind: Uint24}, nil
	case "uint32":
		return Primitive{Kind: Uint32}, nil
	case "uint64":
		return Primitive{Kind: Uint64}, nil
	case "float32":
		return Primitive{Kind: Float32}, nil
	case "float64":
		return Primitive{Kind: Float64}, nil
	case "char":
		return Primitive{Kind: Char}, nil
	case "string":
		return convertString(rf, path)
	case "array":
		return convertArray(rf, path)
	case "struct":
		return convertStruct(rf, path)
	case "union":
		return convertUnion(rf, path)
	case "":
		return nil, errMissing(path, "field has no type")
	default:
		return nil, errUnknownType(path, "unknown type "+rf.Type)
	}
}

func convertString(rf rawField, path string) (Body, error) {
	enc := rf.Encoding
	if enc == "" {
		enc = "utf-8"
	}
	if rf.Size != nil {
		if *rf.Size < 0 {
			return nil, errContradiction(path, "string size must be >= 0")
		}
		return String{Size: *rf.Size, Fixed: true, Encoding: enc}, nil
	}
	return String{Fixed: false, Encoding: enc}, nil
}

func convertArray(rf rawField, path string) (Body, error) {
	if rf.ElementType == "" {
		return nil, errMissing(path, "array requires element_type")
	}
	if rf.Size != nil && rf.LengthField != "" {
		return nil, errContradiction(path, "array must not set both size and length_field")
	}

	elemRaw := rf.asElement()
	elem, err := convertField(elemRaw, path)
	if err != nil {
		return nil, err
	}

	arr := Array{Element: elem}

	switch {
	case rf.LengthField != "":
		e, err := expr.Compile(rf.LengthField)
		if err != nil {
			return nil, errContradiction(path, "bad length_field expression: "+err.Error())
		}
		arr.LengthField = e
	case rf.Size != nil && *rf.Size < 0:
		arr.Open = true
		arr.Size = *rf.Size
	case rf.Size != nil:
		arr.Fixed = true
		arr.Size = *rf.Size
	default:
		return nil, errMissing(path, "array requires one of size or length_field")
	}

	return arr, nil
}

func convertStruct(rf rawField, path string) (Body, error) {
	fields, err := convertFields(rf.Fields, path)
	if err != nil {
		return nil, err
	}
	return Struct{Fields: fields}, nil
}

func convertUnion(rf rawField, path string) (Body, error) {
	if rf.DiscriminatorField == "" {
		return nil, errInvalidUnion(path, "union requires discriminator_field")
	}
	if len(rf.UnionVariants) == 0 {
		return nil, errInvalidUnion(path, "union requires a non-empty union_variants")
	}
	discPath, err := document.ParsePath(rf.DiscriminatorField)
	if err != nil {
		return nil, errInvalidUnion(path, "bad discriminator_field: "+err.Error())
	}

	variants := make(map[string][]*Field, len(rf.UnionVariants))
	order := make([]string, 0, len(rf.UnionVariants))
	for key, fs := range rf.UnionVariants {
		converted, err := convertFields(fs, path+"#"+key)
		if err != nil {
			return nil, err
		}
		if len(converted) == 0 {
			return nil, errInvalidUnion(path, "variant "+key+" has no fields")
		}
		if _, ok := converted[0].Body.(Primitive); !ok {
			return nil, errInvalidUnion(path, "variant "+key+" must begin with a primitive discriminator tag")
		}
		variants[key] = converted
		order = append(order, key)
	}

	return Union{Discriminator: discPath, Variants: variants, VariantOrder: order}, nil
}

func convertCalculated(rf rawField, path string, prim Primitive) (*Calculated, error) {
	params := make(map[string]any, len(rf.FunctionParameters))
	for k, v := range rf.FunctionParameters {
		params[k] = v
	}

	scopeName := rf.FunctionScope
	startField := rf.FunctionScopeStart
	endField := rf.FunctionScopeEnd

	// Compatibility rule: function_scope* keys inside
	// function_parameters override the descriptor-level attributes.
	if v, ok := popString(params, "function_scope"); ok {
		scopeName = v
	}
	if v, ok := popString(params, "function_scope_start"); ok {
		startField = v
	}
	if v, ok := popString(params, "function_scope_end"); ok {
		endField = v
	}

	if scopeName == "" {
		return nil, errMissing(path, "calculated field requires function_scope")
	}

	kind, ok := scope.ParseKind(scopeName)
	if !ok {
		return nil, errUnknownType(path, "unknown scope "+scopeName)
	}

	spec := scope.Spec{Kind: kind, StartField: startField, EndField: endField}

	switch kind {
	case scope.FieldRange:
		if startField == "" || endField == "" {
			return nil, errMissing(path, "field_range requires function_scope_start and function_scope_end")
		}
	case scope.FromField, scope.AfterField:
		if startField == "" {
			return nil, errMissing(path, "scope requires function_scope_start")
		}
	case scope.ToField:
		if endField == "" {
			return nil, errMissing(path, "scope requires function_scope_end")
		}
	case scope.LastNBytes:
		n, err := strconv.ParseInt(startField, 10, 64)
		if err != nil {
			return nil, errContradiction(path, "last_n_bytes requires an integer function_scope_start")
		}
		spec.N = n
	case scope.SpecificBytes:
		parsed, err := scope.ParseSpecificBytes(startField)
		if err != nil {
			return nil, errContradiction(path, err.Error())
		}
		spec = parsed
	}

	_ = prim // width comes from the Primitive body at encode time

	return &Calculated{Function: rf.Function, Params: params, Scope: spec}, nil
}

func popString(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	delete(m, key)
	s, ok := v.(string)
	return s, ok
}
