package schema

// rawSchema and rawField mirror the JSON/YAML-shaped schema document as
// written by hand. They're the direct unmarshal target; Parse converts
// them into the typed Field/Schema tree in types.go, rejecting anything
// the raw shape allows but the typed model doesn't.
type rawSchema struct {
	Endianness  string     `yaml:"endianness"`
	Description string     `yaml:"description"`
	Version     string     `yaml:"version"`
	Fields      []rawField `yaml:"fields"`
}

type rawField struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Size      *int   `yaml:"size"`
	Encoding  string `yaml:"encoding"`

	LengthField string `yaml:"length_field"`
	Condition   string `yaml:"condition"`

	Fields []rawField `yaml:"fields"` // struct children

	ElementType        string     `yaml:"element_type"`
	ElementFields       []rawField `yaml:"element_fields"`
	ElementSize         *int       `yaml:"element_size"`
	ElementEncoding     string     `yaml:"element_encoding"`
	ElementLengthField  string     `yaml:"element_length_field"`
	ElementCondition    string     `yaml:"element_condition"`
	ElementDiscriminatorField string `yaml:"element_discriminator_field"`
	ElementUnionVariants map[string][]rawField `yaml:"element_union_variants"`

	Function           string         `yaml:"function"`
	FunctionScope      string         `yaml:"function_scope"`
	FunctionScopeStart string         `yaml:"function_scope_start"`
	FunctionScopeEnd   string         `yaml:"function_scope_end"`
	FunctionParameters map[string]any `yaml:"function_parameters"`

	DiscriminatorField string                `yaml:"discriminator_field"`
	UnionVariants      map[string][]rawField `yaml:"union_variants"`
}

// asElement synthesizes the "#" element descriptor from an array field's
// element_* attributes, so element types may themselves be
// structs/unions/arrays with full recursion.
func (rf rawField) asElement() rawField {
	return rawField{
		Name:                      "#",
		Type:                      rf.ElementType,
		Size:                      rf.ElementSize,
		Encoding:                  rf.ElementEncoding,
		LengthField:               rf.ElementLengthField,
		Condition:                 rf.ElementCondition,
		Fields:                    rf.ElementFields,
		DiscriminatorField:        rf.ElementDiscriminatorField,
		UnionVariants:             rf.ElementUnionVariants,
	}
}
