package ir

import "fmt"

type Type int

const (
	NullType Type = iota
	BoolType
	NumberType
	StringType
	RegexType
	TemplateType
	IdentType
	ObjectType
	ArrayType
	SpreadType
	HoleType
	DynamicType
)

func (t Type) String() string {
	s, ok := map[Type]string{
		NullType:     "Null",
		BoolType:     "Bool",
		NumberType:   "Number",
		StringType:   "String",
		RegexType:    "Regex",
		TemplateType: "Template",
		IdentType:    "Ident",
		ObjectType:   "Object",
		ArrayType:    "Array",
		SpreadType:   "Spread",
		HoleType:     "Hole",
		DynamicType:  "Dynamic",
	}[t]
	if ok {
		return s
	}
	return "<unknown type>"
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(d []byte) error {
	tt, ok := map[string]Type{
		"Null":     NullType,
		"Bool":     BoolType,
		"Number":   NumberType,
		"String":   StringType,
		"Regex":    RegexType,
		"Template": TemplateType,
		"Ident":    IdentType,
		"Object":   ObjectType,
		"Array":    ArrayType,
		"Spread":   SpreadType,
		"Hole":     HoleType,
		"Dynamic":  DynamicType,
	}[string(d)]
	if !ok {
		return fmt.Errorf("unrecognized type %q", d)
	}
	*t = tt
	return nil
}

func Types() []Type {
	return []Type{
		NullType,
		BoolType,
		NumberType,
		StringType,
		RegexType,
		TemplateType,
		IdentType,
		ObjectType,
		ArrayType,
		SpreadType,
		HoleType,
		DynamicType,
	}
}

// IsContainer reports whether nodes of this type carry child values.
func (t Type) IsContainer() bool {
	switch t {
	case ObjectType, ArrayType, TemplateType, SpreadType:
		return true
	default:
		return false
	}
}
