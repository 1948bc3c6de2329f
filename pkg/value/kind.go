package value

// Kind identifies the variant held by a Value.
// The set of kinds is closed; every switch over Kind in this module is exhaustive.
type Kind string

const (
	KindNull       Kind = "null"
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindBoolean    Kind = "boolean"
	KindBinary     Kind = "binary"
	KindArray      Kind = "array"
	KindObject     Kind = "object"
	KindGroup      Kind = "group"
	KindDateTime   Kind = "datetime"
	KindDuration   Kind = "duration"
	KindMode       Kind = "mode"
	KindExpression Kind = "expression"
	KindRegex      Kind = "regex"
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	KindNull,
	KindString,
	KindNumber,
	KindBoolean,
	KindBinary,
	KindArray,
	KindObject,
	KindGroup,
	KindDateTime,
	KindDuration,
	KindMode,
	KindExpression,
	KindRegex,
}

// ParseKind returns the kind named by s.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return KindNull, newError(ErrorInvalidEnumVariant, "unknown value type %q", s)
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	return string(k)
}
