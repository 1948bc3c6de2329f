package value

import (
	"bytes"
	"encoding/base64"
	"time"
	"unicode/utf8"
)

// Value is the tagged runtime datum that validation rules and templates
// operate on. The zero Value is null.
//
// Values are immutable once shared. Arrays and objects hold other values by
// value; there are no back references, so cycles cannot be constructed.
type Value struct {
	kind Kind
	data any
}

// Mode pairs a selector tag with its string value (for example a UI switch
// between "text" and "list" input).
type Mode struct {
	Mode  string `json:"mode" yaml:"mode"`
	Value string `json:"value" yaml:"value"`
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, data: s}
}

// Int returns an integer number value.
func Int(i int64) Value {
	return Value{kind: KindNumber, data: IntNumber(i)}
}

// Float returns a floating point number value.
func Float(f float64) Value {
	return Value{kind: KindNumber, data: FloatNumber(f)}
}

// NumberOf wraps n.
func NumberOf(n Number) Value {
	return Value{kind: KindNumber, data: n}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBoolean, data: b}
}

// Binary returns a binary value holding a copy of b.
func Binary(b []byte) Value {
	c := make([]byte, len(b))
	copy(c, b)
	return Value{kind: KindBinary, data: c}
}

// Array returns an array of the given items.
func Array(items ...Value) Value {
	c := make([]Value, len(items))
	copy(c, items)
	return Value{kind: KindArray, data: c}
}

// ObjectOf wraps o as an object value. A nil o yields an empty object.
func ObjectOf(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, data: o}
}

// GroupOf wraps o as a group value.
func GroupOf(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindGroup, data: o}
}

// DateTimeOf wraps d.
func DateTimeOf(d DateTime) Value {
	return Value{kind: KindDateTime, data: d}
}

// Timestamp returns a full datetime value.
func Timestamp(t time.Time) Value {
	return DateTimeOf(NewDateTime(t))
}

// DurationOf returns a duration value. Durations are encoded as integer
// milliseconds, so negative spans and spans that are not a whole number of
// milliseconds are rejected.
func DurationOf(d time.Duration) (Value, error) {
	if d < 0 {
		return Value{}, newError(ErrorInvalidDuration, "duration %s is negative", d)
	}
	if d%time.Millisecond != 0 {
		return Value{}, newError(ErrorInvalidDuration, "duration %s is not a whole number of milliseconds", d)
	}
	return Value{kind: KindDuration, data: d}, nil
}

// MustDuration is like DurationOf but panics on an invalid span.
func MustDuration(d time.Duration) Value {
	v, err := DurationOf(d)
	if err != nil {
		panic(err)
	}
	return v
}

// ModeOf returns a mode value.
func ModeOf(mode, val string) Value {
	return Value{kind: KindMode, data: Mode{Mode: mode, Value: val}}
}

// Expression returns an unevaluated template source.
func Expression(source string) Value {
	return Value{kind: KindExpression, data: source}
}

// RegexOf compiles pattern with DefaultRegexTimeout.
func RegexOf(pattern string) (Value, error) {
	re, err := CompileRegex(pattern, DefaultRegexTimeout)
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindRegex, data: re}, nil
}

// MustRegex is like RegexOf but panics when the pattern does not compile.
func MustRegex(pattern string) Value {
	v, err := RegexOf(pattern)
	if err != nil {
		panic(err)
	}
	return v
}

// Kind returns the variant tag.
func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindNull
	}
	return v.kind
}

// TypeName returns the wire name of the variant.
func (v Value) TypeName() string {
	return string(v.Kind())
}

func (v Value) IsNull() bool       { return v.Kind() == KindNull }
func (v Value) IsString() bool     { return v.kind == KindString }
func (v Value) IsNumber() bool     { return v.kind == KindNumber }
func (v Value) IsBool() bool       { return v.kind == KindBoolean }
func (v Value) IsBinary() bool     { return v.kind == KindBinary }
func (v Value) IsArray() bool      { return v.kind == KindArray }
func (v Value) IsObject() bool     { return v.kind == KindObject }
func (v Value) IsGroup() bool      { return v.kind == KindGroup }
func (v Value) IsDateTime() bool   { return v.kind == KindDateTime }
func (v Value) IsDuration() bool   { return v.kind == KindDuration }
func (v Value) IsMode() bool       { return v.kind == KindMode }
func (v Value) IsExpression() bool { return v.kind == KindExpression }
func (v Value) IsRegex() bool      { return v.kind == KindRegex }

// AsString returns the text of a string value.
func (v Value) AsString() (string, bool) {
	s, ok := v.data.(string)
	return s, ok && v.kind == KindString
}

// AsNumber returns the number of a number value.
func (v Value) AsNumber() (Number, bool) {
	n, ok := v.data.(Number)
	return n, ok
}

// AsInt returns the integer of an integer number value. Floats report false.
func (v Value) AsInt() (int64, bool) {
	n, ok := v.AsNumber()
	if !ok {
		return 0, false
	}
	return n.Int()
}

// AsFloat returns any number promoted to float64.
func (v Value) AsFloat() (float64, bool) {
	n, ok := v.AsNumber()
	if !ok {
		return 0, false
	}
	return n.Float64(), true
}

// AsBool returns the boolean of a boolean value.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.data.(bool)
	return b, ok
}

// AsBinary returns the bytes of a binary value. The slice must not be modified.
func (v Value) AsBinary() ([]byte, bool) {
	b, ok := v.data.([]byte)
	return b, ok
}

// AsArray returns the items of an array value. The slice must not be modified.
func (v Value) AsArray() ([]Value, bool) {
	a, ok := v.data.([]Value)
	return a, ok
}

// AsObject returns the mapping of an object or group value.
func (v Value) AsObject() (*Object, bool) {
	o, ok := v.data.(*Object)
	return o, ok
}

// AsDateTime returns the datetime of a datetime value.
func (v Value) AsDateTime() (DateTime, bool) {
	d, ok := v.data.(DateTime)
	return d, ok
}

// AsDuration returns the span of a duration value.
func (v Value) AsDuration() (time.Duration, bool) {
	d, ok := v.data.(time.Duration)
	return d, ok
}

// AsMode returns the mode of a mode value.
func (v Value) AsMode() (Mode, bool) {
	m, ok := v.data.(Mode)
	return m, ok
}

// AsExpression returns the template source of an expression value.
func (v Value) AsExpression() (string, bool) {
	s, ok := v.data.(string)
	return s, ok && v.kind == KindExpression
}

// AsRegex returns the compiled pattern of a regex value.
func (v Value) AsRegex() (*Regex, bool) {
	r, ok := v.data.(*Regex)
	return r, ok
}

// Len returns the length of strings (in runes), binaries, arrays and
// objects. Other kinds report false.
func (v Value) Len() (int, bool) {
	switch v.Kind() {
	case KindString:
		return utf8.RuneCountInString(v.data.(string)), true
	case KindBinary:
		return len(v.data.([]byte)), true
	case KindArray:
		return len(v.data.([]Value)), true
	case KindObject, KindGroup:
		return v.data.(*Object).Len(), true
	}
	return 0, false
}

// IsEmpty reports whether the value counts as empty: an empty string, array,
// object, group or binary, a zero number or duration, false, or null.
// Datetimes, modes, expressions and regexes are never empty.
func (v Value) IsEmpty() bool {
	switch v.Kind() {
	case KindNull:
		return true
	case KindString, KindBinary, KindArray, KindObject, KindGroup:
		n, _ := v.Len()
		return n == 0
	case KindNumber:
		return v.data.(Number).IsZero()
	case KindBoolean:
		return !v.data.(bool)
	case KindDuration:
		return v.data.(time.Duration) == 0
	default:
		return false
	}
}

// IsTruthy is used by template conditionals. Null, false, zero, and empty
// strings, arrays and objects are falsy; everything else is truthy.
func (v Value) IsTruthy() bool {
	switch v.Kind() {
	case KindNull:
		return false
	case KindBoolean:
		return v.data.(bool)
	case KindNumber:
		return !v.data.(Number).IsZero()
	case KindString, KindArray, KindObject, KindGroup:
		n, _ := v.Len()
		return n > 0
	default:
		return true
	}
}

// String renders the value for display and template output. Composite
// values render as compact JSON.
func (v Value) String() string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindString, KindExpression:
		return v.data.(string)
	case KindNumber:
		return v.data.(Number).String()
	case KindBoolean:
		if v.data.(bool) {
			return "true"
		}
		return "false"
	case KindBinary:
		return base64.StdEncoding.EncodeToString(v.data.([]byte))
	case KindDateTime:
		return v.data.(DateTime).String()
	case KindDuration:
		return v.data.(time.Duration).String()
	case KindMode:
		m := v.data.(Mode)
		return m.Mode + ":" + m.Value
	case KindRegex:
		return v.data.(*Regex).Pattern()
	default:
		b, err := ToJSON(v)
		if err != nil {
			return "<" + v.TypeName() + ">"
		}
		return string(b)
	}
}

// Equal reports structural equality. Values of different kinds are never
// equal; numbers compare in float64 space.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindString, KindExpression:
		return a.data.(string) == b.data.(string)
	case KindNumber:
		return a.data.(Number).Equal(b.data.(Number))
	case KindBoolean:
		return a.data.(bool) == b.data.(bool)
	case KindBinary:
		return bytes.Equal(a.data.([]byte), b.data.([]byte))
	case KindArray:
		x, y := a.data.([]Value), b.data.([]Value)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case KindObject, KindGroup:
		return a.data.(*Object).Equal(b.data.(*Object))
	case KindDateTime:
		return a.data.(DateTime).Equal(b.data.(DateTime))
	case KindDuration:
		return a.data.(time.Duration) == b.data.(time.Duration)
	case KindMode:
		return a.data.(Mode) == b.data.(Mode)
	case KindRegex:
		return a.data.(*Regex).Pattern() == b.data.(*Regex).Pattern()
	}
	return false
}

// Compare orders two values of the same kind. Only numbers, strings,
// datetimes of the same sub-kind and durations are ordered; every other
// pair reports false.
func Compare(a, b Value) (int, bool) {
	if a.Kind() != b.Kind() {
		return 0, false
	}
	switch a.Kind() {
	case KindNumber:
		return a.data.(Number).Compare(b.data.(Number))
	case KindString:
		x, y := a.data.(string), b.data.(string)
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case KindDateTime:
		return a.data.(DateTime).Compare(b.data.(DateTime))
	case KindDuration:
		x, y := a.data.(time.Duration), b.data.(time.Duration)
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
