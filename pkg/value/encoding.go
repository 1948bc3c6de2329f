package value

import (
	"encoding/base64"
	"math"
	"time"
)

// Tagged returns the tagged document form of v:
//
//	{"type": "<kind>", "value": <payload>}
//
// Nested array and object members are tagged recursively. Null has no
// "value" member.
func Tagged(v Value) Value {
	doc := NewObject().Set("type", String(v.TypeName()))
	switch v.Kind() {
	case KindNull:
		return ObjectOf(doc)
	case KindString, KindNumber, KindBoolean:
		doc.Set("value", v)
	case KindBinary:
		doc.Set("value", String(base64.StdEncoding.EncodeToString(v.data.([]byte))))
	case KindDateTime, KindExpression, KindRegex:
		doc.Set("value", String(v.String()))
	case KindDuration:
		doc.Set("value", Int(v.data.(time.Duration).Milliseconds()))
	case KindMode:
		doc.Set("value", Plain(v))
	case KindArray:
		items := v.data.([]Value)
		out := make([]Value, len(items))
		for i, item := range items {
			out[i] = Tagged(item)
		}
		doc.Set("value", Value{kind: KindArray, data: out})
	case KindObject, KindGroup:
		out := NewObject()
		v.data.(*Object).Range(func(k string, item Value) bool {
			out.Set(k, Tagged(item))
			return true
		})
		doc.Set("value", ObjectOf(out))
	}
	return ObjectOf(doc)
}

// FromTagged rebuilds a value from its tagged document form.
func FromTagged(doc Value) (Value, error) {
	obj, ok := doc.AsObject()
	if !ok {
		return Value{}, newError(ErrorDeserialization, "tagged value must be an object, got %s", doc.Kind())
	}
	typ, ok := obj.Get("type")
	if !ok {
		return Value{}, newError(ErrorDeserialization, "tagged value is missing \"type\"")
	}
	name, ok := typ.AsString()
	if !ok {
		return Value{}, newError(ErrorDeserialization, "\"type\" must be a string")
	}
	kind, err := ParseKind(name)
	if err != nil {
		return Value{}, err
	}
	if kind == KindNull {
		return Null(), nil
	}
	payload, ok := obj.Get("value")
	if !ok {
		return Value{}, newError(ErrorDeserialization, "tagged %s is missing \"value\"", kind)
	}

	switch kind {
	case KindString:
		if s, ok := payload.AsString(); ok {
			return String(s), nil
		}
	case KindNumber:
		if payload.IsNumber() {
			return payload, nil
		}
	case KindBoolean:
		if payload.IsBool() {
			return payload, nil
		}
	case KindBinary:
		if s, ok := payload.AsString(); ok {
			b, err := decodeBase64(s)
			if err != nil {
				return Value{}, err
			}
			return Value{kind: KindBinary, data: b}, nil
		}
	case KindDateTime:
		if s, ok := payload.AsString(); ok {
			dt, err := ParseDateTime(s)
			if err != nil {
				return Value{}, err
			}
			return DateTimeOf(dt), nil
		}
	case KindDuration:
		if ms, ok := payload.AsInt(); ok {
			if ms > math.MaxInt64/int64(time.Millisecond) {
				return Value{}, newError(ErrorInvalidDuration, "duration of %dms is out of range", ms)
			}
			return DurationOf(time.Duration(ms) * time.Millisecond)
		}
	case KindMode:
		if m, ok := payload.AsObject(); ok {
			mode, ok1 := stringMember(m, "mode")
			val, ok2 := stringMember(m, "value")
			if ok1 && ok2 {
				return ModeOf(mode, val), nil
			}
			return Value{}, newError(ErrorDeserialization, "mode payload needs string \"mode\" and \"value\"")
		}
	case KindExpression:
		if s, ok := payload.AsString(); ok {
			return Expression(s), nil
		}
	case KindRegex:
		if s, ok := payload.AsString(); ok {
			return RegexOf(s)
		}
	case KindArray:
		if items, ok := payload.AsArray(); ok {
			out := make([]Value, len(items))
			for i, item := range items {
				v, err := FromTagged(item)
				if err != nil {
					return Value{}, err
				}
				out[i] = v
			}
			return Value{kind: KindArray, data: out}, nil
		}
	case KindObject, KindGroup:
		if members, ok := payload.AsObject(); ok {
			out := NewObject()
			var ferr error
			members.Range(func(k string, item Value) bool {
				v, err := FromTagged(item)
				if err != nil {
					ferr = err
					return false
				}
				out.Set(k, v)
				return true
			})
			if ferr != nil {
				return Value{}, ferr
			}
			if kind == KindGroup {
				return GroupOf(out), nil
			}
			return ObjectOf(out), nil
		}
	}
	return Value{}, newError(ErrorDeserialization, "invalid payload of type %s for tagged %s", payload.Kind(), kind)
}

func stringMember(o *Object, key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// MarshalJSON encodes the tagged document form.
func (v Value) MarshalJSON() ([]byte, error) {
	return ToJSON(Tagged(v))
}

// UnmarshalJSON decodes the tagged document form.
func (v *Value) UnmarshalJSON(data []byte) error {
	doc, err := ParseJSON(data)
	if err != nil {
		return err
	}
	decoded, err := FromTagged(doc)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}
