package value

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Plain converts v into the generic document representation that only uses
// strings, numbers, booleans, arrays, objects and null:
//
//   - binary becomes a base64 string
//   - datetime becomes its RFC 3339 / YYYY-MM-DD / HH:MM:SS string
//   - duration becomes integer milliseconds
//   - mode becomes {"mode": ..., "value": ...}
//   - group becomes a plain object
//   - expression and regex become their source text
//
// The conversion is lossy; use the tagged encoding to round-trip kinds.
func Plain(v Value) Value {
	switch v.Kind() {
	case KindNull, KindString, KindNumber, KindBoolean:
		return v
	case KindBinary, KindDateTime, KindExpression, KindRegex:
		return String(v.String())
	case KindDuration:
		return Int(v.data.(time.Duration).Milliseconds())
	case KindMode:
		m := v.data.(Mode)
		return ObjectOf(NewObject().Set("mode", String(m.Mode)).Set("value", String(m.Value)))
	case KindArray:
		items := v.data.([]Value)
		out := make([]Value, len(items))
		for i, item := range items {
			out[i] = Plain(item)
		}
		return Value{kind: KindArray, data: out}
	case KindObject, KindGroup:
		out := NewObject()
		v.data.(*Object).Range(func(k string, item Value) bool {
			out.Set(k, Plain(item))
			return true
		})
		return ObjectOf(out)
	}
	return Null()
}

// ToNative converts v into plain Go values: string, int64, float64, bool,
// []byte, []any, map[string]any, time.Time, time.Duration or nil. Objects
// lose their key order. Modes become map[string]any.
func (v Value) ToNative() any {
	switch v.Kind() {
	case KindString, KindExpression:
		return v.data.(string)
	case KindNumber:
		n := v.data.(Number)
		if i, ok := n.Int(); ok {
			return i
		}
		return n.Float64()
	case KindBoolean:
		return v.data.(bool)
	case KindBinary:
		b, _ := v.AsBinary()
		c := make([]byte, len(b))
		copy(c, b)
		return c
	case KindArray:
		items := v.data.([]Value)
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item.ToNative()
		}
		return out
	case KindObject, KindGroup:
		out := make(map[string]any)
		v.data.(*Object).Range(func(k string, item Value) bool {
			out[k] = item.ToNative()
			return true
		})
		return out
	case KindDateTime:
		return v.data.(DateTime).Time()
	case KindDuration:
		return v.data.(time.Duration)
	case KindMode:
		m := v.data.(Mode)
		return map[string]any{"mode": m.Mode, "value": m.Value}
	case KindRegex:
		return v.data.(*Regex).Pattern()
	}
	return nil
}

// FromNative converts a Go value into a Value. Maps with string keys become
// objects with keys in sorted order, since Go maps carry no order.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Object:
		return ObjectOf(t), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		n, err := ParseNumber(t.String())
		if err != nil {
			return Value{}, err
		}
		return NumberOf(n), nil
	case Number:
		return NumberOf(t), nil
	case []byte:
		return Binary(t), nil
	case time.Time:
		return Timestamp(t), nil
	case DateTime:
		return DateTimeOf(t), nil
	case time.Duration:
		return DurationOf(t)
	case Mode:
		return ModeOf(t.Mode, t.Value), nil
	case []Value:
		return Array(t...), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromNative(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = v
		}
		return Value{kind: KindArray, data: items}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			v, err := FromNative(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			obj.Set(k, v)
		}
		return ObjectOf(obj), nil
	case map[string]Value:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, t[k])
		}
		return ObjectOf(obj), nil
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, newError(ErrorNumberOutOfRange, "unsigned integer %d exceeds int64", u)
	}
	return Int(int64(u)), nil
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromNative(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			v, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = v
		}
		return Value{kind: KindArray, data: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		native := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			native[iter.Key().String()] = iter.Value().Interface()
		}
		return FromNative(native)
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	}
	return Value{}, newError(ErrorTypeConversion, "cannot convert %T to a value", rv.Interface())
}

// ParseJSON decodes a plain JSON document. Integers keep their identity and
// object keys keep their document order.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return Value{}, wrapError(ErrorDeserialization, err, "invalid JSON document")
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, newError(ErrorDeserialization, "unexpected data after JSON document")
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			items := make([]Value, 0)
			for dec.More() {
				item, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: KindArray, data: items}, nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, errors.New("object key is not a string")
				}
				item, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return ObjectOf(obj), nil
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		n, err := ParseNumber(t.String())
		if err != nil {
			return Value{}, err
		}
		return NumberOf(n), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

// ToJSON encodes the plain form of v (see Plain) as compact JSON, keeping
// object key order.
func ToJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, Plain(v)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		b, err := json.Marshal(v.data.(string))
		if err != nil {
			return wrapError(ErrorSerialization, err, "encode string")
		}
		buf.Write(b)
	case KindNumber:
		s, err := v.data.(Number).literal()
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case KindBoolean:
		buf.WriteString(strconv.FormatBool(v.data.(bool)))
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.data.([]Value) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		var err error
		first := true
		v.data.(*Object).Range(func(k string, item Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			err = writeJSON(buf, item)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return newError(ErrorSerialization, "kind %s has no plain JSON form", v.Kind())
	}
	return nil
}

func decodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, wrapError(ErrorBinaryDecoding, err, "invalid base64 payload")
	}
	return b, nil
}
