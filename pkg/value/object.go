package value

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a string-keyed mapping that remembers insertion order.
// Re-setting an existing key keeps its original position.
//
// An Object is owned by whoever built it until it is wrapped in a Value
// and shared; after that it must be treated as read-only.
type Object struct {
	entries *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{entries: orderedmap.New[string, Value]()}
}

// Set stores v under key and returns the object for chaining.
func (o *Object) Set(key string, v Value) *Object {
	if o.entries == nil {
		o.entries = orderedmap.New[string, Value]()
	}
	o.entries.Set(key, v)
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil || o.entries == nil {
		return Value{}, false
	}
	return o.entries.Get(key)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Delete removes key, preserving the order of the remaining keys.
func (o *Object) Delete(key string) {
	if o == nil || o.entries == nil {
		return
	}
	o.entries.Delete(key)
}

// Len returns the number of entries.
func (o *Object) Len() int {
	if o == nil || o.entries == nil {
		return 0
	}
	return o.entries.Len()
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	if o.Len() == 0 {
		return nil
	}
	keys := make([]string, 0, o.Len())
	for pair := o.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range calls fn for each entry in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o.Len() == 0 {
		return
	}
	for pair := o.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a shallow copy that can be extended independently.
func (o *Object) Clone() *Object {
	c := NewObject()
	o.Range(func(k string, v Value) bool {
		c.Set(k, v)
		return true
	})
	return c
}

// Equal compares entries regardless of order.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	equal := true
	o.Range(func(k string, v Value) bool {
		ov, ok := other.Get(k)
		if !ok || !Equal(v, ov) {
			equal = false
		}
		return equal
	})
	return equal
}
