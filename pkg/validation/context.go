package validation

import (
	"mercator-hq/nebula/pkg/value"
)

// Context is the read-only view an operator is evaluated against: a snapshot
// of every field value, the key of the field under validation, and free-form
// metadata supplied by the host.
//
// Contexts are values in spirit. WithField and WithMetadata return copies and
// never touch the receiver, so a Context may be shared between goroutines.
type Context struct {
	values   *value.Object
	field    string
	metadata map[string]string
}

// NewContext creates a context over values targeted at field. A nil values
// object behaves like an empty one.
func NewContext(values *value.Object, field string) *Context {
	if values == nil {
		values = value.NewObject()
	}
	return &Context{values: values, field: field}
}

// Value returns the value stored under key.
func (c *Context) Value(key string) (value.Value, bool) {
	if c == nil {
		return value.Null(), false
	}
	return c.values.Get(key)
}

// CurrentValue returns the value of the targeted field, or null when it is
// absent.
func (c *Context) CurrentValue() value.Value {
	v, _ := c.Value(c.Field())
	return v
}

// Field returns the key of the targeted field.
func (c *Context) Field() string {
	if c == nil {
		return ""
	}
	return c.field
}

// Values returns the underlying snapshot.
func (c *Context) Values() *value.Object {
	if c == nil {
		return value.NewObject()
	}
	return c.values
}

// WithField returns a copy targeted at another field.
func (c *Context) WithField(field string) *Context {
	if c == nil {
		return NewContext(nil, field)
	}
	cp := *c
	cp.field = field
	return &cp
}

// WithMetadata returns a copy with key set to val.
func (c *Context) WithMetadata(key, val string) *Context {
	if c == nil {
		c = NewContext(nil, "")
	}
	cp := *c
	cp.metadata = make(map[string]string, len(c.metadata)+1)
	for k, v := range c.metadata {
		cp.metadata[k] = v
	}
	cp.metadata[key] = val
	return &cp
}

// Metadata returns the metadata stored under key.
func (c *Context) Metadata(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.metadata[key]
	return v, ok
}
