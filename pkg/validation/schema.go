package validation

import (
	"errors"

	"mercator-hq/nebula/pkg/value"
)

// FieldRule binds an operator to a field key.
type FieldRule struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"rule" yaml:"rule"`
}

// Schema is an ordered list of field rules. A field may appear more than
// once; each rule is evaluated and reported separately.
type Schema struct {
	Name  string      `json:"name,omitempty" yaml:"name,omitempty"`
	Rules []FieldRule `json:"fields" yaml:"fields"`
}

// NewSchema creates an empty schema.
func NewSchema(name string) *Schema {
	return &Schema{Name: name}
}

// Field appends a rule and returns the schema for chaining.
func (s *Schema) Field(field string, op Operator) *Schema {
	s.Rules = append(s.Rules, FieldRule{Field: field, Operator: op})
	return s
}

// Fields returns the distinct field keys in rule order.
func (s *Schema) Fields() []string {
	seen := make(map[string]bool, len(s.Rules))
	var out []string
	for _, r := range s.Rules {
		if !seen[r.Field] {
			seen[r.Field] = true
			out = append(out, r.Field)
		}
	}
	return out
}

// Report collects the outcome of validating a record against a schema.
type Report struct {
	// Schema is the name of the validated schema.
	Schema string

	// Checked is the number of rules evaluated.
	Checked int

	errs []*Error
}

// Valid reports whether every rule passed.
func (r *Report) Valid() bool {
	return len(r.errs) == 0
}

// Errors returns every failure in schema order.
func (r *Report) Errors() []*Error {
	return append([]*Error(nil), r.errs...)
}

// UserErrors returns the failures caused by bad input.
func (r *Report) UserErrors() []*Error {
	var out []*Error
	for _, e := range r.errs {
		if e.IsUserError() {
			out = append(out, e)
		}
	}
	return out
}

// SystemErrors returns the failures caused by broken rules.
func (r *Report) SystemErrors() []*Error {
	var out []*Error
	for _, e := range r.errs {
		if e.IsSystemError() {
			out = append(out, e)
		}
	}
	return out
}

// FieldErrors returns the failures attributed to field.
func (r *Report) FieldErrors(field string) []*Error {
	var out []*Error
	for _, e := range r.errs {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// Err joins every failure into one error, or returns nil when valid.
func (r *Report) Err() error {
	if r.Valid() {
		return nil
	}
	errs := make([]error, len(r.errs))
	for i, e := range r.errs {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// ValidateRecord evaluates every rule of schema against values. Within one
// rule an and operator stops at its first failure; across rules every
// failure is kept.
func (e *Evaluator) ValidateRecord(schema *Schema, values *value.Object) *Report {
	report := &Report{}
	if schema == nil {
		return report
	}
	report.Schema = schema.Name

	base := NewContext(values, "")
	for _, rule := range schema.Rules {
		ctx := base.WithField(rule.Field)
		report.Checked++
		if err := e.eval(rule.Operator, ctx.CurrentValue(), ctx); err != nil {
			report.errs = append(report.errs, err)
		}
	}
	return report
}

// Validate evaluates op against the value stored under field with a default
// evaluator. An absent field evaluates as null.
func Validate(op Operator, values *value.Object, field string) error {
	return NewEvaluator(nil, nil).Validate(op, values, field)
}
