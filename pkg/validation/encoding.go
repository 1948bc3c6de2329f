package validation

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"mercator-hq/nebula/pkg/value"
)

// ErrInvalidOperator is returned when an operator document cannot be decoded.
var ErrInvalidOperator = errors.New("invalid operator document")

// Document returns the operator as a plain document:
//
//	{"type": "min_length", "value": 3}
//	{"type": "eq", "value": {"type": "number", "value": 5}}
//	{"type": "between", "value": {"min": <tagged>, "max": <tagged>}}
//	{"type": "required_if", "value": {"field": "country", "condition": <operator>}}
//
// Operands are tagged values. Payload-less operators have no "value" member.
func (o Operator) Document() (value.Value, error) {
	if !o.Type.IsValid() {
		return value.Value{}, fmt.Errorf("%w: unknown operator type %q", ErrInvalidOperator, o.Type)
	}

	doc := value.NewObject().Set("type", value.String(string(o.Type)))

	switch o.Type {
	case OpEq, OpNotEq, OpGt, OpGte, OpLt, OpLte:
		doc.Set("value", value.Tagged(o.Value))
	case OpBetween, OpNotBetween:
		doc.Set("value", value.ObjectOf(value.NewObject().
			Set("min", value.Tagged(o.Min)).
			Set("max", value.Tagged(o.Max))))
	case OpIn, OpNotIn:
		items := make([]value.Value, len(o.Values))
		for i, v := range o.Values {
			items[i] = value.Tagged(v)
		}
		doc.Set("value", value.Array(items...))
	case OpContains, OpNotContains, OpStartsWith, OpEndsWith:
		doc.Set("value", value.String(o.Text))
	case OpMinLength, OpMaxLength, OpExactLength:
		doc.Set("value", value.Int(int64(o.Length)))
	case OpMatches, OpNotMatches:
		doc.Set("value", value.String(o.Pattern))
	case OpEqualsField, OpNotEqualsField, OpGreaterThanField, OpLessThanField:
		doc.Set("value", value.String(o.Field))
	case OpRequiredIf, OpForbiddenIf:
		if o.Condition == nil {
			return value.Value{}, fmt.Errorf("%w: %s without a condition", ErrInvalidOperator, o.Type)
		}
		cond, err := o.Condition.Document()
		if err != nil {
			return value.Value{}, err
		}
		doc.Set("value", value.ObjectOf(value.NewObject().
			Set("field", value.String(o.Field)).
			Set("condition", cond)))
	case OpAnd, OpOr:
		items := make([]value.Value, len(o.Children))
		for i, child := range o.Children {
			d, err := child.Document()
			if err != nil {
				return value.Value{}, err
			}
			items[i] = d
		}
		doc.Set("value", value.Array(items...))
	case OpNot:
		if o.Condition == nil {
			return value.Value{}, fmt.Errorf("%w: not without an operand", ErrInvalidOperator)
		}
		d, err := o.Condition.Document()
		if err != nil {
			return value.Value{}, err
		}
		doc.Set("value", d)
	case OpCustom:
		doc.Set("value", value.String(o.Name))
	}
	return value.ObjectOf(doc), nil
}

// OperatorFromDocument decodes the form produced by Document.
func OperatorFromDocument(doc value.Value) (Operator, error) {
	obj, ok := doc.AsObject()
	if !ok {
		return Operator{}, fmt.Errorf("%w: expected an object, got %s", ErrInvalidOperator, doc.Kind())
	}
	typ, ok := obj.Get("type")
	if !ok {
		return Operator{}, fmt.Errorf("%w: missing \"type\"", ErrInvalidOperator)
	}
	name, ok := typ.AsString()
	if !ok {
		return Operator{}, fmt.Errorf("%w: \"type\" must be a string", ErrInvalidOperator)
	}
	t := OperatorType(name)
	if !t.IsValid() {
		return Operator{}, fmt.Errorf("%w: unknown operator type %q", ErrInvalidOperator, name)
	}

	payload, hasPayload := obj.Get("value")
	need := func() error {
		if !hasPayload {
			return fmt.Errorf("%w: %s requires a \"value\"", ErrInvalidOperator, t)
		}
		return nil
	}

	op := Operator{Type: t}
	switch t {
	case OpEq, OpNotEq, OpGt, OpGte, OpLt, OpLte:
		if err := need(); err != nil {
			return Operator{}, err
		}
		v, err := operand(payload)
		if err != nil {
			return Operator{}, err
		}
		op.Value = v

	case OpBetween, OpNotBetween:
		if err := need(); err != nil {
			return Operator{}, err
		}
		bounds, ok := payload.AsObject()
		if !ok {
			return Operator{}, fmt.Errorf("%w: %s expects {\"min\", \"max\"}", ErrInvalidOperator, t)
		}
		for _, key := range []string{"min", "max"} {
			raw, ok := bounds.Get(key)
			if !ok {
				return Operator{}, fmt.Errorf("%w: %s is missing %q", ErrInvalidOperator, t, key)
			}
			v, err := operand(raw)
			if err != nil {
				return Operator{}, err
			}
			if key == "min" {
				op.Min = v
			} else {
				op.Max = v
			}
		}

	case OpIn, OpNotIn:
		if err := need(); err != nil {
			return Operator{}, err
		}
		items, ok := payload.AsArray()
		if !ok {
			return Operator{}, fmt.Errorf("%w: %s expects a list", ErrInvalidOperator, t)
		}
		op.Values = make([]value.Value, len(items))
		for i, item := range items {
			v, err := operand(item)
			if err != nil {
				return Operator{}, err
			}
			op.Values[i] = v
		}

	case OpContains, OpNotContains, OpStartsWith, OpEndsWith,
		OpMatches, OpNotMatches,
		OpEqualsField, OpNotEqualsField, OpGreaterThanField, OpLessThanField,
		OpCustom:
		if err := need(); err != nil {
			return Operator{}, err
		}
		s, err := stringOperand(t, payload)
		if err != nil {
			return Operator{}, err
		}
		switch t {
		case OpMatches, OpNotMatches:
			op.Pattern = s
		case OpEqualsField, OpNotEqualsField, OpGreaterThanField, OpLessThanField:
			op.Field = s
		case OpCustom:
			op.Name = s
		default:
			op.Text = s
		}

	case OpMinLength, OpMaxLength, OpExactLength:
		if err := need(); err != nil {
			return Operator{}, err
		}
		v, err := operand(payload)
		if err != nil {
			return Operator{}, err
		}
		n, ok := v.AsInt()
		if !ok || n < 0 {
			return Operator{}, fmt.Errorf("%w: %s expects a non-negative integer, got %s", ErrInvalidOperator, t, v)
		}
		op.Length = int(n)

	case OpRequiredIf, OpForbiddenIf:
		if err := need(); err != nil {
			return Operator{}, err
		}
		body, ok := payload.AsObject()
		if !ok {
			return Operator{}, fmt.Errorf("%w: %s expects {\"field\", \"condition\"}", ErrInvalidOperator, t)
		}
		fieldValue, _ := body.Get("field")
		field, ok := fieldValue.AsString()
		if !ok {
			return Operator{}, fmt.Errorf("%w: %s requires a string \"field\"", ErrInvalidOperator, t)
		}
		condDoc, ok := body.Get("condition")
		if !ok {
			return Operator{}, fmt.Errorf("%w: %s requires a \"condition\"", ErrInvalidOperator, t)
		}
		cond, err := OperatorFromDocument(condDoc)
		if err != nil {
			return Operator{}, err
		}
		op.Field = field
		op.Condition = &cond

	case OpAnd, OpOr:
		if err := need(); err != nil {
			return Operator{}, err
		}
		items, ok := payload.AsArray()
		if !ok {
			return Operator{}, fmt.Errorf("%w: %s expects a list of operators", ErrInvalidOperator, t)
		}
		op.Children = make([]Operator, len(items))
		for i, item := range items {
			child, err := OperatorFromDocument(item)
			if err != nil {
				return Operator{}, err
			}
			op.Children[i] = child
		}

	case OpNot:
		if err := need(); err != nil {
			return Operator{}, err
		}
		child, err := OperatorFromDocument(payload)
		if err != nil {
			return Operator{}, err
		}
		op.Condition = &child
	}
	return op, nil
}

// operand decodes a literal operand. Tagged documents are decoded as such;
// anything else is taken as a plain value, so hand-written rule files may use
// {"type": "gt", "value": 5}.
func operand(doc value.Value) (value.Value, error) {
	if obj, ok := doc.AsObject(); ok {
		if typ, ok := obj.Get("type"); ok {
			if name, ok := typ.AsString(); ok {
				if _, err := value.ParseKind(name); err == nil {
					v, err := value.FromTagged(doc)
					if err != nil {
						return value.Value{}, fmt.Errorf("%w: %w", ErrInvalidOperator, err)
					}
					return v, nil
				}
			}
		}
	}
	return doc, nil
}

func stringOperand(t OperatorType, doc value.Value) (string, error) {
	v, err := operand(doc)
	if err != nil {
		return "", err
	}
	s, ok := v.AsString()
	if !ok {
		return "", fmt.Errorf("%w: %s expects a string, got %s", ErrInvalidOperator, t, v.Kind())
	}
	return s, nil
}

// MarshalJSON encodes the operator document.
func (o Operator) MarshalJSON() ([]byte, error) {
	doc, err := o.Document()
	if err != nil {
		return nil, err
	}
	return value.ToJSON(doc)
}

// UnmarshalJSON decodes an operator document.
func (o *Operator) UnmarshalJSON(data []byte) error {
	doc, err := value.ParseJSON(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOperator, err)
	}
	decoded, err := OperatorFromDocument(doc)
	if err != nil {
		return err
	}
	*o = decoded
	return nil
}

// MarshalYAML encodes the operator document.
func (o Operator) MarshalYAML() (interface{}, error) {
	doc, err := o.Document()
	if err != nil {
		return nil, err
	}
	return value.ToYAMLNode(doc)
}

// UnmarshalYAML decodes an operator document.
func (o *Operator) UnmarshalYAML(node *yaml.Node) error {
	doc, err := value.FromYAMLNode(node)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOperator, err)
	}
	decoded, err := OperatorFromDocument(doc)
	if err != nil {
		return err
	}
	*o = decoded
	return nil
}
