package value

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// FromYAMLNode converts a plain YAML node into a value. Mapping order is
// preserved, !!int scalars become integers and !!float scalars floats.
func FromYAMLNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return FromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(node.Alias)
	case yaml.SequenceNode:
		items := make([]Value, len(node.Content))
		for i, child := range node.Content {
			v, err := FromYAMLNode(child)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: KindArray, data: items}, nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			v, err := FromYAMLNode(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			obj.Set(key, v)
		}
		return ObjectOf(obj), nil
	case yaml.ScalarNode:
		return scalarFromYAML(node)
	}
	return Value{}, newError(ErrorDeserialization, "unsupported YAML node kind %d at line %d", node.Kind, node.Line)
}

func scalarFromYAML(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, wrapError(ErrorDeserialization, err, "line %d", node.Line)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return Value{}, wrapError(ErrorNumberOutOfRange, err, "line %d", node.Line)
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, wrapError(ErrorInvalidNumber, err, "line %d", node.Line)
		}
		return Float(f), nil
	case "!!binary":
		b, err := decodeBase64(node.Value)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindBinary, data: b}, nil
	default:
		return String(node.Value), nil
	}
}

// ToYAMLNode encodes the plain form of v (see Plain) as a YAML node.
func ToYAMLNode(v Value) (*yaml.Node, error) {
	return plainYAMLNode(Plain(v))
}

func plainYAMLNode(v Value) (*yaml.Node, error) {
	switch v.Kind() {
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.data.(string)}, nil
	case KindBoolean:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.data.(bool))}, nil
	case KindNumber:
		n := v.data.(Number)
		s, err := n.literal()
		if err != nil {
			return nil, err
		}
		tag := "!!int"
		if n.IsFloat() {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: s}, nil
	case KindArray:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.data.([]Value) {
			child, err := plainYAMLNode(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		return seq, nil
	case KindObject:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		v.data.(*Object).Range(func(k string, item Value) bool {
			var child *yaml.Node
			child, err = plainYAMLNode(item)
			if err != nil {
				return false
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				child,
			)
			return true
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, newError(ErrorSerialization, "kind %s has no plain YAML form", v.Kind())
}

// ParseYAML decodes a plain YAML document.
func ParseYAML(data []byte) (Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Value{}, wrapError(ErrorDeserialization, err, "invalid YAML document")
	}
	return FromYAMLNode(&node)
}

// MarshalYAML encodes the tagged document form.
func (v Value) MarshalYAML() (interface{}, error) {
	return ToYAMLNode(Tagged(v))
}

// UnmarshalYAML decodes the tagged document form.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	doc, err := FromYAMLNode(node)
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
