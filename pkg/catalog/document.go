package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"mercator-hq/nebula/pkg/validation"

	"gopkg.in/yaml.v3"
)

// Document is one rule/template document. A file may hold several
// documents separated by "---".
//
//	name: signup
//	fields:
//	  - field: email
//	    preset: email
//	  - field: age
//	    rule: {type: between, value: {min: {type: number, value: 18}, max: {type: number, value: 130}}}
//	templates:
//	  greeting: "Hello {{ $input.name | default('friend') }}!"
type Document struct {
	// Name identifies the rule set. Required.
	Name string `yaml:"name"`

	// Description is free text shown by the CLI.
	Description string `yaml:"description,omitempty"`

	// Fields lists the field rules in evaluation order.
	Fields []FieldDocument `yaml:"fields,omitempty"`

	// Templates maps template names to template sources.
	Templates map[string]string `yaml:"templates,omitempty"`

	// Path is the file the document was read from.
	Path string `yaml:"-"`
}

// FieldDocument attaches either a named preset or an explicit rule to a
// field. Exactly one of Preset and Rule must be set.
type FieldDocument struct {
	Field  string               `yaml:"field"`
	Preset string               `yaml:"preset,omitempty"`
	Rule   *validation.Operator `yaml:"rule,omitempty"`
}

// Decode reads every document in data. path is recorded on the documents
// and in errors.
func Decode(data []byte, path string) ([]*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var docs []*Document
	for {
		doc := &Document{}
		err := dec.Decode(doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Path: path, Index: len(docs), Cause: err}
		}
		doc.Path = path
		docs = append(docs, doc)
	}
	return docs, nil
}

// Schema converts the field list into a validation schema, resolving
// presets by name.
func (d *Document) Schema() (*validation.Schema, error) {
	if d.Name == "" {
		return nil, &DocumentError{Path: d.Path, Message: "name is required"}
	}

	schema := validation.NewSchema(d.Name)
	for i, f := range d.Fields {
		fieldErr := func(format string, args ...any) error {
			return &DocumentError{
				Path:     d.Path,
				Document: d.Name,
				Location: fmt.Sprintf("fields[%d]", i),
				Message:  fmt.Sprintf(format, args...),
			}
		}

		if f.Field == "" {
			return nil, fieldErr("field is required")
		}
		switch {
		case f.Preset != "" && f.Rule != nil:
			return nil, fieldErr("preset and rule are mutually exclusive")
		case f.Preset != "":
			op, ok := validation.Preset(f.Preset)
			if !ok {
				return nil, fieldErr("unknown preset %q", f.Preset)
			}
			schema.Field(f.Field, op)
		case f.Rule != nil:
			schema.Field(f.Field, *f.Rule)
		default:
			return nil, fieldErr("one of preset or rule is required")
		}
	}
	return schema, nil
}
