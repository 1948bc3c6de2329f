package catalog

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"mercator-hq/nebula/pkg/template"
	"mercator-hq/nebula/pkg/validation"
)

// Snapshot is an immutable view of a loaded catalog.
type Snapshot struct {
	ruleSets  map[string]*validation.Schema
	templates map[string]*template.Template
	documents []*Document
	loadedAt  time.Time
}

// buildOptions controls how documents are compiled into a snapshot.
type buildOptions struct {
	templateOptions []template.Option
	functions       *template.FunctionRegistry
}

// build compiles docs. Every problem is reported, joined into one error.
// Template names share one namespace across documents.
func build(docs []*Document, opts buildOptions) (*Snapshot, error) {
	snap := &Snapshot{
		ruleSets:  make(map[string]*validation.Schema, len(docs)),
		templates: make(map[string]*template.Template),
		documents: docs,
		loadedAt:  time.Now(),
	}

	var errs []error
	for _, doc := range docs {
		schema, err := doc.Schema()
		switch {
		case err != nil:
			errs = append(errs, err)
		case snap.ruleSets[doc.Name] != nil:
			errs = append(errs, &DocumentError{
				Path:     doc.Path,
				Document: doc.Name,
				Message:  fmt.Sprintf("rule set %q already defined", doc.Name),
				Cause:    ErrDuplicate,
			})
		default:
			snap.ruleSets[doc.Name] = schema
		}

		for _, name := range sortedKeys(doc.Templates) {
			tplErr := func(cause error) error {
				return &DocumentError{
					Path:     doc.Path,
					Document: doc.Name,
					Location: "templates." + name,
					Cause:    cause,
				}
			}

			if _, ok := snap.templates[name]; ok {
				errs = append(errs, tplErr(ErrDuplicate))
				continue
			}
			tpl, err := template.Parse(doc.Templates[name], opts.templateOptions...)
			if err != nil {
				errs = append(errs, tplErr(err))
				continue
			}
			if opts.functions != nil {
				if err := tpl.ValidateFunctions(opts.functions); err != nil {
					errs = append(errs, tplErr(err))
					continue
				}
			}
			snap.templates[name] = tpl
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return snap, nil
}

// RuleSet returns the schema loaded under name.
func (s *Snapshot) RuleSet(name string) (*validation.Schema, error) {
	schema, ok := s.ruleSets[name]
	if !ok {
		return nil, fmt.Errorf("rule set %q: %w", name, ErrNotFound)
	}
	return schema, nil
}

// Template returns the template loaded under name.
func (s *Snapshot) Template(name string) (*template.Template, error) {
	tpl, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q: %w", name, ErrNotFound)
	}
	return tpl, nil
}

// RuleSetNames returns the loaded rule set names in sorted order.
func (s *Snapshot) RuleSetNames() []string {
	return sortedKeys(s.ruleSets)
}

// TemplateNames returns the loaded template names in sorted order.
func (s *Snapshot) TemplateNames() []string {
	return sortedKeys(s.templates)
}

// Documents returns the documents the snapshot was built from.
func (s *Snapshot) Documents() []*Document {
	return append([]*Document(nil), s.documents...)
}

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
