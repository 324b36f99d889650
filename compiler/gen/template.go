package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/syssam/umlgen/metamodel"
)

type (
	// ModelTemplate specifies a template executed once per run, with the
	// run Context as data.
	ModelTemplate struct {
		// Name is the template identifier. Unless Build is set, it names a
		// text/template definition of the set.
		Name string
		// Format returns the fragment name.
		Format func(*Context) string
		// Skip reports if the template should be skipped for the run.
		Skip func(*Context) bool
		// Build renders the fragment in code instead of executing a
		// text/template definition.
		Build func(*Context) ([]byte, error)
	}

	// ClassTemplate specifies a template executed once per class, with a
	// ClassScope as data.
	ClassTemplate struct {
		// Name is the template identifier. Unless Build is set, it names a
		// text/template definition of the set.
		Name string
		// Format returns the fragment name for the class.
		Format func(*Context, *metamodel.Class) string
		// Cond reports if the template applies to the class.
		Cond func(*Context, *metamodel.Class) bool
		// Build renders the fragment in code instead of executing a
		// text/template definition.
		Build func(*Context, *metamodel.Class) ([]byte, error)
	}

	// TemplateSet is the named set of templates published by a target.
	TemplateSet struct {
		// Name of the set, usually the target identifier.
		Name string
		// Parse adds the text/template definitions of the set to t, which
		// already carries the run FuncMap. It may be nil for sets made of
		// Build templates only.
		Parse func(t *template.Template) (*template.Template, error)
		// Model templates are executed first, in order.
		Model []ModelTemplate
		// Class templates are executed for every class in name order.
		Class []ClassTemplate
	}

	// ClassScope is the data of class templates: the run Context extended
	// with the class being rendered.
	ClassScope struct {
		*Context
		Class *metamodel.Class
	}
)

// Identifiers returns the template identifiers of the set in execution
// order.
func (s TemplateSet) Identifiers() []string {
	ids := make([]string, 0, len(s.Model)+len(s.Class))
	for _, t := range s.Model {
		ids = append(ids, t.Name)
	}
	for _, t := range s.Class {
		ids = append(ids, t.Name)
	}
	return ids
}

// required returns the identifiers that must be defined as text/template
// definitions.
func (s TemplateSet) required() []string {
	var ids []string
	for _, t := range s.Model {
		if t.Build == nil {
			ids = append(ids, t.Name)
		}
	}
	for _, t := range s.Class {
		if t.Build == nil {
			ids = append(ids, t.Name)
		}
	}
	return ids
}

// parse builds a fresh template for one run: the FuncMap of the context,
// the definitions of the set, then the overrides found under
// <dir>/<target>/*.tmpl. Every required definition must exist afterwards.
func (s TemplateSet) parse(ctx *Context, dir string) (*template.Template, error) {
	t := template.New(s.Name).Option("missingkey=error").Funcs(ctx.FuncMap())
	if s.Parse != nil {
		var err error
		if t, err = s.Parse(t); err != nil {
			return nil, fmt.Errorf("parse template set %q: %w", s.Name, err)
		}
	}
	if dir != "" {
		pattern := filepath.Join(dir, ctx.Target(), "*.tmpl")
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, path := range matches {
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read template override %s: %w", path, err)
			}
			if _, err := t.New(filepath.Base(path)).Parse(string(b)); err != nil {
				return nil, fmt.Errorf("parse template override %s: %w", path, err)
			}
		}
	}
	for _, name := range s.required() {
		if t.Lookup(name) == nil {
			return nil, fmt.Errorf("template %q is not defined in set %q", name, s.Name)
		}
	}
	return t, nil
}

func execute(t *template.Template, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
