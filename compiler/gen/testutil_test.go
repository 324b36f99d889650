package gen

import (
	"errors"
	"io"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/require"

	"github.com/syssam/umlgen/examples/research"
	"github.com/syssam/umlgen/metamodel"
)

const stubTemplates = `
{{ define "index" }}{{ $.Header }}
{{ range $.Classes }}{{ .Name }}
{{ end }}{{ end }}

{{ define "class" }}class {{ .Class.Name }}{{ with inheritance .Class }} {{ . }}{{ end }} [{{ hierarchy .Class }}]
{{ range attributes .Class }}  {{ fieldName . }}: {{ fieldType . }}
{{ end }}{{ range roles .Class }}  {{ .Name }}: {{ .FieldType }}{{ if .Owned }} owned{{ end }}
{{ end }}{{ end }}
`

// stubAdapter is a minimal target rendering one text fragment per class.
type stubAdapter struct {
	name string
	caps Capabilities
	set  *TemplateSet
}

func newStub(name string) *stubAdapter {
	return &stubAdapter{name: name, caps: Capabilities{SealedHierarchies: true}}
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) TypeName(t metamodel.Type) string {
	if t.IsClass() {
		return t.Ref
	}
	return strings.ToLower(t.Kind.String())
}

func (a *stubAdapter) CollectionWrapper(m metamodel.Multiplicity, elem string) string {
	switch {
	case m.IsCollection():
		return "list<" + elem + ">"
	case m.IsOptional():
		return elem + "?"
	default:
		return elem
	}
}

func (a *stubAdapter) FieldName(p *metamodel.Property) string { return Camel(p.Name()) }

func (a *stubAdapter) InheritanceClause(c *metamodel.Class) (string, bool) {
	parents := Parents(c)
	if len(parents) == 0 {
		return "", false
	}
	names := make([]string, len(parents))
	for i, p := range parents {
		names[i] = p.Name()
	}
	return "extends " + strings.Join(names, ", "), true
}

func (a *stubAdapter) AssociationRole(end *metamodel.Property) Role { return NewRole(a, end) }

func (a *stubAdapter) Capabilities() Capabilities { return a.caps }

func (a *stubAdapter) Templates() TemplateSet {
	if a.set != nil {
		return *a.set
	}
	return TemplateSet{
		Name: a.name,
		Parse: func(t *template.Template) (*template.Template, error) {
			return t.Parse(stubTemplates)
		},
		Model: []ModelTemplate{
			{Name: "index", Format: func(*Context) string { return "index.txt" }},
		},
		Class: []ClassTemplate{
			{Name: "class", Format: func(_ *Context, c *metamodel.Class) string { return "classes/" + c.Name() + ".txt" }},
		},
	}
}

// stubRegistry returns a registry holding the given adapters.
func stubRegistry(t *testing.T, adapters ...Adapter) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, a := range adapters {
		require.NoError(t, r.Register(a))
	}
	return r
}

func researchModel(t *testing.T) *metamodel.DomainModel {
	t.Helper()
	m, err := research.New()
	require.NoError(t, err)
	return m
}

func authoringModel(t *testing.T) *metamodel.DomainModel {
	t.Helper()
	m, err := research.Authoring()
	require.NoError(t, err)
	return m
}

// failingSink fails to open the fragment named fail, and to close the one
// named failClose.
type failingSink struct {
	*MemorySink
	fail, failClose string
}

func (s *failingSink) Open(name string) (io.WriteCloser, string, error) {
	if name == s.fail {
		return nil, "memory:" + name, errors.New("disk full")
	}
	w, loc, err := s.MemorySink.Open(name)
	if err != nil || name != s.failClose {
		return w, loc, err
	}
	return failingCloser{w}, loc, nil
}

type failingCloser struct{ io.WriteCloser }

func (c failingCloser) Close() error {
	_ = c.WriteCloser.Close()
	return errors.New("flush failed")
}
