// Package golang provides the Go target of umlgen.
//
// A model becomes a single Go file declaring one struct per class. Specific
// classes embed their general classes, which also maps multiple
// inheritance. Sealed hierarchies become interfaces closed by an unexported
// marker method, implemented by the specific classes only; the fields of
// the general class move to a <General>Base struct embedded by them.
package golang

import (
	"bytes"
	"path"
	"strings"

	"github.com/99designs/gqlgen/codegen/templates"
	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/metamodel"
)

// Name is the target identifier.
const Name = "go"

type (
	// Adapter maps domain models to Go source.
	Adapter struct {
		pkg string
	}

	// Option configures the Adapter.
	Option func(*Adapter)
)

// WithPackage sets the package name of the generated file. It defaults to
// the lowercased model name.
func WithPackage(pkg string) Option {
	return func(a *Adapter) {
		a.pkg = pkg
	}
}

// New returns a Go adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements gen.Adapter.
func (*Adapter) Name() string { return Name }

// TypeName implements gen.TypeMapper.
func (*Adapter) TypeName(t metamodel.Type) string {
	switch t.Kind {
	case metamodel.KindString:
		return "string"
	case metamodel.KindInteger:
		return "int"
	case metamodel.KindBoolean:
		return "bool"
	case metamodel.KindDate:
		return "time.Time"
	case metamodel.KindFloat:
		return "float64"
	case metamodel.KindClass:
		return templates.ToGo(t.Ref)
	default:
		return "any"
	}
}

// CollectionWrapper implements gen.TypeMapper.
func (*Adapter) CollectionWrapper(m metamodel.Multiplicity, elem string) string {
	switch {
	case m.IsCollection():
		return "[]" + elem
	case m.IsOptional() && !strings.HasPrefix(elem, "*"):
		return "*" + elem
	default:
		return elem
	}
}

// FieldName implements gen.TypeMapper.
func (*Adapter) FieldName(p *metamodel.Property) string {
	return templates.ToGo(p.Name())
}

// InheritanceClause implements gen.HierarchyMapper. It lists the embedded
// types of c.
func (*Adapter) InheritanceClause(c *metamodel.Class) (string, bool) {
	parents := gen.Parents(c)
	if len(parents) == 0 {
		return "", false
	}
	names := make([]string, len(parents))
	for i, p := range parents {
		names[i] = embedded(p)
	}
	return "embeds " + strings.Join(names, ", "), true
}

// AssociationRole implements gen.RoleMapper.
func (a *Adapter) AssociationRole(end *metamodel.Property) gen.Role {
	return gen.NewRole(a, end)
}

// Capabilities implements gen.CapabilityProvider.
func (*Adapter) Capabilities() gen.Capabilities {
	return gen.Capabilities{SealedHierarchies: true, MultipleInheritance: true}
}

// Format implements gen.Formatter. Fragments other than Go files, such as
// the model snapshot, are returned unchanged.
func (*Adapter) Format(name string, src []byte) ([]byte, error) {
	if path.Ext(name) != ".go" {
		return src, nil
	}
	return imports.Process(name, src, nil)
}

// Templates implements gen.Adapter.
func (a *Adapter) Templates() gen.TemplateSet {
	return gen.TemplateSet{
		Name: Name,
		Model: []gen.ModelTemplate{
			{
				Name:   "go/model",
				Format: func(c *gen.Context) string { return gen.Snake(c.Model().Name()) + ".go" },
				Build:  a.build,
			},
		},
	}
}

// PackageName returns the package name used for the model of c.
func (a *Adapter) PackageName(c *gen.Context) string {
	if a.pkg != "" {
		return a.pkg
	}
	return strings.ReplaceAll(gen.Snake(c.Model().Name()), "_", "")
}

func (a *Adapter) build(c *gen.Context) ([]byte, error) {
	f := jen.NewFile(a.PackageName(c))
	if h := c.Header(); h != "" {
		f.HeaderComment(h)
	}
	b := &builder{Context: c, file: f}
	for _, cls := range c.Classes() {
		if err := b.class(cls); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// typeName returns the Go identifier of c.
func typeName(c *metamodel.Class) string {
	return templates.ToGo(c.Name())
}

// kindType returns the discriminator type of a general class.
func kindType(c *metamodel.Class) string {
	return typeName(c) + "Kind"
}

// baseType returns the struct holding the fields of a sealed general class.
func baseType(c *metamodel.Class) string {
	return typeName(c) + "Base"
}

// marker returns the unexported method closing the sealed interface of c.
func marker(c *metamodel.Class) string {
	return "is" + typeName(c)
}

// embedded returns the type a specific class embeds for its general c.
func embedded(c *metamodel.Class) string {
	if gen.HierarchyOf(c) == gen.HierarchySealed {
		return baseType(c)
	}
	return typeName(c)
}
