// Package graphql provides the GraphQL schema target of umlgen.
//
// A model becomes a single SDL document. General classes become interfaces
// implemented, transitively, by the object types of their specific
// classes; instances of a concrete general class that belong to none of
// its specific classes are typed by a Plain<General> object. The kinds of
// a sealed hierarchy are also collected in a <General>Kind union. Every
// object type has a creation input and the document closes with the Query
// and Mutation roots.
package graphql

import (
	"bytes"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/metamodel"
)

// Name is the target identifier.
const Name = "graphql"

// SchemaFile is the fragment holding the schema document.
const SchemaFile = "schema.graphqls"

// DateScalar is the custom scalar of date values, serialized as
// YYYY-MM-DD strings.
const DateScalar = "Date"

// Adapter maps domain models to GraphQL SDL.
type Adapter struct{}

// New returns a GraphQL adapter.
func New() *Adapter { return &Adapter{} }

// Name implements gen.Adapter.
func (*Adapter) Name() string { return Name }

// TypeName implements gen.TypeMapper.
func (*Adapter) TypeName(t metamodel.Type) string {
	switch t.Kind {
	case metamodel.KindString:
		return "String"
	case metamodel.KindInteger:
		return "Int"
	case metamodel.KindBoolean:
		return "Boolean"
	case metamodel.KindDate:
		return DateScalar
	case metamodel.KindFloat:
		return "Float"
	case metamodel.KindClass:
		return gen.Pascal(t.Ref)
	default:
		return "String"
	}
}

// CollectionWrapper implements gen.TypeMapper.
func (*Adapter) CollectionWrapper(m metamodel.Multiplicity, elem string) string {
	return outputType(m, elem).String()
}

// FieldName implements gen.TypeMapper.
func (*Adapter) FieldName(p *metamodel.Property) string {
	return gen.Camel(p.Name())
}

// InheritanceClause implements gen.HierarchyMapper. It lists the interfaces
// implemented by the type of c.
func (a *Adapter) InheritanceClause(c *metamodel.Class) (string, bool) {
	ifaces := interfaces(c)
	if len(ifaces) == 0 {
		return "", false
	}
	var b bytes.Buffer
	b.WriteString("implements ")
	for i, name := range ifaces {
		if i > 0 {
			b.WriteString(" & ")
		}
		b.WriteString(name)
	}
	return b.String(), true
}

// AssociationRole implements gen.RoleMapper.
func (a *Adapter) AssociationRole(end *metamodel.Property) gen.Role {
	return gen.NewRole(a, end)
}

// Capabilities implements gen.CapabilityProvider.
func (*Adapter) Capabilities() gen.Capabilities {
	return gen.Capabilities{SealedHierarchies: true, MultipleInheritance: true}
}

// Templates implements gen.Adapter.
func (a *Adapter) Templates() gen.TemplateSet {
	return gen.TemplateSet{
		Name: Name,
		Model: []gen.ModelTemplate{
			{
				Name:   "graphql/schema",
				Format: func(*gen.Context) string { return SchemaFile },
				Build:  a.build,
			},
		},
	}
}

// Document returns the schema document of the run.
func (a *Adapter) Document(c *gen.Context) (*ast.SchemaDocument, error) {
	b := &builder{Context: c, adapter: a, defined: make(map[string]bool)}
	if err := b.document(); err != nil {
		return nil, err
	}
	return &ast.SchemaDocument{Definitions: b.defs}, nil
}

func (a *Adapter) build(c *gen.Context) ([]byte, error) {
	doc, err := a.Document(c)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if h := c.Header(); h != "" {
		fmt.Fprintf(&b, "# %s\n\n", h)
	}
	for i, def := range doc.Definitions {
		if i > 0 {
			b.WriteByte('\n')
		}
		formatter.NewFormatter(&b, formatter.WithIndent("  ")).
			FormatSchemaDocument(&ast.SchemaDocument{Definitions: ast.DefinitionList{def}})
	}
	return b.Bytes(), nil
}

// outputType returns the type of a field holding m values of the named
// type. Collections are non-null lists, empty when there are no values.
func outputType(m metamodel.Multiplicity, named string) *ast.Type {
	switch {
	case m.IsCollection():
		return ast.NonNullListType(ast.NonNullNamedType(named, nil), nil)
	case m.IsOptional():
		return ast.NamedType(named, nil)
	default:
		return ast.NonNullNamedType(named, nil)
	}
}

// inputType is like outputType but lists may be omitted.
func inputType(m metamodel.Multiplicity, named string) *ast.Type {
	if m.IsCollection() {
		return ast.ListType(ast.NonNullNamedType(named, nil), nil)
	}
	return outputType(m, named)
}
