// Package rails provides the Ruby on Rails target of umlgen.
//
// Every class becomes an ActiveRecord model under app/models, and the
// tables of the run are declared in db/schema.rb. Hierarchies are mapped
// with single table inheritance: the specific classes share the table of
// the root class, discriminated by the type column.
package rails

import (
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/metamodel"
)

// Name is the target identifier.
const Name = "rails"

// SchemaFile is the fragment name of the schema.
const SchemaFile = "db/schema.rb"

//go:embed template/*.tmpl
var templates embed.FS

// Adapter maps domain models to Rails models and schema.
type Adapter struct{}

// New returns a Rails adapter.
func New() *Adapter { return &Adapter{} }

// Name implements gen.Adapter.
func (*Adapter) Name() string { return Name }

// TypeName implements gen.TypeMapper. Names are Ruby classes, as used in
// the attribute documentation of the models.
func (*Adapter) TypeName(t metamodel.Type) string {
	switch t.Kind {
	case metamodel.KindString:
		return "String"
	case metamodel.KindInteger:
		return "Integer"
	case metamodel.KindBoolean:
		return "Boolean"
	case metamodel.KindDate:
		return "Date"
	case metamodel.KindFloat:
		return "Float"
	case metamodel.KindClass:
		return gen.Pascal(t.Ref)
	default:
		return "Object"
	}
}

// CollectionWrapper implements gen.TypeMapper using YARD type notation.
func (*Adapter) CollectionWrapper(m metamodel.Multiplicity, elem string) string {
	switch {
	case m.IsCollection():
		return "Array<" + elem + ">"
	case m.IsOptional():
		return elem + ", nil"
	default:
		return elem
	}
}

// FieldName implements gen.TypeMapper.
func (*Adapter) FieldName(p *metamodel.Property) string {
	return gen.Snake(p.Name())
}

// InheritanceClause implements gen.HierarchyMapper.
func (*Adapter) InheritanceClause(c *metamodel.Class) (string, bool) {
	parents := gen.Parents(c)
	if len(parents) == 0 {
		return "", false
	}
	return "< " + gen.Pascal(parents[0].Name()), true
}

// AssociationRole implements gen.RoleMapper.
func (a *Adapter) AssociationRole(end *metamodel.Property) gen.Role {
	return gen.NewRole(a, end)
}

// Capabilities implements gen.CapabilityProvider. Sealed hierarchies are
// closed by a validation of the type column.
func (*Adapter) Capabilities() gen.Capabilities {
	return gen.Capabilities{SealedHierarchies: true}
}

// Templates implements gen.Adapter.
func (a *Adapter) Templates() gen.TemplateSet {
	return gen.TemplateSet{
		Name: Name,
		Parse: func(t *template.Template) (*template.Template, error) {
			return t.ParseFS(templates, "template/*.tmpl")
		},
		Model: []gen.ModelTemplate{
			{
				Name:   "rails/schema",
				Format: func(*gen.Context) string { return SchemaFile },
			},
		},
		Class: []gen.ClassTemplate{
			{
				Name: "rails/model",
				Format: func(_ *gen.Context, c *metamodel.Class) string {
					return "app/models/" + gen.Snake(gen.Pascal(c.Name())) + ".rb"
				},
			},
		},
	}
}

// Funcs implements gen.FuncProvider.
func (a *Adapter) Funcs() template.FuncMap {
	return template.FuncMap{
		"className":    func(c *metamodel.Class) string { return gen.Pascal(c.Name()) },
		"hierarchyDoc": hierarchyDoc,
		"macro":        macro,
		"validations":  validations,
		"schema":       Plan,
	}
}

// hierarchyDoc returns the comment lines describing the hierarchy of c, or "".
func hierarchyDoc(c *metamodel.Class) string {
	children := gen.Children(c)
	names := make([]string, len(children))
	for i, child := range children {
		names[i] = gen.Pascal(child.Name())
	}
	list := strings.Join(names, ", ")
	name := gen.Pascal(c.Name())
	switch gen.HierarchyOf(c) {
	case gen.HierarchySealed:
		return fmt.Sprintf("# %s is sealed: every record is exactly one of %s.", name, list)
	case gen.HierarchyAbstract:
		return fmt.Sprintf("# %s is complete: every record is one of %s.", name, list)
	case gen.HierarchyDisjoint:
		return fmt.Sprintf("# %s is disjoint: a record is at most one of %s.", name, list)
	case gen.HierarchyOpen:
		return fmt.Sprintf("# %s has an open hierarchy: %s may overlap, but single table\n# inheritance stores one type per record.", name, list)
	default:
		return ""
	}
}

// macro returns the association macro declaring r.
func macro(r gen.Role) string {
	var (
		kind string
		opts = []string{"class_name: " + strconv.Quote(r.Type)}
		fk   = gen.ForeignKeyEnd(r.Association)
	)
	switch {
	case fk == nil:
		kind = "has_and_belongs_to_many"
		opts = append(opts,
			"join_table: "+strconv.Quote(joinTable(r.Association)),
			"foreign_key: "+strconv.Quote(column(r.Opposite)),
			"association_foreign_key: "+strconv.Quote(column(r.End)),
		)
	case fk == r.End:
		kind = "belongs_to"
		if r.Optional {
			opts = append(opts, "optional: true")
		}
	default:
		kind = "has_one"
		if r.Collection {
			kind = "has_many"
		}
		opts = append(opts, "foreign_key: "+strconv.Quote(column(r.Opposite)))
	}
	if fk != nil && r.Opposite.IsNavigable() {
		opts = append(opts, "inverse_of: :"+gen.Snake(r.Opposite.Name()))
	}
	if r.Owned && fk != nil && fk != r.End {
		opts = append(opts, "dependent: :destroy")
	}
	return kind + " :" + r.Name + ", " + strings.Join(opts, ", ")
}

// validations returns the validates lines of c.
func validations(ctx *gen.Context, c *metamodel.Class) []string {
	var lines []string
	if kinds := ctx.Kinds(c); len(kinds) > 0 {
		line := "validates :type, inclusion: { in: KINDS }"
		if !ctx.IsAbstract(c) {
			line += ", allow_nil: true"
		}
		lines = append(lines, line)
	}
	var present, flags []string
	for _, p := range ctx.Attributes(c) {
		m := p.Multiplicity()
		if m.IsOptional() || m.IsCollection() {
			continue
		}
		if p.Type().Kind == metamodel.KindBoolean {
			flags = append(flags, ":"+gen.Snake(p.Name()))
		} else {
			present = append(present, ":"+gen.Snake(p.Name()))
		}
	}
	if len(present) > 0 {
		lines = append(lines, "validates "+strings.Join(present, ", ")+", presence: true")
	}
	if len(flags) > 0 {
		lines = append(lines, "validates "+strings.Join(flags, ", ")+", inclusion: { in: [true, false] }")
	}
	return lines
}

// literal renders v as a Ruby literal for schema defaults.
func literal(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return strconv.Quote(v.Format(time.DateOnly)), nil
	default:
		return "", fmt.Errorf("rails: unsupported default value %v (%T)", v, v)
	}
}
