package rails

import (
	"cmp"
	"slices"
	"strings"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/metamodel"
)

type (
	// Schema is the table plan of a model.
	Schema struct {
		Tables      []*Table
		ForeignKeys []ForeignKey
	}

	// Table is a create_table statement.
	Table struct {
		Name string
		// ID reports if the table has the implicit id primary key. Join
		// tables do not.
		ID      bool
		Columns []Column
		// Indexes lists the indexed columns.
		Indexes []string
	}

	// Column of a table.
	Column struct {
		Name    string
		Type    string
		Options []string
	}

	// ForeignKey is an add_foreign_key statement.
	ForeignKey struct {
		Table   string
		To      string
		Column  string
		Cascade bool
	}
)

// Plan builds the schema of the run. Every hierarchy is stored in the table
// of its root class, with a type column and the columns of all its
// specific classes. Columns of specific classes are nullable.
func Plan(ctx *gen.Context) (*Schema, error) {
	s := &Schema{}
	m := ctx.Model()
	for _, root := range ctx.Classes() {
		if gen.Root(root) != root {
			continue
		}
		t := &Table{Name: tableName(root), ID: true}
		seen := make(map[string]bool)
		for _, p := range ctx.Attributes(root) {
			c, err := attributeColumn(p, true)
			if err != nil {
				return nil, err
			}
			seen[c.Name] = true
			t.Columns = append(t.Columns, c)
		}
		if len(ctx.Children(root)) > 0 {
			t.Columns = append(t.Columns, Column{Name: "type", Type: "string"})
		}
		for _, d := range ctx.Classes() {
			if d == root || gen.Root(d) != root {
				continue
			}
			for _, p := range ctx.Attributes(d) {
				c, err := attributeColumn(p, false)
				if err != nil {
					return nil, err
				}
				if !seen[c.Name] {
					seen[c.Name] = true
					t.Columns = append(t.Columns, c)
				}
			}
		}
		var refs []Column
		for _, a := range ctx.Associations() {
			f := gen.ForeignKeyEnd(a)
			if f == nil {
				continue
			}
			holder := m.Class(a.Opposite(f).Type().Ref)
			if holder == nil || gen.Root(holder) != root {
				continue
			}
			c := Column{Name: column(f), Type: "bigint"}
			if !f.Multiplicity().IsOptional() && holder == root {
				c.Options = append(c.Options, "null: false")
			}
			refs = append(refs, c)
			s.ForeignKeys = append(s.ForeignKeys, ForeignKey{
				Table:   t.Name,
				To:      classTable(m, f.Type().Ref),
				Column:  c.Name,
				Cascade: f.IsComposite(),
			})
		}
		slices.SortFunc(refs, func(a, b Column) int { return strings.Compare(a.Name, b.Name) })
		for _, c := range refs {
			t.Columns = append(t.Columns, c)
			t.Indexes = append(t.Indexes, c.Name)
		}
		s.Tables = append(s.Tables, t)
	}
	for _, a := range ctx.Associations() {
		if gen.ForeignKeyEnd(a) != nil {
			continue
		}
		t := &Table{Name: joinTable(a)}
		for _, e := range a.Ends() {
			c := Column{Name: column(e), Type: "bigint", Options: []string{"null: false"}}
			t.Columns = append(t.Columns, c)
			t.Indexes = append(t.Indexes, c.Name)
			s.ForeignKeys = append(s.ForeignKeys, ForeignKey{
				Table:   t.Name,
				To:      classTable(m, e.Type().Ref),
				Column:  c.Name,
				Cascade: true,
			})
		}
		s.Tables = append(s.Tables, t)
	}
	slices.SortStableFunc(s.Tables, func(a, b *Table) int { return strings.Compare(a.Name, b.Name) })
	slices.SortStableFunc(s.ForeignKeys, func(a, b ForeignKey) int {
		return cmp.Or(strings.Compare(a.Table, b.Table), strings.Compare(a.Column, b.Column))
	})
	return s, nil
}

// attributeColumn returns the column of p. Required attributes of root
// classes are not null.
func attributeColumn(p *metamodel.Property, root bool) (Column, error) {
	c := Column{Name: gen.Snake(p.Name())}
	m := p.Multiplicity()
	if m.IsCollection() {
		c.Type = "json"
		return c, nil
	}
	c.Type = p.Type().Kind.String()
	if p.HasDefault() {
		v, err := literal(p.Default())
		if err != nil {
			return Column{}, err
		}
		c.Options = append(c.Options, "default: "+v)
	}
	if root && !m.IsOptional() {
		c.Options = append(c.Options, "null: false")
	}
	return c, nil
}

// column returns the foreign key column referring to the class at end.
func column(end *metamodel.Property) string {
	return gen.Singular(gen.Snake(end.Name())) + "_id"
}

// tableName returns the table of a root class.
func tableName(c *metamodel.Class) string {
	return gen.Plural(gen.Snake(gen.Pascal(c.Name())))
}

// classTable returns the table storing the class named name.
func classTable(m *metamodel.DomainModel, name string) string {
	if c := m.Class(name); c != nil {
		return tableName(gen.Root(c))
	}
	return gen.Plural(gen.Snake(gen.Pascal(name)))
}

// joinTable returns the join table of a many-to-many association: the
// sorted table names of both ends, or the association name for
// self-associations and when another association joins the same tables.
func joinTable(a *metamodel.Association) string {
	conventional := func(a *metamodel.Association) (string, bool) {
		e := a.Ends()
		m := a.Model()
		t0, t1 := classTable(m, e[0].Type().Ref), classTable(m, e[1].Type().Ref)
		if t0 == t1 {
			return "", false
		}
		if t1 < t0 {
			t0, t1 = t1, t0
		}
		return t0 + "_" + t1, true
	}
	name, ok := conventional(a)
	if !ok {
		return gen.Snake(a.Name())
	}
	for _, other := range a.Model().Associations() {
		if other == a || gen.ForeignKeyEnd(other) != nil {
			continue
		}
		if n, ok := conventional(other); ok && n == name {
			return gen.Snake(a.Name())
		}
	}
	return name
}
