package sql

import (
	"fmt"
	"slices"
	"strings"

	"ariga.io/atlas/sql/schema"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/metamodel"
)

// KindColumn is the discriminator column of general classes.
const KindColumn = "kind"

// planner builds the Atlas tables of one run.
type planner struct {
	a      *Adapter
	ctx    *gen.Context
	tables map[string]*schema.Table
}

// Plan returns the tables of the run in creation order: a table follows
// the tables it references, ties are broken by name.
func (a *Adapter) Plan(ctx *gen.Context) ([]*schema.Table, error) {
	p := &planner{a: a, ctx: ctx, tables: make(map[string]*schema.Table)}
	classes := ctx.Classes()
	for _, c := range classes {
		p.table(c)
	}
	for _, c := range classes {
		if err := p.columns(c); err != nil {
			return nil, err
		}
	}
	for _, as := range ctx.Associations() {
		if err := p.association(as); err != nil {
			return nil, err
		}
	}
	return p.sorted(), nil
}

// table creates the table of c with its surrogate key.
func (p *planner) table(c *metamodel.Class) {
	t := schema.NewTable(tableName(c))
	id := schema.NewIntColumn("id", p.a.types[metamodel.KindInteger])
	if len(gen.Parents(c)) == 0 {
		id.AddAttrs(p.a.identity)
	}
	t.AddColumns(id).SetPrimaryKey(schema.NewPrimaryKey(id))
	p.tables[t.Name] = t
}

// columns adds the inheritance reference, discriminator and attributes of
// c to its table.
func (p *planner) columns(c *metamodel.Class) error {
	t := p.tables[tableName(c)]
	if parents := gen.Parents(c); len(parents) > 0 {
		id, _ := t.Column("id")
		p.reference(t, id, parents[0], schema.Cascade)
	}
	if kinds := gen.Kinds(c); len(kinds) > 0 {
		col := schema.NewStringColumn(KindColumn, p.a.types[metamodel.KindString]).
			SetNull(gen.HierarchyOf(c) != gen.HierarchySealed)
		values := make([]string, len(kinds))
		for i, k := range kinds {
			values[i] = "'" + k.Name() + "'"
		}
		t.AddColumns(col).AddChecks(schema.NewCheck().
			SetName(t.Name + "_kind_check").
			SetExpr(fmt.Sprintf("%s IN (%s)", KindColumn, strings.Join(values, ", "))))
	}
	for _, attr := range p.ctx.Attributes(c) {
		if err := p.attribute(t, attr); err != nil {
			return err
		}
	}
	if ids := p.ctx.IDAttributes(c); len(ids) > 0 {
		idx := schema.NewUniqueIndex(t.Name + "_" + strings.Join(names(ids), "_") + "_key")
		for _, attr := range ids {
			col, _ := t.Column(gen.Snake(attr.Name()))
			idx.AddColumns(col)
		}
		t.AddIndexes(idx)
	}
	return nil
}

// attribute adds the column of attr. Class-typed attributes hold a
// reference to the table of their class.
func (p *planner) attribute(t *schema.Table, attr *metamodel.Property) error {
	m := attr.Multiplicity()
	name := gen.Snake(attr.Name())
	switch {
	case m.IsCollection():
		t.AddColumns(schema.NewNullJSONColumn(name, p.a.json))
		return nil
	case attr.Type().IsClass():
		ref := p.ctx.Model().Class(attr.Type().Ref)
		if ref == nil {
			return fmt.Errorf("%s: attribute %s: unknown class %q", p.a.name, attr.QualifiedName(), attr.Type().Ref)
		}
		col := schema.NewIntColumn(column(attr), p.a.types[metamodel.KindInteger]).SetNull(m.IsOptional())
		t.AddColumns(col)
		action := schema.NoAction
		if m.IsOptional() {
			action = schema.SetNull
		}
		p.reference(t, col, ref, action)
		t.AddIndexes(schema.NewIndex(t.Name + "_" + col.Name).AddColumns(col))
		return nil
	}
	typ := p.a.types[attr.Type().Kind]
	var col *schema.Column
	switch attr.Type().Kind {
	case metamodel.KindString:
		col = schema.NewStringColumn(name, typ)
	case metamodel.KindInteger:
		col = schema.NewIntColumn(name, typ)
	case metamodel.KindBoolean:
		col = schema.NewBoolColumn(name, typ)
	case metamodel.KindDate:
		col = schema.NewTimeColumn(name, typ)
	case metamodel.KindFloat:
		col = schema.NewFloatColumn(name, typ)
	default:
		return fmt.Errorf("%s: attribute %s: unsupported type %s", p.a.name, attr.QualifiedName(), attr.Type())
	}
	col.SetNull(m.IsOptional())
	if attr.HasDefault() {
		v, err := literal(attr.Default())
		if err != nil {
			return fmt.Errorf("%s: default of %s: %w", p.a.name, attr.QualifiedName(), err)
		}
		col.SetDefault(&schema.Literal{V: v})
	}
	t.AddColumns(col)
	return nil
}

// association stores as in a foreign key column, or in a join table.
func (p *planner) association(as *metamodel.Association) error {
	m := p.ctx.Model()
	f := gen.ForeignKeyEnd(as)
	if f == nil {
		return p.join(as)
	}
	holder, ref := m.Class(as.Opposite(f).Type().Ref), m.Class(f.Type().Ref)
	if holder == nil || ref == nil {
		return fmt.Errorf("%s: association %s: unresolved end", p.a.name, as.Name())
	}
	t := p.tables[tableName(holder)]
	col := schema.NewIntColumn(column(f), p.a.types[metamodel.KindInteger]).SetNull(f.Multiplicity().IsOptional())
	t.AddColumns(col)
	var action schema.ReferenceOption
	switch {
	case f.IsComposite():
		action = schema.Cascade
	case f.Multiplicity().IsOptional():
		action = schema.SetNull
	}
	p.reference(t, col, ref, action)
	// One-to-one associations hold at most one row per referenced row.
	idx := schema.NewIndex(t.Name + "_" + col.Name).AddColumns(col)
	if !as.Opposite(f).Multiplicity().IsCollection() {
		idx.SetUnique(true)
	}
	t.AddIndexes(idx)
	return nil
}

// join creates the join table of a many-to-many association. Its rows are
// removed with the rows of either end.
func (p *planner) join(as *metamodel.Association) error {
	m := p.ctx.Model()
	t := schema.NewTable(joinTable(as))
	var cols []*schema.Column
	for _, e := range as.Ends() {
		ref := m.Class(e.Type().Ref)
		if ref == nil {
			return fmt.Errorf("%s: association %s: unresolved end %s", p.a.name, as.Name(), e.Name())
		}
		col := schema.NewIntColumn(column(e), p.a.types[metamodel.KindInteger])
		t.AddColumns(col)
		p.reference(t, col, ref, schema.Cascade)
		cols = append(cols, col)
	}
	t.SetPrimaryKey(schema.NewPrimaryKey(cols...))
	t.AddIndexes(schema.NewIndex(t.Name + "_" + cols[1].Name).AddColumns(cols[1]))
	p.tables[t.Name] = t
	return nil
}

// reference adds a foreign key from col of t to the key of the table of c.
func (p *planner) reference(t *schema.Table, col *schema.Column, c *metamodel.Class, action schema.ReferenceOption) {
	ref := p.tables[tableName(c)]
	id, _ := ref.Column("id")
	fk := schema.NewForeignKey(t.Name + "_" + col.Name + "_fkey").
		AddColumns(col).
		SetRefTable(ref).
		AddRefColumns(id)
	if action != "" {
		fk.SetOnDelete(action)
	}
	t.AddForeignKeys(fk)
}

// sorted orders the tables so that referenced tables come first. Tables of
// a reference cycle keep name order.
func (p *planner) sorted() []*schema.Table {
	deps := make(map[string]map[string]bool, len(p.tables))
	for name, t := range p.tables {
		deps[name] = make(map[string]bool)
		for _, fk := range t.ForeignKeys {
			if fk.RefTable.Name != name {
				deps[name][fk.RefTable.Name] = true
			}
		}
	}
	var (
		sorted []*schema.Table
		done   = make(map[string]bool, len(p.tables))
	)
	for len(sorted) < len(p.tables) {
		var ready []string
		for name := range p.tables {
			if done[name] {
				continue
			}
			if all(deps[name], done) {
				ready = append(ready, name)
			}
		}
		if len(ready) == 0 {
			for name := range p.tables {
				if !done[name] {
					ready = append(ready, name)
				}
			}
		}
		next := slices.Min(ready)
		done[next] = true
		sorted = append(sorted, p.tables[next])
	}
	return sorted
}

func all(deps, done map[string]bool) bool {
	for d := range deps {
		if !done[d] {
			return false
		}
	}
	return true
}

// column returns the foreign key column referring to the class at end.
func column(end *metamodel.Property) string {
	return gen.Singular(gen.Snake(end.Name())) + "_id"
}

// tableName returns the table of c.
func tableName(c *metamodel.Class) string {
	return gen.Plural(gen.Snake(gen.Pascal(c.Name())))
}

// joinTable returns the join table of a many-to-many association: the
// sorted table names of both ends, or the association name for
// self-associations and when another association joins the same tables.
func joinTable(as *metamodel.Association) string {
	conventional := func(as *metamodel.Association) (string, bool) {
		e, m := as.Ends(), as.Model()
		c0, c1 := m.Class(e[0].Type().Ref), m.Class(e[1].Type().Ref)
		if c0 == nil || c1 == nil || c0 == c1 {
			return "", false
		}
		t0, t1 := tableName(c0), tableName(c1)
		if t1 < t0 {
			t0, t1 = t1, t0
		}
		return t0 + "_" + t1, true
	}
	name, ok := conventional(as)
	if !ok {
		return gen.Snake(as.Name())
	}
	for _, other := range as.Model().Associations() {
		if other == as || gen.ForeignKeyEnd(other) != nil {
			continue
		}
		if n, ok := conventional(other); ok && n == name {
			return gen.Snake(as.Name())
		}
	}
	return name
}

func names(props []*metamodel.Property) []string {
	list := make([]string, len(props))
	for i, p := range props {
		list[i] = gen.Snake(p.Name())
	}
	return list
}
