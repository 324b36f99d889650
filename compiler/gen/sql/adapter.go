package sql

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/metamodel"
)

// Target identifiers.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// SchemaFile is the fragment holding the statements of a model.
const SchemaFile = "schema.sql"

type (
	// Adapter maps domain models to the DDL of a SQL dialect.
	Adapter struct {
		name    string
		types   map[metamodel.Kind]string
		json    string
		planner migrate.PlanApplier
		// identity marks the surrogate key of root tables as generated.
		identity schema.Attr
	}
)

// NewSQLite returns the SQLite adapter.
func NewSQLite() *Adapter {
	return &Adapter{
		name: SQLite,
		types: map[metamodel.Kind]string{
			metamodel.KindString:  "text",
			metamodel.KindInteger: "integer",
			metamodel.KindBoolean: "boolean",
			metamodel.KindDate:    "date",
			metamodel.KindFloat:   "real",
		},
		json:     "json",
		planner:  sqlite.DefaultPlan,
		identity: &sqlite.AutoIncrement{},
	}
}

// NewPostgres returns the PostgreSQL adapter.
func NewPostgres() *Adapter {
	return &Adapter{
		name: Postgres,
		types: map[metamodel.Kind]string{
			metamodel.KindString:  "text",
			metamodel.KindInteger: "bigint",
			metamodel.KindBoolean: "boolean",
			metamodel.KindDate:    "date",
			metamodel.KindFloat:   "double precision",
		},
		json:     "jsonb",
		planner:  postgres.DefaultPlan,
		identity: &postgres.Identity{Generation: "BY DEFAULT"},
	}
}

// Name implements gen.Adapter.
func (a *Adapter) Name() string { return a.name }

// TypeName implements gen.TypeMapper. Classes map to the key type of
// their table.
func (a *Adapter) TypeName(t metamodel.Type) string {
	if t.IsClass() {
		return a.types[metamodel.KindInteger]
	}
	return a.types[t.Kind]
}

// CollectionWrapper implements gen.TypeMapper. Collections are stored as
// JSON arrays; optional values are nullable columns of the element type.
func (a *Adapter) CollectionWrapper(m metamodel.Multiplicity, elem string) string {
	if m.IsCollection() {
		return a.json
	}
	return elem
}

// FieldName implements gen.TypeMapper.
func (*Adapter) FieldName(p *metamodel.Property) string {
	return gen.Snake(p.Name())
}

// InheritanceClause implements gen.HierarchyMapper. It returns the
// reference of the primary key of c to the table of its general class.
func (*Adapter) InheritanceClause(c *metamodel.Class) (string, bool) {
	parents := gen.Parents(c)
	if len(parents) == 0 {
		return "", false
	}
	return fmt.Sprintf("REFERENCES %s (id)", tableName(parents[0])), true
}

// AssociationRole implements gen.RoleMapper.
func (a *Adapter) AssociationRole(end *metamodel.Property) gen.Role {
	return gen.NewRole(a, end)
}

// Capabilities implements gen.CapabilityProvider.
func (*Adapter) Capabilities() gen.Capabilities {
	return gen.Capabilities{SealedHierarchies: true}
}

// Templates implements gen.Adapter.
func (a *Adapter) Templates() gen.TemplateSet {
	return gen.TemplateSet{
		Name: a.name,
		Model: []gen.ModelTemplate{
			{
				Name:   a.name + "/schema",
				Format: func(*gen.Context) string { return SchemaFile },
				Build:  a.build,
			},
		},
	}
}

// Statements plans the statements creating the tables of the run.
func (a *Adapter) Statements(ctx context.Context, c *gen.Context) ([]string, error) {
	tables, err := a.Plan(c)
	if err != nil {
		return nil, err
	}
	changes := make([]schema.Change, len(tables))
	for i, t := range tables {
		changes[i] = &schema.AddTable{T: t}
	}
	plan, err := a.planner.PlanChanges(ctx, gen.Snake(c.Model().Name()), changes, func(o *migrate.PlanOptions) {
		o.Indent = "  "
	})
	if err != nil {
		return nil, fmt.Errorf("%s: plan schema: %w", a.name, err)
	}
	stmts := make([]string, len(plan.Changes))
	for i, ch := range plan.Changes {
		stmts[i] = ch.Cmd
	}
	return stmts, nil
}

func (a *Adapter) build(c *gen.Context) ([]byte, error) {
	stmts, err := a.Statements(context.Background(), c)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if h := c.Header(); h != "" {
		fmt.Fprintf(&b, "-- %s\n\n", h)
	}
	for i, s := range stmts {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s)
		b.WriteString(";\n")
	}
	return b.Bytes(), nil
}

// literal renders a default value as the text of a SQL literal. Atlas
// quotes it for non-numeric columns.
func literal(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return v.Format(time.DateOnly), nil
	default:
		return "", fmt.Errorf("unsupported default value %v (%T)", v, v)
	}
}
