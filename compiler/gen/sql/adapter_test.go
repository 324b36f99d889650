package sql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/examples/research"
	"github.com/syssam/umlgen/metamodel"
)

func TestMappers(t *testing.T) {
	tests := []struct {
		a                         *Adapter
		integer, float, json, ref string
	}{
		{NewSQLite(), "integer", "real", "json", "integer"},
		{NewPostgres(), "bigint", "double precision", "jsonb", "bigint"},
	}
	for _, tt := range tests {
		t.Run(tt.a.Name(), func(t *testing.T) {
			assert.Equal(t, "text", tt.a.TypeName(metamodel.StringType))
			assert.Equal(t, tt.integer, tt.a.TypeName(metamodel.IntegerType))
			assert.Equal(t, tt.float, tt.a.TypeName(metamodel.FloatType))
			assert.Equal(t, "date", tt.a.TypeName(metamodel.DateType))
			assert.Equal(t, tt.ref, tt.a.TypeName(metamodel.ClassType("Paper")))
			assert.Equal(t, tt.json, tt.a.CollectionWrapper(metamodel.Many, "text"))
			assert.Equal(t, "text", tt.a.CollectionWrapper(metamodel.ZeroOrOne, "text"))
			assert.Equal(t, "submitted_date", tt.a.FieldName(metamodel.MustProperty("submittedDate", metamodel.DateType)))
			assert.Equal(t, gen.Capabilities{SealedHierarchies: true}, tt.a.Capabilities())
		})
	}

	m := research.MustNew()
	clause, ok := NewSQLite().InheritanceClause(m.Class("Symposium"))
	require.True(t, ok)
	assert.Equal(t, "REFERENCES research_events (id)", clause)
	_, ok = NewSQLite().InheritanceClause(m.Class("Paper"))
	assert.False(t, ok)

	r := NewPostgres().AssociationRole(m.Association("papers").End("papers"))
	assert.Equal(t, "jsonb", r.FieldType)
	assert.True(t, r.Owned)
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{"draft", "draft"},
		{true, "true"},
		{int64(42), "42"},
		{uint8(7), "7"},
		{float32(1.5), "1.5"},
		{0.25, "0.25"},
		{time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC), "2024-03-09"},
	}
	for _, tt := range tests {
		got, err := literal(tt.v)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := literal([]string{"a"})
	assert.Error(t, err)
}

func TestTableNames(t *testing.T) {
	m := research.MustNew()
	assert.Equal(t, "research_events", tableName(m.Class("ResearchEvent")))
	assert.Equal(t, "symposia", tableName(m.Class("Symposium")))
	assert.Equal(t, "papers_researchers", joinTable(m.Association("is_authored_by")))
	assert.Equal(t, "research_events_researchers", joinTable(m.Association("organizers")))
	assert.Equal(t, "event_id", column(m.Association("papers").End("event")))
}
