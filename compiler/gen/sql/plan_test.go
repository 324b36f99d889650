package sql

import (
	"context"
	dbsql "database/sql"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/examples/research"
	"github.com/syssam/umlgen/metamodel"
)

func generate(t *testing.T, a *Adapter, m *metamodel.DomainModel) string {
	t.Helper()
	r := gen.NewRegistry()
	require.NoError(t, r.Register(a))
	e, err := gen.NewEngine(gen.WithRegistry(r))
	require.NoError(t, err)
	sink := gen.NewMemorySink()
	_, err = e.Run(context.Background(), m, a.Name(), sink)
	require.NoError(t, err)
	assert.Equal(t, []string{SchemaFile}, sink.Names())
	b, _ := sink.Get(SchemaFile)
	return string(b)
}

func plan(t *testing.T, a *Adapter, m *metamodel.DomainModel) map[string]*schema.Table {
	t.Helper()
	tables, err := a.Plan(gen.NewContext(m, a, gen.DefaultConfig()))
	require.NoError(t, err)
	byName := make(map[string]*schema.Table, len(tables))
	for _, tb := range tables {
		byName[tb.Name] = tb
	}
	return byName
}

// open executes the statements of src on a fresh SQLite database with
// foreign keys enforced.
func open(t *testing.T, src string) *dbsql.DB {
	t.Helper()
	db, err := dbsql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "schema.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range strings.Split(src, ";\n") {
		if stmt = strings.TrimSpace(stmt); stmt == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return db
}

func count(t *testing.T, db *dbsql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

var createTable = regexp.MustCompile("CREATE TABLE [`\"](\\w+)[`\"]")

func TestGenerateResearchSQLite(t *testing.T) {
	src := generate(t, NewSQLite(), research.MustNew())
	assert.True(t, strings.HasPrefix(src, "-- Code generated by umlgen. DO NOT EDIT.\n\nCREATE TABLE"))

	var order []string
	for _, m := range createTable.FindAllStringSubmatch(src, -1) {
		order = append(order, m[1])
	}
	assert.Equal(t, []string{
		"research_events", "conferences", "papers", "researchers",
		"papers_researchers", "research_events_researchers", "symposia", "workshops",
	}, order, "referenced tables are created first")

	assert.Contains(t, src, "CREATE TABLE `papers` (\n"+
		"  `id` integer NOT NULL PRIMARY KEY AUTOINCREMENT,\n"+
		"  `acceptance` boolean NOT NULL DEFAULT false,\n"+
		"  `submitted_date` date NOT NULL,\n"+
		"  `title` text NOT NULL,\n"+
		"  `event_id` integer NOT NULL,\n"+
		"  CONSTRAINT `papers_event_id_fkey` FOREIGN KEY (`event_id`) REFERENCES `research_events` (`id`) ON DELETE CASCADE\n"+
		");\n")
	assert.Contains(t, src, "CREATE INDEX `papers_event_id` ON `papers` (`event_id`);\n")
	assert.Contains(t, src, "  `kind` text NOT NULL,\n")
	assert.Contains(t, src, "CONSTRAINT `research_events_kind_check` CHECK (kind IN ('Conference', 'Symposium', 'Workshop'))")
	assert.Contains(t, src, "CONSTRAINT `conferences_id_fkey` FOREIGN KEY (`id`) REFERENCES `research_events` (`id`) ON DELETE CASCADE")
	assert.Contains(t, src, "  PRIMARY KEY (`paper_id`, `author_id`),\n")

	db := open(t, src)
	t.Run("joined inheritance", func(t *testing.T) {
		res, err := db.Exec(`INSERT INTO research_events (kind, name, start, "end") VALUES ('Conference', 'ICSE', '2024-04-14', '2024-04-20')`)
		require.NoError(t, err)
		id, err := res.LastInsertId()
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO conferences (id) VALUES (?)`, id)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO conferences (id) VALUES (?)`, id+100)
		assert.Error(t, err, "specific rows need a general row")

		_, err = db.Exec(`INSERT INTO papers (title, submitted_date, event_id) VALUES ('Models', '2024-01-10', ?)`, id)
		require.NoError(t, err)
		var accepted bool
		require.NoError(t, db.QueryRow(`SELECT acceptance FROM papers`).Scan(&accepted))
		assert.False(t, accepted)

		_, err = db.Exec(`DELETE FROM research_events WHERE id = ?`, id)
		require.NoError(t, err)
		assert.Zero(t, count(t, db, "conferences"))
		assert.Zero(t, count(t, db, "papers"), "papers are owned by their event")
	})

	t.Run("sealed kind", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO research_events (kind, name, start, "end") VALUES ('Talk', 'x', '2024-01-01', '2024-01-01')`)
		assert.Error(t, err)
		_, err = db.Exec(`INSERT INTO research_events (name, start, "end") VALUES ('x', '2024-01-01', '2024-01-01')`)
		assert.Error(t, err)
	})

	t.Run("join table", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO researchers (id, name, institution) VALUES (1, 'Ada', 'UOC')`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO research_events (id, kind, name, start, "end") VALUES (7, 'Workshop', 'MDE', '2024-01-01', '2024-01-02')`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO papers (id, title, submitted_date, event_id) VALUES (3, 'UML', '2024-01-01', 7)`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO papers_researchers (paper_id, author_id) VALUES (3, 1)`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO papers_researchers (paper_id, author_id) VALUES (3, 1)`)
		assert.Error(t, err, "pairs are unique")

		_, err = db.Exec(`DELETE FROM researchers WHERE id = 1`)
		require.NoError(t, err)
		assert.Zero(t, count(t, db, "papers_researchers"))
		assert.Equal(t, 1, count(t, db, "papers"))
	})
}

func TestGenerateResearchPostgres(t *testing.T) {
	src := generate(t, NewPostgres(), research.MustNew())
	for _, want := range []string{
		`  "id" bigint NOT NULL GENERATED BY DEFAULT AS IDENTITY,`,
		`  "acceptance" boolean NOT NULL DEFAULT false,`,
		`  "submitted_date" date NOT NULL,`,
		`  "kind" text NOT NULL,`,
		`  PRIMARY KEY ("id"),`,
		`CONSTRAINT "papers_event_id_fkey" FOREIGN KEY ("event_id") REFERENCES "research_events" ("id") ON DELETE CASCADE`,
		`CONSTRAINT "research_events_kind_check" CHECK (kind IN ('Conference', 'Symposium', 'Workshop'))`,
		`CREATE INDEX "papers_event_id" ON "papers" ("event_id");`,
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "AUTOINCREMENT")
}

func TestPlanLibrary(t *testing.T) {
	library := metamodel.MustClass("Library", metamodel.Attributes(
		metamodel.MustProperty("code", metamodel.StringType, metamodel.ID()),
		metamodel.MustProperty("tags", metamodel.StringType, metamodel.WithMultiplicity(metamodel.Many)),
		metamodel.MustProperty("rating", metamodel.FloatType, metamodel.WithMultiplicity(metamodel.ZeroOrOne), metamodel.WithDefault(2.5)),
	))
	book := metamodel.MustClass("Book")
	ebook := metamodel.MustClass("Ebook")
	address := metamodel.MustClass("Address")
	m, err := metamodel.NewDomainModel("Library",
		metamodel.WithClasses(library, book, ebook, address),
		metamodel.WithAssociations(
			metamodel.MustAssociation("holdings",
				metamodel.MustProperty("library", metamodel.TypeOf(library), metamodel.WithMultiplicity(metamodel.ZeroOrOne)),
				metamodel.MustProperty("books", metamodel.TypeOf(book), metamodel.WithMultiplicity(metamodel.Many)),
			),
			metamodel.MustAssociation("located_at",
				metamodel.MustProperty("library", metamodel.TypeOf(library), metamodel.Composite()),
				metamodel.MustProperty("address", metamodel.TypeOf(address)),
			),
		),
		metamodel.WithGeneralizationSets(metamodel.NewGeneralizationSet("formats", book,
			metamodel.MustGeneralization(book, ebook)).Disjoint()),
	)
	require.NoError(t, err)

	tables := plan(t, NewSQLite(), m)
	require.Len(t, tables, 4)

	libraries := tables["libraries"]
	require.NotNil(t, libraries)
	tags, ok := libraries.Column("tags")
	require.True(t, ok)
	assert.True(t, tags.Type.Null)
	assert.IsType(t, &schema.JSONType{}, tags.Type.Type)
	rating, ok := libraries.Column("rating")
	require.True(t, ok)
	assert.True(t, rating.Type.Null)
	assert.Equal(t, &schema.Literal{V: "2.5"}, rating.Default)
	idx, ok := libraries.Index("libraries_code_key")
	require.True(t, ok)
	assert.True(t, idx.Unique)

	books := tables["books"]
	kind, ok := books.Column(KindColumn)
	require.True(t, ok)
	assert.True(t, kind.Type.Null, "disjoint but incomplete hierarchies allow plain books")
	fk, ok := books.ForeignKey("books_library_id_fkey")
	require.True(t, ok)
	assert.Equal(t, schema.SetNull, fk.OnDelete)

	addresses := tables["addresses"]
	fk, ok = addresses.ForeignKey("addresses_library_id_fkey")
	require.True(t, ok)
	assert.Equal(t, schema.Cascade, fk.OnDelete)
	idx, ok = addresses.Index("addresses_library_id")
	require.True(t, ok)
	assert.True(t, idx.Unique, "one-to-one references are unique")

	ebooks := tables["ebooks"]
	fk, ok = ebooks.ForeignKey("ebooks_id_fkey")
	require.True(t, ok)
	assert.Equal(t, "books", fk.RefTable.Name)

	db := open(t, generate(t, NewSQLite(), m))
	_, err = db.Exec(`INSERT INTO libraries (id, code) VALUES (1, 'L1')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO libraries (id, code) VALUES (2, 'L1')`)
	assert.Error(t, err, "identifier attributes are unique")
	_, err = db.Exec(`INSERT INTO books (id, library_id) VALUES (1, 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM libraries WHERE id = 1`)
	require.NoError(t, err)
	var lib dbsql.NullInt64
	require.NoError(t, db.QueryRow(`SELECT library_id FROM books WHERE id = 1`).Scan(&lib))
	assert.False(t, lib.Valid, "optional references are cleared")
}

func TestPlanMultipleInheritance(t *testing.T) {
	a, b, c := metamodel.MustClass("A"), metamodel.MustClass("B"), metamodel.MustClass("C")
	m, err := metamodel.NewDomainModel("Diamond",
		metamodel.WithClasses(a, b, c),
		metamodel.WithGeneralizations(metamodel.MustGeneralization(a, c), metamodel.MustGeneralization(b, c)),
	)
	require.NoError(t, err)
	r := gen.NewRegistry()
	require.NoError(t, r.Register(NewPostgres()))
	e, err := gen.NewEngine(gen.WithRegistry(r))
	require.NoError(t, err)
	_, err = e.Run(context.Background(), m, Postgres, gen.NewMemorySink())
	assert.ErrorIs(t, err, gen.ErrUnsupportedModel)
}
