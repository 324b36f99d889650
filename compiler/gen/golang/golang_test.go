package golang

import (
	"context"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/examples/research"
	"github.com/syssam/umlgen/metamodel"
)

func generate(t *testing.T, a *Adapter, m *metamodel.DomainModel) (string, []byte) {
	t.Helper()
	r := gen.NewRegistry()
	require.NoError(t, r.Register(a))
	e, err := gen.NewEngine(gen.WithRegistry(r))
	require.NoError(t, err)
	sink := gen.NewMemorySink()
	_, err = e.Run(context.Background(), m, Name, sink)
	require.NoError(t, err)
	names := sink.Names()
	require.Len(t, names, 1)
	src, _ := sink.Get(names[0])
	return names[0], src
}

// typecheck parses and type-checks a generated file.
func typecheck(t *testing.T, src []byte) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "model.go", src, parser.ParseComments)
	require.NoError(t, err, string(src))
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	pkg, err := conf.Check(f.Name.Name, fset, []*ast.File{f}, nil)
	require.NoError(t, err, string(src))
	return pkg
}

func lookup(t *testing.T, pkg *types.Package, name string) types.Object {
	t.Helper()
	obj := pkg.Scope().Lookup(name)
	require.NotNil(t, obj, "%s is not declared", name)
	return obj
}

func field(t *testing.T, pkg *types.Package, typ, name string) (*types.Var, string) {
	t.Helper()
	st, ok := lookup(t, pkg, typ).Type().Underlying().(*types.Struct)
	require.True(t, ok, "%s is not a struct", typ)
	for i := range st.NumFields() {
		if f := st.Field(i); f.Name() == name {
			return f, st.Tag(i)
		}
	}
	require.Failf(t, "missing field", "%s.%s", typ, name)
	return nil, ""
}

func TestMappers(t *testing.T) {
	a := New()
	assert.Equal(t, "time.Time", a.TypeName(metamodel.DateType))
	assert.Equal(t, "float64", a.TypeName(metamodel.FloatType))
	assert.Equal(t, "ResearchEvent", a.TypeName(metamodel.ClassType("ResearchEvent")))
	assert.Equal(t, "[]int", a.CollectionWrapper(metamodel.Many, "int"))
	assert.Equal(t, "*string", a.CollectionWrapper(metamodel.ZeroOrOne, "string"))
	assert.Equal(t, "*Paper", a.CollectionWrapper(metamodel.ZeroOrOne, "*Paper"))
	assert.Equal(t, "SubmittedDate", a.FieldName(metamodel.MustProperty("submitted_date", metamodel.DateType)))
	assert.Equal(t, "ID", a.FieldName(metamodel.MustProperty("id", metamodel.IntegerType)))
	assert.True(t, a.Capabilities().MultipleInheritance)

	m := research.MustNew()
	clause, ok := a.InheritanceClause(m.Class("Conference"))
	require.True(t, ok)
	assert.Equal(t, "embeds ResearchEventBase", clause)
}

func TestFormat(t *testing.T) {
	out, err := New().Format("x.go", []byte("package x\nimport \"fmt\"\nvar _ = strings.ToUpper\n"))
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"fmt"`)
	assert.Contains(t, string(out), `"strings"`)
}

func TestGenerateSnapshot(t *testing.T) {
	r := gen.NewRegistry()
	require.NoError(t, r.Register(New()))
	e, err := gen.NewEngine(gen.WithRegistry(r), gen.WithFeatures(gen.FeatureSnapshot))
	require.NoError(t, err)
	sink := gen.NewMemorySink()
	_, err = e.Run(context.Background(), research.MustNew(), Name, sink)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"research.go", "umlgen/model.msgpack"}, sink.Names())

	b, ok := sink.Get("umlgen/model.msgpack")
	require.True(t, ok)
	m, err := metamodel.DecodeSnapshot(b)
	require.NoError(t, err)
	assert.Equal(t, research.Name, m.Name())

	src, _ := sink.Get("research.go")
	typecheck(t, src)

	out, err := New().Format("model.msgpack", b)
	require.NoError(t, err)
	assert.Equal(t, b, out, "non-Go fragments are not formatted")
}

func TestGenerateResearch(t *testing.T) {
	name, src := generate(t, New(), research.MustNew())
	assert.Equal(t, "research.go", name)
	assert.True(t, strings.HasPrefix(string(src), "// Code generated by umlgen. DO NOT EDIT.\n"))

	pkg := typecheck(t, src)
	assert.Equal(t, "research", pkg.Name())

	t.Run("sealed interface", func(t *testing.T) {
		iface, ok := lookup(t, pkg, "ResearchEvent").Type().Underlying().(*types.Interface)
		require.True(t, ok)
		for _, kind := range []string{"Conference", "Symposium", "Workshop"} {
			typ := types.NewPointer(lookup(t, pkg, kind).Type())
			assert.True(t, types.Implements(typ, iface), "%s implements ResearchEvent", kind)
		}
		for _, other := range []string{"ResearchEventBase", "Paper", "Researcher"} {
			typ := types.NewPointer(lookup(t, pkg, other).Type())
			assert.False(t, types.Implements(typ, iface), "%s does not implement ResearchEvent", other)
		}
		assert.Contains(t, string(src), "\tisResearchEvent()\n")
	})

	t.Run("kind enum", func(t *testing.T) {
		for kind, want := range map[string]string{
			"ResearchEventKindConference": `"Conference"`,
			"ResearchEventKindSymposium":  `"Symposium"`,
			"ResearchEventKindWorkshop":   `"Workshop"`,
		} {
			c, ok := lookup(t, pkg, kind).(*types.Const)
			require.True(t, ok)
			assert.Equal(t, want, c.Val().ExactString())
			assert.Equal(t, "research.ResearchEventKind", c.Type().String())
		}
		assert.NotNil(t, lookup(t, pkg, "ResearchEventKindValues"))
	})

	t.Run("fields", func(t *testing.T) {
		f, tag := field(t, pkg, "Paper", "SubmittedDate")
		assert.Equal(t, "time.Time", f.Type().String())
		assert.Equal(t, `json:"submitted_date"`, tag)

		f, _ = field(t, pkg, "Paper", "Authors")
		assert.Equal(t, "[]*research.Researcher", f.Type().String())

		f, _ = field(t, pkg, "Researcher", "OrganizedEvents")
		assert.Equal(t, "[]research.ResearchEvent", f.Type().String(), "sealed classes are held by interface")

		f, tag = field(t, pkg, "ResearchEventBase", "Papers")
		assert.Equal(t, "[]*research.Paper", f.Type().String())
		assert.Equal(t, `json:"papers,omitempty"`, tag)

		f, _ = field(t, pkg, "Conference", "ResearchEventBase")
		assert.True(t, f.Embedded())

		obj, _, _ := types.LookupFieldOrMethod(lookup(t, pkg, "Paper").Type(), true, pkg, "Event")
		assert.Nil(t, obj, "non-navigable ends have no field")
	})

	t.Run("constructor", func(t *testing.T) {
		fn, ok := lookup(t, pkg, "NewPaper").(*types.Func)
		require.True(t, ok)
		assert.Equal(t, "func() *research.Paper", fn.Type().String())
		assert.Contains(t, string(src), "p.Acceptance = false\n")
		assert.Nil(t, pkg.Scope().Lookup("NewResearcher"), "no constructor without defaults")
	})
}

func TestGenerateMultipleInheritance(t *testing.T) {
	a := metamodel.MustClass("Swimmer", metamodel.Attributes(metamodel.MustProperty("stroke", metamodel.StringType)))
	b := metamodel.MustClass("Runner", metamodel.Attributes(
		metamodel.MustProperty("pace", metamodel.FloatType, metamodel.WithDefault(4.5)),
	))
	c := metamodel.MustClass("Triathlete", metamodel.Attributes(
		metamodel.MustProperty("since", metamodel.DateType, metamodel.WithMultiplicity(metamodel.ZeroOrOne),
			metamodel.WithDefault(time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC))),
	))
	m, err := metamodel.NewDomainModel("Sport",
		metamodel.WithClasses(a, b, c),
		metamodel.WithGeneralizations(metamodel.MustGeneralization(a, c), metamodel.MustGeneralization(b, c)),
	)
	require.NoError(t, err)

	_, src := generate(t, New(WithPackage("athletics")), m)
	pkg := typecheck(t, src)
	assert.Equal(t, "athletics", pkg.Name())

	for _, embed := range []string{"Runner", "Swimmer"} {
		f, _ := field(t, pkg, "Triathlete", embed)
		assert.True(t, f.Embedded())
	}
	f, _ := field(t, pkg, "Triathlete", "Since")
	assert.Equal(t, "*time.Time", f.Type().String())
	assert.Contains(t, string(src), "t.Pace = 4.5\n")
	assert.Contains(t, string(src), "time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)")
	assert.Contains(t, string(src), "// Triathlete embeds Runner, Swimmer.\n")
}

func TestGenerateDisjointHierarchy(t *testing.T) {
	vehicle := metamodel.MustClass("Vehicle")
	car := metamodel.MustClass("Car")
	boat := metamodel.MustClass("Boat")
	gc, gb := metamodel.MustGeneralization(vehicle, car), metamodel.MustGeneralization(vehicle, boat)
	m, err := metamodel.NewDomainModel("Fleet",
		metamodel.WithClasses(vehicle, car, boat),
		metamodel.WithGeneralizationSets(metamodel.NewGeneralizationSet("vehicle_kind", vehicle, gc, gb).Disjoint()),
	)
	require.NoError(t, err)

	_, src := generate(t, New(), m)
	pkg := typecheck(t, src)

	vehicleKind := lookup(t, pkg, "Vehicle").Type()
	mset := types.NewMethodSet(types.NewPointer(vehicleKind))
	assert.NotNil(t, mset.Lookup(pkg, "VehicleKind"))

	f, _ := field(t, pkg, "Car", "Vehicle")
	assert.True(t, f.Embedded(), "open generals are embedded as structs")
	assert.Contains(t, string(src), "// Vehicle is a disjoint hierarchy of Boat and Car.\n")
	assert.Contains(t, string(src), "return VehicleKindCar\n")
}

func TestLiteral(t *testing.T) {
	for _, v := range []any{"s", true, 1, int64(2), uint8(3), float32(1.5), 2.5, time.Now()} {
		_, err := literal(v)
		assert.NoError(t, err, "%v", reflect.TypeOf(v))
	}
	_, err := literal([]string{})
	assert.Error(t, err)
}
