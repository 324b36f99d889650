package metamodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names[T interface{ Name() string }](elems []T) []string {
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.Name()
	}
	return out
}

func TestClassAddProperty(t *testing.T) {
	c := MustClass("Paper")
	require.NoError(t, c.AddProperty(MustProperty("title", StringType)))

	err := c.AddProperty(MustProperty("title", StringType))
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.True(t, IsModelError(err))

	owned := MustProperty("name", StringType)
	MustClass("Researcher", Attributes(owned))
	assert.ErrorIs(t, c.AddProperty(owned), ErrAlreadyOwned)

	assert.True(t, c.RemoveProperty("title"))
	assert.False(t, c.RemoveProperty("title"))
	assert.Nil(t, c.Property("title"))
	require.NoError(t, c.AddProperty(MustProperty("title", IntegerType)))
}

func TestNewAssociation(t *testing.T) {
	paper := func() *Property { return MustProperty("paper", ClassType("Paper")) }
	author := func() *Property { return MustProperty("author", ClassType("Researcher")) }

	t.Run("TwoEnds", func(t *testing.T) {
		a, err := NewAssociation("is_authored_by", paper(), author())
		require.NoError(t, err)
		ends := a.Ends()
		assert.Equal(t, "paper", ends[0].Name())
		assert.Same(t, ends[1], a.Opposite(ends[0]))
		assert.Same(t, ends[0], a.Opposite(ends[1]))
		assert.Nil(t, a.Opposite(paper()))
		assert.Same(t, a, ends[0].Association())
	})

	tests := []struct {
		name string
		ends []*Property
		kind error
	}{
		{"NoEnds", nil, ErrMalformedAssociation},
		{"OneEnd", []*Property{paper()}, ErrMalformedAssociation},
		{"ThreeEnds", []*Property{paper(), author(), author()}, ErrMalformedAssociation},
		{"NilEnd", []*Property{paper(), nil}, ErrMalformedAssociation},
		{"PrimitiveEnd", []*Property{paper(), MustProperty("x", StringType)}, ErrMalformedAssociation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAssociation("a", tt.ends...)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	t.Run("SameProperty", func(t *testing.T) {
		p := paper()
		_, err := NewAssociation("a", p, p)
		assert.ErrorIs(t, err, ErrMalformedAssociation)
	})

	t.Run("SameEndNames", func(t *testing.T) {
		colleagues := func() *Property {
			return MustProperty("colleagues", ClassType("Researcher"), WithMultiplicity(Many))
		}
		_, err := NewAssociation("collaborates", colleagues(), colleagues())
		assert.ErrorIs(t, err, ErrMalformedAssociation)
		assert.ErrorContains(t, err, `both ends are named "colleagues"`)
	})

	t.Run("OwnedEnd", func(t *testing.T) {
		p := paper()
		MustAssociation("first", p, author())
		_, err := NewAssociation("second", p, author())
		assert.ErrorIs(t, err, ErrMalformedAssociation)
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := NewAssociation("", paper(), author())
		assert.ErrorIs(t, err, ErrInvalidName)
	})
}

func TestDomainModelOwnership(t *testing.T) {
	paper := MustClass("Paper")
	m1, err := NewDomainModel("One", WithClasses(paper))
	require.NoError(t, err)
	assert.True(t, m1.Contains(paper))

	// Adding twice to the same model is a no-op.
	require.NoError(t, m1.AddClass(paper))
	assert.Len(t, m1.Classes(), 1)

	m2, err := NewDomainModel("Two")
	require.NoError(t, err)
	assert.ErrorIs(t, m2.AddClass(paper), ErrAlreadyOwned)
	assert.ErrorIs(t, m1.AddClass(MustClass("Paper")), ErrDuplicateName)

	m1.Release()
	assert.Empty(t, m1.Classes())
	require.NoError(t, m2.AddClass(paper))
	assert.Same(t, m2, paper.Model())

	_, err = NewDomainModel("")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestDomainModelOrdering(t *testing.T) {
	z, a, m := MustClass("Zeta"), MustClass("Alpha"), MustClass("Mid")
	model, err := NewDomainModel("Order",
		WithClasses(z, a, m),
		WithAssociations(
			MustAssociation("zz", MustProperty("a", TypeOf(a)), MustProperty("z", TypeOf(z))),
			MustAssociation("aa", MustProperty("m", TypeOf(m)), MustProperty("z", TypeOf(z))),
		),
		WithGeneralizations(MustGeneralization(a, z), MustGeneralization(a, m)),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, names(model.Classes()))
	assert.Equal(t, []string{"aa", "zz"}, names(model.Associations()))
	assert.Equal(t, []string{"aa"}, names(model.AssociationsOf(m)))
	assert.Equal(t, []string{"aa", "zz"}, names(model.AssociationsOf(z)))
	assert.Equal(t, []string{"Mid->Alpha", "Zeta->Alpha"}, names(model.Generalizations()))
	assert.Equal(t, []string{"Mid", "Zeta"}, names(model.Children(a)))
	assert.Equal(t, []string{"Alpha"}, names(model.Parents(z)))
	assert.Equal(t, []string{"Mid->Alpha", "Zeta->Alpha"}, names(model.GeneralizationsOf(a)))
	assert.Equal(t, []string{"Zeta->Alpha"}, names(model.GeneralizationsOf(z)))
	assert.Equal(t, "aa", model.Association("aa").Name())
	assert.Nil(t, model.Association("missing"))
}

func TestAttributesOf(t *testing.T) {
	// Diamond: D specializes B and C, both specializing A.
	a := MustClass("A", Attributes(MustProperty("id", IntegerType), MustProperty("name", StringType)))
	b := MustClass("B", Attributes(MustProperty("b", StringType)))
	c := MustClass("C", Attributes(MustProperty("c", StringType), MustProperty("name", StringType)))
	d := MustClass("D", Attributes(MustProperty("z", StringType), MustProperty("d", StringType)))
	m, err := NewDomainModel("Diamond",
		WithClasses(a, b, c, d),
		WithGeneralizations(
			MustGeneralization(a, b),
			MustGeneralization(a, c),
			MustGeneralization(b, d),
			MustGeneralization(c, d),
		),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"d", "z"}, names(m.AttributesOf(d, Own)))
	inherited := m.AttributesOf(d, Inherited)
	assert.Equal(t, []string{"d", "z", "b", "c", "name", "id"}, names(inherited))
	// C is visited before A, so C.name wins.
	assert.Same(t, c, inherited[4].Owner())
	assert.Equal(t, []string{"B", "C", "A"}, names(m.Ancestors(d)))
}

func TestAncestorsCycle(t *testing.T) {
	a, b := MustClass("A"), MustClass("B")
	m, err := NewDomainModel("Cycle",
		WithClasses(a, b),
		WithGeneralizations(MustGeneralization(a, b), MustGeneralization(b, a)),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(m.Ancestors(b)))
	assert.Equal(t, []string{"B"}, names(m.Ancestors(a)))
	assert.Len(t, m.AttributesOf(a, Inherited), 0)
}

func TestGeneralizationSet(t *testing.T) {
	event := MustClass("ResearchEvent", Abstract())
	conf, ws := MustClass("Conference"), MustClass("Workshop")
	g1, g2 := MustGeneralization(event, ws), MustGeneralization(event, conf)
	set := NewGeneralizationSet("EventKind", nil, g1, g2).Disjoint().Complete()
	assert.Same(t, event, set.General())
	assert.True(t, set.IsDisjoint())
	assert.True(t, set.IsComplete())
	assert.Equal(t, []string{"Conference", "Workshop"}, names(set.Specifics()))

	m, err := NewDomainModel("Events", WithClasses(event, conf, ws), WithGeneralizationSets(set))
	require.NoError(t, err)
	assert.Len(t, m.Generalizations(), 2)
	assert.Equal(t, []string{"EventKind"}, names(m.SetsOf(event)))
	assert.Empty(t, m.SetsOf(conf))
}
