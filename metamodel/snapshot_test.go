package metamodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func eventsModel(t *testing.T) *DomainModel {
	t.Helper()
	event := MustClass("ResearchEvent", Abstract(), Attributes(
		MustProperty("name", StringType),
		MustProperty("date", DateType, WithDefault(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))),
	))
	conf := MustClass("Conference", Attributes(MustProperty("rank", IntegerType, WithDefault(int64(1)))))
	ws := MustClass("Workshop", Attributes(MustProperty("score", FloatType, WithDefault(0.5))))
	paper := MustClass("Paper", Attributes(MustProperty("id", IntegerType, ID(), WithVisibility(Private))))
	set := NewGeneralizationSet("EventKind", event,
		MustGeneralization(event, ws),
		MustGeneralization(event, conf),
	).Disjoint().Complete()
	m, err := NewDomainModel("Events",
		WithClasses(paper, ws, event, conf),
		WithGeneralizationSets(set),
		WithAssociations(MustAssociation("papers",
			MustProperty("event", TypeOf(event), Composite(), Navigable(false)),
			MustProperty("papers", TypeOf(paper), WithMultiplicity(Many)),
		)),
	)
	require.NoError(t, err)
	return m
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := eventsModel(t)
	b, err := EncodeSnapshot(m)
	require.NoError(t, err)

	decoded, err := DecodeSnapshot(b)
	require.NoError(t, err)
	assert.True(t, Validate(decoded).OK())
	assert.Equal(t, m.Snapshot(), decoded.Snapshot())

	again, err := EncodeSnapshot(decoded)
	require.NoError(t, err)
	assert.Equal(t, b, again)

	event := decoded.Class("ResearchEvent")
	require.NotNil(t, event)
	assert.True(t, event.IsAbstract())
	sets := decoded.SetsOf(event)
	require.Len(t, sets, 1)
	assert.True(t, sets[0].IsDisjoint())
	assert.True(t, sets[0].IsComplete())
	end := decoded.Associations()[0].End("event")
	require.NotNil(t, end)
	assert.True(t, end.IsComposite())
	assert.False(t, end.IsNavigable())
	assert.True(t, decoded.Class("Paper").Property("id").IsID())
}

func TestDecodeSnapshotErrors(t *testing.T) {
	_, err := DecodeSnapshot([]byte("not msgpack"))
	assert.Error(t, err)

	s := eventsModel(t).Snapshot()
	s.Version = 99
	b, err := msgpack.Marshal(s)
	require.NoError(t, err)
	_, err = DecodeSnapshot(b)
	assert.ErrorContains(t, err, "unsupported snapshot version 99")

	s.Generalizations = append(s.Generalizations, GeneralizationSnapshot{General: "Missing", Specific: "Paper"})
	_, err = s.Model()
	assert.ErrorIs(t, err, ErrUnknownType)
}
