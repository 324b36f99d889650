package metamodel

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is the version written into encoded snapshots.
const SnapshotVersion = 1

// Snapshot is the serializable form of a DomainModel. Elements are stored in
// the total order of the model queries, so encoding the same model twice
// yields identical bytes.
type Snapshot struct {
	Version         int                      `msgpack:"version"`
	Name            string                   `msgpack:"name"`
	Classes         []ClassSnapshot          `msgpack:"classes"`
	Associations    []AssociationSnapshot    `msgpack:"associations,omitempty"`
	Generalizations []GeneralizationSnapshot `msgpack:"generalizations,omitempty"`
	Sets            []SetSnapshot            `msgpack:"sets,omitempty"`
}

// ClassSnapshot is the serializable form of a Class.
type ClassSnapshot struct {
	Name       string             `msgpack:"name"`
	Abstract   bool               `msgpack:"abstract,omitempty"`
	Attributes []PropertySnapshot `msgpack:"attributes,omitempty"`
}

// PropertySnapshot is the serializable form of a Property.
type PropertySnapshot struct {
	Name       string     `msgpack:"name"`
	Kind       Kind       `msgpack:"kind"`
	Ref        string     `msgpack:"ref,omitempty"`
	Default    any        `msgpack:"default,omitempty"`
	Visibility Visibility `msgpack:"visibility,omitempty"`
	Lower      int        `msgpack:"lower"`
	Upper      int        `msgpack:"upper"`
	Navigable  bool       `msgpack:"navigable"`
	Composite  bool       `msgpack:"composite,omitempty"`
	ID         bool       `msgpack:"id,omitempty"`
}

// AssociationSnapshot is the serializable form of an Association.
type AssociationSnapshot struct {
	Name string              `msgpack:"name"`
	Ends [2]PropertySnapshot `msgpack:"ends"`
}

// GeneralizationSnapshot is the serializable form of a Generalization.
type GeneralizationSnapshot struct {
	General  string `msgpack:"general"`
	Specific string `msgpack:"specific"`
}

// SetSnapshot is the serializable form of a GeneralizationSet.
type SetSnapshot struct {
	Name     string                   `msgpack:"name"`
	General  string                   `msgpack:"general"`
	Members  []GeneralizationSnapshot `msgpack:"members"`
	Disjoint bool                     `msgpack:"disjoint,omitempty"`
	Complete bool                     `msgpack:"complete,omitempty"`
}

// Snapshot returns the serializable form of the model.
func (m *DomainModel) Snapshot() *Snapshot {
	s := &Snapshot{Version: SnapshotVersion, Name: m.name}
	for _, c := range m.Classes() {
		cs := ClassSnapshot{Name: c.name, Abstract: c.abstract}
		for _, a := range sortedAttributes(c) {
			cs.Attributes = append(cs.Attributes, propertySnapshot(a))
		}
		s.Classes = append(s.Classes, cs)
	}
	for _, a := range m.Associations() {
		s.Associations = append(s.Associations, AssociationSnapshot{
			Name: a.name,
			Ends: [2]PropertySnapshot{propertySnapshot(a.ends[0]), propertySnapshot(a.ends[1])},
		})
	}
	for _, g := range m.Generalizations() {
		s.Generalizations = append(s.Generalizations, generalizationSnapshot(g))
	}
	for _, gs := range m.GeneralizationSets() {
		ss := SetSnapshot{Name: gs.name, Disjoint: gs.disjoint, Complete: gs.complete}
		if gs.general != nil {
			ss.General = gs.general.name
		}
		members := append([]*Generalization(nil), gs.members...)
		sortGeneralizations(members)
		for _, g := range members {
			ss.Members = append(ss.Members, generalizationSnapshot(g))
		}
		s.Sets = append(s.Sets, ss)
	}
	return s
}

func propertySnapshot(p *Property) PropertySnapshot {
	return PropertySnapshot{
		Name:       p.name,
		Kind:       p.typ.Kind,
		Ref:        p.typ.Ref,
		Default:    p.defaultValue,
		Visibility: p.visibility,
		Lower:      p.multiplicity.Lower,
		Upper:      p.multiplicity.Upper,
		Navigable:  p.navigable,
		Composite:  p.composite,
		ID:         p.id,
	}
}

func generalizationSnapshot(g *Generalization) GeneralizationSnapshot {
	return GeneralizationSnapshot{General: g.general.name, Specific: g.specific.name}
}

// EncodeSnapshot encodes the model with msgpack.
func EncodeSnapshot(m *DomainModel) ([]byte, error) {
	b, err := msgpack.Marshal(m.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("umlgen: encode snapshot of model %q: %w", m.name, err)
	}
	return b, nil
}

// DecodeSnapshot decodes a msgpack snapshot into a new, unvalidated model.
func DecodeSnapshot(b []byte) (*DomainModel, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("umlgen: decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("umlgen: unsupported snapshot version %d", s.Version)
	}
	return s.Model()
}

// Model rebuilds a DomainModel from the snapshot.
func (s *Snapshot) Model() (*DomainModel, error) {
	m, err := NewDomainModel(s.Name)
	if err != nil {
		return nil, err
	}
	for _, cs := range s.Classes {
		c, err := NewClass(cs.Name)
		if err != nil {
			return nil, err
		}
		c.abstract = cs.Abstract
		for _, ps := range cs.Attributes {
			p, err := ps.property()
			if err != nil {
				return nil, err
			}
			if err := c.AddProperty(p); err != nil {
				return nil, err
			}
		}
		if err := m.AddClass(c); err != nil {
			return nil, err
		}
	}
	for _, as := range s.Associations {
		var ends [2]*Property
		for i, ps := range as.Ends {
			p, err := ps.property()
			if err != nil {
				return nil, err
			}
			ends[i] = p
		}
		a, err := NewAssociation(as.Name, ends[0], ends[1])
		if err != nil {
			return nil, err
		}
		if err := m.AddAssociation(a); err != nil {
			return nil, err
		}
	}
	gens := make(map[GeneralizationSnapshot]*Generalization)
	for _, gs := range s.Generalizations {
		g, err := NewGeneralization(m.Class(gs.General), m.Class(gs.Specific))
		if err != nil {
			return nil, fmt.Errorf("umlgen: generalization %s->%s: %w", gs.Specific, gs.General, err)
		}
		if err := m.AddGeneralization(g); err != nil {
			return nil, err
		}
		gens[gs] = g
	}
	for _, ss := range s.Sets {
		set := NewGeneralizationSet(ss.Name, m.Class(ss.General))
		for _, gs := range ss.Members {
			g, ok := gens[gs]
			if !ok {
				return nil, newModelError(ErrUnknownType, "generalization set", ss.Name, fmt.Sprintf("unknown member %s->%s", gs.Specific, gs.General))
			}
			set.Add(g)
		}
		set.disjoint, set.complete = ss.Disjoint, ss.Complete
		if err := m.AddGeneralizationSet(set); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (ps PropertySnapshot) property() (*Property, error) {
	opts := []PropertyOption{
		WithVisibility(ps.Visibility),
		WithMultiplicity(Range(ps.Lower, ps.Upper)),
		Navigable(ps.Navigable),
	}
	if ps.Default != nil {
		opts = append(opts, WithDefault(normalizeDefault(ps.Kind, ps.Default)))
	}
	if ps.Composite {
		opts = append(opts, Composite())
	}
	if ps.ID {
		opts = append(opts, ID())
	}
	return NewProperty(ps.Name, Type{Kind: ps.Kind, Ref: ps.Ref}, opts...)
}

// normalizeDefault maps decoded msgpack values back to the values accepted
// by WithDefault: integers widen to int64, floats to float64 and dates move
// back to UTC.
func normalizeDefault(k Kind, v any) any {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case float32:
		return float64(n)
	case time.Time:
		if k == KindDate {
			return n.UTC()
		}
	}
	return v
}
