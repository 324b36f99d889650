package metamodel

// Generalization is an "is-a" edge from a specific class to a general class.
type Generalization struct {
	general  *Class
	specific *Class

	model *DomainModel
	seq   int
}

// NewGeneralization returns a generalization of specific into general and
// records the edge on both classes. A self edge is accepted and reported as
// a cycle by validation.
func NewGeneralization(general, specific *Class) (*Generalization, error) {
	switch {
	case general == nil:
		return nil, newModelError(ErrUnknownType, "generalization", "", "general class is nil")
	case specific == nil:
		return nil, newModelError(ErrUnknownType, "generalization", general.name, "specific class is nil")
	}
	g := &Generalization{general: general, specific: specific}
	specific.generals = append(specific.generals, g)
	general.specifics = append(general.specifics, g)
	return g, nil
}

// MustGeneralization is like NewGeneralization but panics on error.
func MustGeneralization(general, specific *Class) *Generalization {
	g, err := NewGeneralization(general, specific)
	if err != nil {
		panic(err)
	}
	return g
}

// General returns the general class.
func (g *Generalization) General() *Class { return g.general }

// Specific returns the specific class.
func (g *Generalization) Specific() *Class { return g.specific }

// Name returns "Specific->General".
func (g *Generalization) Name() string { return g.specific.name + "->" + g.general.name }

// String implements fmt.Stringer.
func (g *Generalization) String() string { return g.Name() }

// GeneralizationSet groups generalizations sharing one general class under
// disjoint and complete semantics.
type GeneralizationSet struct {
	name     string
	general  *Class
	members  []*Generalization
	disjoint bool
	complete bool

	model *DomainModel
	seq   int
}

// NewGeneralizationSet returns an overlapping, incomplete set named name
// over the given generalizations, declared for the given general class.
// A nil general defaults to the general class of the first member. Use
// Disjoint and Complete to change its semantics.
func NewGeneralizationSet(name string, general *Class, gens ...*Generalization) *GeneralizationSet {
	if general == nil && len(gens) > 0 && gens[0] != nil {
		general = gens[0].general
	}
	return &GeneralizationSet{
		name:    name,
		general: general,
		members: append([]*Generalization(nil), gens...),
	}
}

// Disjoint marks the set as disjoint: no instance belongs to two specific
// classes of the set.
func (s *GeneralizationSet) Disjoint() *GeneralizationSet {
	s.disjoint = true
	return s
}

// Complete marks the set as complete: every instance of the general class
// belongs to some specific class of the set.
func (s *GeneralizationSet) Complete() *GeneralizationSet {
	s.complete = true
	return s
}

// Add appends generalizations to the set.
func (s *GeneralizationSet) Add(gens ...*Generalization) *GeneralizationSet {
	s.members = append(s.members, gens...)
	return s
}

// Name returns the set name.
func (s *GeneralizationSet) Name() string { return s.name }

// General returns the declared general class.
func (s *GeneralizationSet) General() *Class { return s.general }

// Generalizations returns the members in declaration order.
func (s *GeneralizationSet) Generalizations() []*Generalization {
	return append([]*Generalization(nil), s.members...)
}

// IsDisjoint reports if the set is disjoint.
func (s *GeneralizationSet) IsDisjoint() bool { return s.disjoint }

// IsComplete reports if the set is complete.
func (s *GeneralizationSet) IsComplete() bool { return s.complete }

// Specifics returns the specific classes of the members ordered by name.
func (s *GeneralizationSet) Specifics() []*Class {
	classes := make([]*Class, 0, len(s.members))
	for _, g := range s.members {
		classes = append(classes, g.specific)
	}
	sortClasses(classes)
	return classes
}

// String implements fmt.Stringer.
func (s *GeneralizationSet) String() string { return s.name }
