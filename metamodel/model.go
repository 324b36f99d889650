package metamodel

import (
	"cmp"
	"fmt"
	"slices"
)

// DomainModel is the aggregate root of a structural model. It owns its
// classes, associations, generalizations and generalization sets.
//
// All query methods return freshly allocated slices in a total order (by
// name, then by declaration order in the model), never in incidental
// container order. A DomainModel is not safe for concurrent mutation; it may
// be read concurrently once construction is finished.
type DomainModel struct {
	name            string
	classes         []*Class
	associations    []*Association
	generalizations []*Generalization
	sets            []*GeneralizationSet
	seq             int
}

// ModelOption configures a DomainModel on construction.
type ModelOption func(*DomainModel) error

// WithClasses adds classes to the model.
func WithClasses(classes ...*Class) ModelOption {
	return func(m *DomainModel) error {
		for _, c := range classes {
			if err := m.AddClass(c); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithAssociations adds associations to the model.
func WithAssociations(assocs ...*Association) ModelOption {
	return func(m *DomainModel) error {
		for _, a := range assocs {
			if err := m.AddAssociation(a); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithGeneralizations adds generalizations to the model.
func WithGeneralizations(gens ...*Generalization) ModelOption {
	return func(m *DomainModel) error {
		for _, g := range gens {
			if err := m.AddGeneralization(g); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithGeneralizationSets adds generalization sets to the model.
func WithGeneralizationSets(sets ...*GeneralizationSet) ModelOption {
	return func(m *DomainModel) error {
		for _, s := range sets {
			if err := m.AddGeneralizationSet(s); err != nil {
				return err
			}
		}
		return nil
	}
}

// NewDomainModel returns a new model with the given name.
func NewDomainModel(name string, opts ...ModelOption) (*DomainModel, error) {
	if name == "" {
		return nil, newModelError(ErrInvalidName, "model", "", "name cannot be empty")
	}
	m := &DomainModel{name: name}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Name returns the model name.
func (m *DomainModel) Name() string { return m.name }

func (m *DomainModel) next() int {
	m.seq++
	return m.seq
}

// AddClass adds c to the model. It fails with ErrDuplicateName if a class
// with the same name exists, and with ErrAlreadyOwned if c belongs to
// another model.
func (m *DomainModel) AddClass(c *Class) error {
	switch {
	case c == nil:
		return newModelError(ErrInvalidName, "class", "", "nil class")
	case c.model == m:
		return nil
	case c.model != nil:
		return newModelError(ErrAlreadyOwned, "class", c.name, fmt.Sprintf("class belongs to model %q", c.model.name))
	case m.Class(c.name) != nil:
		return newModelError(ErrDuplicateName, "class", c.name, fmt.Sprintf("class already defined in model %q", m.name))
	}
	c.model = m
	c.seq = m.next()
	m.classes = append(m.classes, c)
	return nil
}

// AddAssociation adds a to the model. Association names are unique within
// a model.
func (m *DomainModel) AddAssociation(a *Association) error {
	switch {
	case a == nil:
		return newModelError(ErrMalformedAssociation, "association", "", "nil association")
	case a.model == m:
		return nil
	case a.model != nil:
		return newModelError(ErrAlreadyOwned, "association", a.name, fmt.Sprintf("association belongs to model %q", a.model.name))
	}
	for _, other := range m.associations {
		if other.name == a.name {
			return newModelError(ErrDuplicateName, "association", a.name, fmt.Sprintf("association already defined in model %q", m.name))
		}
	}
	a.model = m
	a.seq = m.next()
	m.associations = append(m.associations, a)
	return nil
}

// AddGeneralization adds g to the model.
func (m *DomainModel) AddGeneralization(g *Generalization) error {
	switch {
	case g == nil:
		return newModelError(ErrUnknownType, "generalization", "", "nil generalization")
	case g.model == m:
		return nil
	case g.model != nil:
		return newModelError(ErrAlreadyOwned, "generalization", g.Name(), fmt.Sprintf("generalization belongs to model %q", g.model.name))
	}
	g.model = m
	g.seq = m.next()
	m.generalizations = append(m.generalizations, g)
	return nil
}

// AddGeneralizationSet adds s to the model, together with any member
// generalization not yet part of it.
func (m *DomainModel) AddGeneralizationSet(s *GeneralizationSet) error {
	switch {
	case s == nil:
		return newModelError(ErrInconsistentGeneralizationSet, "generalization set", "", "nil generalization set")
	case s.model == m:
		return nil
	case s.model != nil:
		return newModelError(ErrAlreadyOwned, "generalization set", s.name, fmt.Sprintf("set belongs to model %q", s.model.name))
	}
	for _, g := range s.members {
		if g == nil {
			return newModelError(ErrInconsistentGeneralizationSet, "generalization set", s.name, "nil member")
		}
		if err := m.AddGeneralization(g); err != nil {
			return err
		}
	}
	s.model = m
	s.seq = m.next()
	m.sets = append(m.sets, s)
	return nil
}

// Release detaches every element from the model so they can be composed
// into another model. The model is empty afterwards.
func (m *DomainModel) Release() {
	for _, c := range m.classes {
		c.model = nil
	}
	for _, a := range m.associations {
		a.model = nil
	}
	for _, g := range m.generalizations {
		g.model = nil
	}
	for _, s := range m.sets {
		s.model = nil
	}
	m.classes, m.associations, m.generalizations, m.sets = nil, nil, nil, nil
}

// Classes returns all classes ordered by name.
func (m *DomainModel) Classes() []*Class {
	classes := slices.Clone(m.classes)
	sortClasses(classes)
	return classes
}

// Class returns the class with the given name, or nil.
func (m *DomainModel) Class(name string) *Class {
	for _, c := range m.classes {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Contains reports if c is a class of the model.
func (m *DomainModel) Contains(c *Class) bool {
	return c != nil && c.model == m
}

// Associations returns all associations ordered by name.
func (m *DomainModel) Associations() []*Association {
	assocs := slices.Clone(m.associations)
	sortAssociations(assocs)
	return assocs
}

// Association returns the association with the given name, or nil.
func (m *DomainModel) Association(name string) *Association {
	for _, a := range m.associations {
		if a.name == name {
			return a
		}
	}
	return nil
}

// AssociationsOf returns the associations having an end typed by c.
func (m *DomainModel) AssociationsOf(c *Class) []*Association {
	var assocs []*Association
	for _, a := range m.associations {
		for _, e := range a.ends {
			if e.typ.Ref == c.name {
				assocs = append(assocs, a)
				break
			}
		}
	}
	sortAssociations(assocs)
	return assocs
}

// Generalizations returns all generalizations ordered by specific class
// name, then general class name.
func (m *DomainModel) Generalizations() []*Generalization {
	gens := slices.Clone(m.generalizations)
	sortGeneralizations(gens)
	return gens
}

// GeneralizationsOf returns the generalizations of the model in which c is
// either the general or the specific class.
func (m *DomainModel) GeneralizationsOf(c *Class) []*Generalization {
	var gens []*Generalization
	for _, g := range m.generalizations {
		if g.general == c || g.specific == c {
			gens = append(gens, g)
		}
	}
	sortGeneralizations(gens)
	return gens
}

// Parents returns the direct general classes of c ordered by name. Only
// generalizations of the model are considered.
func (m *DomainModel) Parents(c *Class) []*Class {
	var parents []*Class
	for _, g := range m.generalizations {
		if g.specific == c && !slices.Contains(parents, g.general) {
			parents = append(parents, g.general)
		}
	}
	sortClasses(parents)
	return parents
}

// Children returns the direct specific classes of c ordered by name.
func (m *DomainModel) Children(c *Class) []*Class {
	var children []*Class
	for _, g := range m.generalizations {
		if g.general == c && !slices.Contains(children, g.specific) {
			children = append(children, g.specific)
		}
	}
	sortClasses(children)
	return children
}

// Ancestors returns the transitive general classes of c in breadth-first
// order, each class once. Cycles are tolerated.
func (m *DomainModel) Ancestors(c *Class) []*Class {
	var (
		ancestors []*Class
		seen      = map[*Class]bool{c: true}
		queue     = []*Class{c}
	)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range m.Parents(cur) {
			if seen[p] {
				continue
			}
			seen[p] = true
			ancestors = append(ancestors, p)
			queue = append(queue, p)
		}
	}
	return ancestors
}

// GeneralizationSets returns all generalization sets ordered by name.
func (m *DomainModel) GeneralizationSets() []*GeneralizationSet {
	sets := slices.Clone(m.sets)
	slices.SortStableFunc(sets, func(a, b *GeneralizationSet) int {
		return cmp.Or(cmp.Compare(a.name, b.name), cmp.Compare(a.seq, b.seq))
	})
	return sets
}

// SetsOf returns the generalization sets declared for the general class c.
func (m *DomainModel) SetsOf(c *Class) []*GeneralizationSet {
	var sets []*GeneralizationSet
	for _, s := range m.GeneralizationSets() {
		if s.general == c {
			sets = append(sets, s)
		}
	}
	return sets
}

// AttributeScope selects the attributes returned by AttributesOf.
type AttributeScope uint8

const (
	// Own selects the attributes declared by the class itself.
	Own AttributeScope = iota
	// Inherited selects own attributes followed by the attributes of all
	// ancestors. An own attribute hides an inherited one of the same name,
	// and among ancestors the first in breadth-first order wins.
	Inherited
)

// AttributesOf returns the attributes of c in the given scope. Each group
// (own, then each ancestor) is ordered by attribute name.
func (m *DomainModel) AttributesOf(c *Class, scope AttributeScope) []*Property {
	attrs := sortedAttributes(c)
	if scope == Own {
		return attrs
	}
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		seen[a.name] = true
	}
	for _, anc := range m.Ancestors(c) {
		for _, a := range sortedAttributes(anc) {
			if seen[a.name] {
				continue
			}
			seen[a.name] = true
			attrs = append(attrs, a)
		}
	}
	return attrs
}

func sortedAttributes(c *Class) []*Property {
	attrs := slices.Clone(c.attrs)
	slices.SortStableFunc(attrs, func(a, b *Property) int {
		return cmp.Or(cmp.Compare(a.name, b.name), cmp.Compare(a.seq, b.seq))
	})
	return attrs
}

func sortClasses(classes []*Class) {
	slices.SortStableFunc(classes, func(a, b *Class) int {
		return cmp.Or(cmp.Compare(a.name, b.name), cmp.Compare(a.seq, b.seq))
	})
}

func sortAssociations(assocs []*Association) {
	slices.SortStableFunc(assocs, func(a, b *Association) int {
		return cmp.Or(cmp.Compare(a.name, b.name), cmp.Compare(a.seq, b.seq))
	})
}

func sortGeneralizations(gens []*Generalization) {
	slices.SortStableFunc(gens, func(a, b *Generalization) int {
		return cmp.Or(
			cmp.Compare(a.specific.name, b.specific.name),
			cmp.Compare(a.general.name, b.general.name),
			cmp.Compare(a.seq, b.seq),
		)
	})
}
