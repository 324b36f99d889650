package metamodel

import "fmt"

// Association is a binary association between two classes. Each end is a
// Property typed by the class it points to; its multiplicity constrains how
// many instances of that class relate to one instance at the other end.
type Association struct {
	name string
	ends [2]*Property

	model *DomainModel
	seq   int
}

// NewAssociation returns a new association with the given ends. It fails
// with ErrMalformedAssociation unless there are exactly two unowned,
// class-typed ends with distinct names.
func NewAssociation(name string, ends ...*Property) (*Association, error) {
	if name == "" {
		return nil, newModelError(ErrInvalidName, "association", "", "name cannot be empty")
	}
	if len(ends) != 2 {
		return nil, newModelError(ErrMalformedAssociation, "association", name, fmt.Sprintf("expected exactly 2 ends, got %d", len(ends)))
	}
	for i, e := range ends {
		switch {
		case e == nil:
			return nil, newModelError(ErrMalformedAssociation, "association", name, fmt.Sprintf("end %d is nil", i))
		case !e.typ.IsClass():
			return nil, newModelError(ErrMalformedAssociation, "association", name, fmt.Sprintf("end %q must be typed by a class, got %s", e.name, e.typ))
		case e.owned():
			return nil, newModelError(ErrMalformedAssociation, "association", name, fmt.Sprintf("end %q is already owned by %s", e.name, e.QualifiedName()))
		}
	}
	if ends[0] == ends[1] {
		return nil, newModelError(ErrMalformedAssociation, "association", name, "both ends are the same property")
	}
	if ends[0].name == ends[1].name {
		return nil, newModelError(ErrMalformedAssociation, "association", name, fmt.Sprintf("both ends are named %q", ends[0].name))
	}
	a := &Association{name: name, ends: [2]*Property{ends[0], ends[1]}}
	for i, e := range a.ends {
		e.association = a
		e.seq = i
	}
	return a, nil
}

// MustAssociation is like NewAssociation but panics on error.
func MustAssociation(name string, ends ...*Property) *Association {
	a, err := NewAssociation(name, ends...)
	if err != nil {
		panic(err)
	}
	return a
}

// Name returns the association name.
func (a *Association) Name() string { return a.name }

// Ends returns both ends in declaration order.
func (a *Association) Ends() [2]*Property { return a.ends }

// End returns the end with the given name, or nil.
func (a *Association) End(name string) *Property {
	for _, e := range a.ends {
		if e.name == name {
			return e
		}
	}
	return nil
}

// Opposite returns the other end of the association, or nil if end does not
// belong to a.
func (a *Association) Opposite(end *Property) *Property {
	switch end {
	case a.ends[0]:
		return a.ends[1]
	case a.ends[1]:
		return a.ends[0]
	default:
		return nil
	}
}

// CompositeEnds returns the ends marked composite.
func (a *Association) CompositeEnds() []*Property {
	var ends []*Property
	for _, e := range a.ends {
		if e.composite {
			ends = append(ends, e)
		}
	}
	return ends
}

// IsComposition reports if exactly one end is composite.
func (a *Association) IsComposition() bool { return len(a.CompositeEnds()) == 1 }

// IsManyToMany reports if both ends allow collections.
func (a *Association) IsManyToMany() bool {
	return a.ends[0].multiplicity.IsCollection() && a.ends[1].multiplicity.IsCollection()
}

// Model returns the owning model, or nil.
func (a *Association) Model() *DomainModel { return a.model }

// String implements fmt.Stringer.
func (a *Association) String() string { return a.name }
