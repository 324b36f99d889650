package metamodel

import "strconv"

// Unbounded is the upper bound of a multiplicity without limit ("*").
const Unbounded = -1

// Multiplicity is a (lower, upper) cardinality range. Upper is either a
// non-negative integer or Unbounded.
type Multiplicity struct {
	Lower int
	Upper int
}

// Common multiplicities.
var (
	One       = Multiplicity{Lower: 1, Upper: 1}
	ZeroOrOne = Multiplicity{Lower: 0, Upper: 1}
	Many      = Multiplicity{Lower: 0, Upper: Unbounded}
	OneOrMore = Multiplicity{Lower: 1, Upper: Unbounded}
)

// Range returns the multiplicity lower..upper.
func Range(lower, upper int) Multiplicity {
	return Multiplicity{Lower: lower, Upper: upper}
}

// IsUnbounded reports if the upper bound is unbounded.
func (m Multiplicity) IsUnbounded() bool { return m.Upper == Unbounded }

// IsCollection reports if more than one value is allowed.
func (m Multiplicity) IsCollection() bool { return m.IsUnbounded() || m.Upper > 1 }

// IsOptional reports if no value is allowed.
func (m Multiplicity) IsOptional() bool { return m.Lower == 0 }

// Valid reports whether the bounds are consistent.
func (m Multiplicity) Valid() bool {
	if m.Lower < 0 {
		return false
	}
	return m.IsUnbounded() || (m.Upper >= m.Lower && m.Upper > 0)
}

// String returns the UML notation of the range, e.g. "0..*" or "1".
func (m Multiplicity) String() string {
	upper := "*"
	if !m.IsUnbounded() {
		upper = strconv.Itoa(m.Upper)
	}
	if !m.IsUnbounded() && m.Lower == m.Upper {
		return upper
	}
	return strconv.Itoa(m.Lower) + ".." + upper
}

// Visibility of a property.
type Visibility uint8

// Visibility kinds.
const (
	Public Visibility = iota
	Private
	Protected
	Package
)

// String returns the visibility name.
func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Protected:
		return "protected"
	case Package:
		return "package"
	default:
		return "public"
	}
}

// Property is a typed, named structural feature. The same construct is used
// for class attributes and association ends; a property is owned by exactly
// one Class or one Association.
type Property struct {
	name         string
	typ          Type
	defaultValue any
	visibility   Visibility
	multiplicity Multiplicity
	navigable    bool
	composite    bool
	id           bool

	owner       *Class
	association *Association
	// seq is the declaration order within the owner.
	seq int
}

// PropertyOption configures a Property on construction.
type PropertyOption func(*Property) error

// WithDefault sets the default value. It must match the property type.
func WithDefault(v any) PropertyOption {
	return func(p *Property) error {
		if err := checkDefault(p.typ, v); err != nil {
			return err
		}
		p.defaultValue = v
		return nil
	}
}

// WithVisibility sets the property visibility.
func WithVisibility(v Visibility) PropertyOption {
	return func(p *Property) error {
		p.visibility = v
		return nil
	}
}

// WithMultiplicity sets the property multiplicity. Bounds are checked by
// validation, not here, so that models can be corrected before generation.
func WithMultiplicity(m Multiplicity) PropertyOption {
	return func(p *Property) error {
		p.multiplicity = m
		return nil
	}
}

// Navigable sets the navigability of an association end.
func Navigable(navigable bool) PropertyOption {
	return func(p *Property) error {
		p.navigable = navigable
		return nil
	}
}

// Composite marks an association end as the whole in a composition: the
// class at this end exclusively owns the instances at the other end.
func Composite() PropertyOption {
	return func(p *Property) error {
		p.composite = true
		return nil
	}
}

// ID marks the attribute as an identifier of its class.
func ID() PropertyOption {
	return func(p *Property) error {
		p.id = true
		return nil
	}
}

// NewProperty returns a new property. Properties are navigable and have
// multiplicity 1 unless configured otherwise.
func NewProperty(name string, t Type, opts ...PropertyOption) (*Property, error) {
	if name == "" {
		return nil, newModelError(ErrInvalidName, "property", "", "name cannot be empty")
	}
	if !t.Valid() {
		return nil, newModelError(ErrUnknownType, "property", name, "invalid type "+t.String())
	}
	p := &Property{
		name:         name,
		typ:          t,
		multiplicity: One,
		navigable:    true,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, &ModelError{Kind: ErrInvalidProperty, Element: "property", Name: name, Cause: err}
		}
	}
	return p, nil
}

// MustProperty is like NewProperty but panics on error.
func MustProperty(name string, t Type, opts ...PropertyOption) *Property {
	p, err := NewProperty(name, t, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the property name.
func (p *Property) Name() string { return p.name }

// Type returns the property type.
func (p *Property) Type() Type { return p.typ }

// Default returns the default value, or nil.
func (p *Property) Default() any { return p.defaultValue }

// HasDefault reports if the property has a default value.
func (p *Property) HasDefault() bool { return p.defaultValue != nil }

// Visibility returns the property visibility.
func (p *Property) Visibility() Visibility { return p.visibility }

// Multiplicity returns the property multiplicity.
func (p *Property) Multiplicity() Multiplicity { return p.multiplicity }

// IsNavigable reports if the end can be navigated to.
func (p *Property) IsNavigable() bool { return p.navigable }

// IsComposite reports if the class at this end owns the other end.
func (p *Property) IsComposite() bool { return p.composite }

// IsID reports if the attribute identifies its class.
func (p *Property) IsID() bool { return p.id }

// Owner returns the owning class of an attribute, or nil.
func (p *Property) Owner() *Class { return p.owner }

// Association returns the association of an end, or nil.
func (p *Property) Association() *Association { return p.association }

// IsEnd reports if the property is an association end.
func (p *Property) IsEnd() bool { return p.association != nil }

// QualifiedName returns "Owner.name" for attributes and "association.name"
// for association ends.
func (p *Property) QualifiedName() string {
	switch {
	case p.owner != nil:
		return p.owner.name + "." + p.name
	case p.association != nil:
		return p.association.name + "." + p.name
	default:
		return p.name
	}
}

func (p *Property) owned() bool { return p.owner != nil || p.association != nil }
