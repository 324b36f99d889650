package gen

import (
	"slices"
	"strings"
	"text/template"

	"github.com/syssam/umlgen/metamodel"
)

// =============================================================================
// Target adapter contract
// =============================================================================

// TypeMapper maps metamodel types and properties to target identifiers.
type TypeMapper interface {
	// TypeName maps a primitive to its target type name, and a class
	// reference to its target identifier.
	TypeName(t metamodel.Type) string
	// CollectionWrapper returns the field type for values of type elem under
	// the given multiplicity, e.g. elem when upper is 1 and a list otherwise.
	CollectionWrapper(m metamodel.Multiplicity, elem string) string
	// FieldName sanitizes and cases a property name per target convention.
	FieldName(p *metamodel.Property) string
}

// HierarchyMapper maps generalizations to target inheritance.
type HierarchyMapper interface {
	// InheritanceClause renders the extends-style clause of a class from its
	// generalizations. It reports false if the class has none.
	InheritanceClause(c *metamodel.Class) (string, bool)
}

// RoleMapper maps association ends to target-facing roles.
type RoleMapper interface {
	// AssociationRole describes how the class at the opposite end navigates
	// to end.
	AssociationRole(end *metamodel.Property) Role
}

// Adapter is the per-target bundle of pure mapping functions and the
// template set consumed by the Engine. Adapters hold no generation state
// and must be safe for concurrent use.
//
//	┌──────────────────────────────────────────────┐
//	│                    Engine                    │
//	│  (Resolve → Render → Write, one run)         │
//	└──────────────────────┬───────────────────────┘
//	                       │ uses
//	                       ▼
//	┌──────────────────────────────────────────────┐
//	│                   Adapter                    │
//	│  TypeMapper, HierarchyMapper, RoleMapper,    │
//	│  Templates                                   │
//	└──────────────────────┬───────────────────────┘
//	                       │ implemented by
//	        ┌──────────────┼──────────────┐
//	        ▼              ▼              ▼
//	   gen/java       gen/rails      gen/golang ...
//
// New targets are added by implementing Adapter and registering it; neither
// the Engine nor the metamodel changes.
type Adapter interface {
	// Name returns the target identifier (e.g., "java", "rails").
	Name() string
	TypeMapper
	HierarchyMapper
	RoleMapper
	// Templates returns the template set of the target.
	Templates() TemplateSet
}

// Formatter is implemented by adapters that post-process rendered fragments,
// e.g. with goimports.
type Formatter interface {
	Format(name string, src []byte) ([]byte, error)
}

// CapabilityProvider is implemented by adapters declaring what the target
// can express. Adapters without it get the zero Capabilities.
type CapabilityProvider interface {
	Capabilities() Capabilities
}

// FuncProvider is implemented by adapters adding target-specific functions
// to the template FuncMap, e.g. literal rendering of default values.
type FuncProvider interface {
	Funcs() template.FuncMap
}

// Capabilities of a target.
type Capabilities struct {
	// SealedHierarchies reports if the target can close a hierarchy to a
	// fixed set of specific classes.
	SealedHierarchies bool
	// MultipleInheritance reports if a class may have several general classes.
	MultipleInheritance bool
}

// CapabilitiesOf returns the capabilities declared by a.
func CapabilitiesOf(a Adapter) Capabilities {
	if p, ok := a.(CapabilityProvider); ok {
		return p.Capabilities()
	}
	return Capabilities{}
}

// Role is the target-facing descriptor of an association end, as seen from
// the class at the opposite end. It is the single place where composite,
// navigability and multiplicity combine.
type Role struct {
	// Name is the target field name of the role.
	Name string
	// Type is the target type name of the class at the end.
	Type string
	// FieldType is Type wrapped per the end multiplicity.
	FieldType string
	// Class is the class at the end.
	Class *metamodel.Class
	// Collection reports if the role holds several instances.
	Collection bool
	// Optional reports if the role may be empty.
	Optional bool
	// Owned reports if the owner of the role exclusively owns the instances
	// of the role (the owner end is composite).
	Owned bool
	// Container reports if the role points to the whole owning the owner of
	// the role (the end itself is composite).
	Container bool
	// Navigable reports if the end is navigable.
	Navigable bool
	// End and Opposite are the association ends.
	End, Opposite *metamodel.Property
	// Association is the association of the ends.
	Association *metamodel.Association
}

// ManyToMany reports if both ends of the role are collections.
func (r Role) ManyToMany() bool {
	return r.Collection && r.Opposite != nil && r.Opposite.Multiplicity().IsCollection()
}

// NewRole builds the role of end using the mapper functions of m. Adapters
// call it from AssociationRole and adjust the result to their conventions.
func NewRole(m TypeMapper, end *metamodel.Property) Role {
	r := Role{
		Name:       m.FieldName(end),
		Type:       m.TypeName(end.Type()),
		Collection: end.Multiplicity().IsCollection(),
		Optional:   end.Multiplicity().IsOptional(),
		Container:  end.IsComposite(),
		Navigable:  end.IsNavigable(),
		End:        end,
	}
	r.FieldType = m.CollectionWrapper(end.Multiplicity(), r.Type)
	if a := end.Association(); a != nil {
		r.Association = a
		r.Opposite = a.Opposite(end)
		r.Owned = r.Opposite.IsComposite()
		if model := a.Model(); model != nil {
			r.Class = model.Class(end.Type().Ref)
		}
	}
	return r
}

// =============================================================================
// Hierarchy helpers shared by adapters
// =============================================================================

// HierarchyKind classifies a class as the general class of a hierarchy,
// from the flags of its generalization sets.
type HierarchyKind uint8

const (
	// HierarchyNone marks a class without specific classes.
	HierarchyNone HierarchyKind = iota
	// HierarchyOpen marks a general class whose specific classes are neither
	// disjoint nor complete.
	HierarchyOpen
	// HierarchyDisjoint marks a general class whose instances belong to at
	// most one specific class.
	HierarchyDisjoint
	// HierarchyAbstract marks a general class whose instances all belong to
	// some specific class.
	HierarchyAbstract
	// HierarchySealed marks a disjoint and complete hierarchy: every instance
	// belongs to exactly one specific class.
	HierarchySealed
)

// String returns the kind name.
func (k HierarchyKind) String() string {
	switch k {
	case HierarchyOpen:
		return "open"
	case HierarchyDisjoint:
		return "disjoint"
	case HierarchyAbstract:
		return "abstract"
	case HierarchySealed:
		return "sealed"
	default:
		return "none"
	}
}

// Parents returns the general classes of c ordered by name.
func Parents(c *metamodel.Class) []*metamodel.Class {
	if m := c.Model(); m != nil {
		return m.Parents(c)
	}
	var parents []*metamodel.Class
	for _, g := range c.Generalizations() {
		if !slices.Contains(parents, g.General()) {
			parents = append(parents, g.General())
		}
	}
	slices.SortFunc(parents, func(a, b *metamodel.Class) int { return strings.Compare(a.Name(), b.Name()) })
	return parents
}

// Children returns the specific classes of c ordered by name.
func Children(c *metamodel.Class) []*metamodel.Class {
	if m := c.Model(); m != nil {
		return m.Children(c)
	}
	var children []*metamodel.Class
	for _, g := range c.Specializations() {
		if !slices.Contains(children, g.Specific()) {
			children = append(children, g.Specific())
		}
	}
	slices.SortFunc(children, func(a, b *metamodel.Class) int { return strings.Compare(a.Name(), b.Name()) })
	return children
}

// HierarchyOf classifies c from the generalization sets declared for it.
func HierarchyOf(c *metamodel.Class) HierarchyKind {
	if len(Children(c)) == 0 {
		return HierarchyNone
	}
	var disjoint, complete bool
	if m := c.Model(); m != nil {
		for _, s := range m.SetsOf(c) {
			if s.IsDisjoint() && s.IsComplete() {
				return HierarchySealed
			}
			disjoint = disjoint || s.IsDisjoint()
			complete = complete || s.IsComplete()
		}
	}
	switch {
	case complete:
		return HierarchyAbstract
	case disjoint:
		return HierarchyDisjoint
	default:
		return HierarchyOpen
	}
}

// Kinds returns the specific classes of c that are members of a disjoint
// generalization set of c, ordered by name. They form the discriminator tags
// of the hierarchy.
func Kinds(c *metamodel.Class) []*metamodel.Class {
	m := c.Model()
	if m == nil {
		return nil
	}
	var kinds []*metamodel.Class
	for _, s := range m.SetsOf(c) {
		if !s.IsDisjoint() {
			continue
		}
		for _, sc := range s.Specifics() {
			if !slices.Contains(kinds, sc) {
				kinds = append(kinds, sc)
			}
		}
	}
	slices.SortFunc(kinds, func(a, b *metamodel.Class) int { return strings.Compare(a.Name(), b.Name()) })
	return kinds
}

// Root returns the topmost general class of c following the first parent
// at each level, or c itself. Cycles are cut.
func Root(c *metamodel.Class) *metamodel.Class {
	seen := map[*metamodel.Class]bool{c: true}
	for {
		parents := Parents(c)
		if len(parents) == 0 || seen[parents[0]] {
			return c
		}
		c = parents[0]
		seen[c] = true
	}
}

// IsAbstract reports if instances of c cannot exist on their own: the class
// is declared abstract, or its hierarchy is complete.
func IsAbstract(c *metamodel.Class) bool {
	if c.IsAbstract() {
		return true
	}
	k := HierarchyOf(c)
	return k == HierarchyAbstract || k == HierarchySealed
}

// SealedBy returns the general class whose sealed hierarchy c belongs to as
// a specific class, or nil.
func SealedBy(c *metamodel.Class) *metamodel.Class {
	for _, p := range Parents(c) {
		if HierarchyOf(p) == HierarchySealed && slices.Contains(Kinds(p), c) {
			return p
		}
	}
	return nil
}

// ForeignKeyEnd returns the end of a stored as a foreign key next to the
// class at its opposite end, or nil for many-to-many associations. Between
// two single ends, the composite end is referenced by the part, and the
// first end otherwise.
func ForeignKeyEnd(a *metamodel.Association) *metamodel.Property {
	if a == nil {
		return nil
	}
	e := a.Ends()
	c0, c1 := e[0].Multiplicity().IsCollection(), e[1].Multiplicity().IsCollection()
	switch {
	case c0 && c1:
		return nil
	case c0:
		return e[1]
	case c1:
		return e[0]
	case e[1].IsComposite():
		return e[1]
	default:
		return e[0]
	}
}
