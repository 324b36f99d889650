package metamodel

import "fmt"

// Class is a named classifier owning a set of attributes. Generalization
// edges are recorded on both classes they connect.
type Class struct {
	name     string
	abstract bool
	attrs    []*Property
	byName   map[string]*Property
	nextSeq  int

	// generals holds the edges where the class is the specific class,
	// specifics the edges where it is the general class.
	generals  []*Generalization
	specifics []*Generalization

	model *DomainModel
	seq   int
}

// ClassOption configures a Class on construction.
type ClassOption func(*Class) error

// Abstract marks the class as abstract.
func Abstract() ClassOption {
	return func(c *Class) error {
		c.abstract = true
		return nil
	}
}

// Attributes adds the given properties to the class in order.
func Attributes(props ...*Property) ClassOption {
	return func(c *Class) error {
		for _, p := range props {
			if err := c.AddProperty(p); err != nil {
				return err
			}
		}
		return nil
	}
}

// NewClass returns a new class.
func NewClass(name string, opts ...ClassOption) (*Class, error) {
	if name == "" {
		return nil, newModelError(ErrInvalidName, "class", "", "name cannot be empty")
	}
	c := &Class{
		name:   name,
		byName: make(map[string]*Property),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustClass is like NewClass but panics on error.
func MustClass(name string, opts ...ClassOption) *Class {
	c, err := NewClass(name, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// SetName renames the class. Uniqueness of the new name is checked when the
// owning model is validated.
func (c *Class) SetName(name string) { c.name = name }

// IsAbstract reports if the class is abstract.
func (c *Class) IsAbstract() bool { return c.abstract }

// SetAbstract sets the abstract flag.
func (c *Class) SetAbstract(abstract bool) { c.abstract = abstract }

// Model returns the owning model, or nil.
func (c *Class) Model() *DomainModel { return c.model }

// AddProperty adds p to the own attributes of the class. It fails with
// ErrDuplicateName if an own attribute has the same name, and with
// ErrAlreadyOwned if p is already owned by another element.
func (c *Class) AddProperty(p *Property) error {
	if p == nil {
		return newModelError(ErrInvalidProperty, "class", c.name, "nil property")
	}
	if _, ok := c.byName[p.name]; ok {
		return newModelError(ErrDuplicateName, "property", c.name+"."+p.name, "attribute already defined")
	}
	if p.owned() {
		return newModelError(ErrAlreadyOwned, "property", p.QualifiedName(), fmt.Sprintf("cannot add to class %q: property is already owned", c.name))
	}
	p.owner = c
	p.seq = c.nextSeq
	c.nextSeq++
	c.attrs = append(c.attrs, p)
	c.byName[p.name] = p
	return nil
}

// RemoveProperty removes the own attribute with the given name and reports
// whether it existed.
func (c *Class) RemoveProperty(name string) bool {
	p, ok := c.byName[name]
	if !ok {
		return false
	}
	delete(c.byName, name)
	for i, a := range c.attrs {
		if a == p {
			c.attrs = append(c.attrs[:i:i], c.attrs[i+1:]...)
			break
		}
	}
	p.owner = nil
	return true
}

// Property returns the own attribute with the given name, or nil.
func (c *Class) Property(name string) *Property { return c.byName[name] }

// Properties returns the own attributes in declaration order.
func (c *Class) Properties() []*Property {
	return append([]*Property(nil), c.attrs...)
}

// Generalizations returns the edges in which c is the specific class.
func (c *Class) Generalizations() []*Generalization {
	return append([]*Generalization(nil), c.generals...)
}

// Specializations returns the edges in which c is the general class.
func (c *Class) Specializations() []*Generalization {
	return append([]*Generalization(nil), c.specifics...)
}

// String implements fmt.Stringer.
func (c *Class) String() string { return c.name }
