package gen

import (
	"maps"
	"text/template"

	"github.com/syssam/umlgen/metamodel"
)

// Context is the read-only rendering context of one generation run. It
// exposes the query operations of the domain model, in their total order,
// together with the mapping functions of the target adapter. A Context is
// built fresh by Engine.Resolve and never shared between runs.
type Context struct {
	model   *metamodel.DomainModel
	adapter Adapter
	config  *Config
	runID   string
}

// NewContext returns a context binding m to the adapter a. The Engine
// builds contexts itself; NewContext serves adapters and tests rendering
// without an engine.
func NewContext(m *metamodel.DomainModel, a Adapter, c *Config) *Context {
	if c == nil {
		c = DefaultConfig()
	}
	return &Context{model: m, adapter: a, config: c}
}

// Model returns the domain model of the run.
func (c *Context) Model() *metamodel.DomainModel { return c.model }

// Adapter returns the target adapter of the run.
func (c *Context) Adapter() Adapter { return c.adapter }

// Target returns the target identifier.
func (c *Context) Target() string { return c.adapter.Name() }

// RunID returns the identifier of the run.
func (c *Context) RunID() string { return c.runID }

// Header returns the configured header comment.
func (c *Context) Header() string { return c.config.Header }

// Capabilities returns the capabilities of the target.
func (c *Context) Capabilities() Capabilities { return CapabilitiesOf(c.adapter) }

// FeatureEnabled reports if the given feature name is enabled.
func (c *Context) FeatureEnabled(name string) (bool, error) {
	return c.config.FeatureEnabled(name)
}

// Classes returns all classes ordered by name.
func (c *Context) Classes() []*metamodel.Class { return c.model.Classes() }

// Associations returns all associations ordered by name.
func (c *Context) Associations() []*metamodel.Association { return c.model.Associations() }

// AssociationsOf returns the associations having an end typed by cls.
func (c *Context) AssociationsOf(cls *metamodel.Class) []*metamodel.Association {
	return c.model.AssociationsOf(cls)
}

// Generalizations returns all generalizations in total order.
func (c *Context) Generalizations() []*metamodel.Generalization {
	return c.model.Generalizations()
}

// GeneralizationsOf returns the generalizations in which cls is either
// the general or the specific class.
func (c *Context) GeneralizationsOf(cls *metamodel.Class) []*metamodel.Generalization {
	return c.model.GeneralizationsOf(cls)
}

// GeneralizationSets returns all generalization sets ordered by name.
func (c *Context) GeneralizationSets() []*metamodel.GeneralizationSet {
	return c.model.GeneralizationSets()
}

// Attributes returns the own attributes of cls ordered by name.
func (c *Context) Attributes(cls *metamodel.Class) []*metamodel.Property {
	return c.model.AttributesOf(cls, metamodel.Own)
}

// AllAttributes returns the own and inherited attributes of cls.
func (c *Context) AllAttributes(cls *metamodel.Class) []*metamodel.Property {
	return c.model.AttributesOf(cls, metamodel.Inherited)
}

// IDAttributes returns the own attributes of cls marked as identifiers.
func (c *Context) IDAttributes(cls *metamodel.Class) []*metamodel.Property {
	var ids []*metamodel.Property
	for _, a := range c.Attributes(cls) {
		if a.IsID() {
			ids = append(ids, a)
		}
	}
	return ids
}

// Parents returns the general classes of cls ordered by name.
func (c *Context) Parents(cls *metamodel.Class) []*metamodel.Class { return c.model.Parents(cls) }

// Children returns the specific classes of cls ordered by name.
func (c *Context) Children(cls *metamodel.Class) []*metamodel.Class { return c.model.Children(cls) }

// Hierarchy classifies cls as a general class.
func (c *Context) Hierarchy(cls *metamodel.Class) HierarchyKind { return HierarchyOf(cls) }

// Kinds returns the discriminator classes of the hierarchy rooted at cls.
func (c *Context) Kinds(cls *metamodel.Class) []*metamodel.Class { return Kinds(cls) }

// IsSealed reports if cls closes a sealed hierarchy and the target can
// express it.
func (c *Context) IsSealed(cls *metamodel.Class) bool {
	return HierarchyOf(cls) == HierarchySealed && c.Capabilities().SealedHierarchies
}

// IsAbstract reports if cls cannot be instantiated on its own.
func (c *Context) IsAbstract(cls *metamodel.Class) bool { return IsAbstract(cls) }

// SealedBy returns the sealed general class of cls, or nil.
func (c *Context) SealedBy(cls *metamodel.Class) *metamodel.Class { return SealedBy(cls) }

// Root returns the topmost general class of cls.
func (c *Context) Root(cls *metamodel.Class) *metamodel.Class { return Root(cls) }

// TypeName maps t through the adapter.
func (c *Context) TypeName(t metamodel.Type) string { return c.adapter.TypeName(t) }

// CollectionWrapper maps a multiplicity through the adapter.
func (c *Context) CollectionWrapper(m metamodel.Multiplicity, elem string) string {
	return c.adapter.CollectionWrapper(m, elem)
}

// FieldType returns the target type of p, wrapped per its multiplicity.
func (c *Context) FieldType(p *metamodel.Property) string {
	return c.adapter.CollectionWrapper(p.Multiplicity(), c.adapter.TypeName(p.Type()))
}

// FieldName maps p through the adapter.
func (c *Context) FieldName(p *metamodel.Property) string { return c.adapter.FieldName(p) }

// InheritanceClause returns the inheritance clause of cls, or "".
func (c *Context) InheritanceClause(cls *metamodel.Class) string {
	clause, _ := c.adapter.InheritanceClause(cls)
	return clause
}

// HasInheritance reports if cls has an inheritance clause.
func (c *Context) HasInheritance(cls *metamodel.Class) bool {
	_, ok := c.adapter.InheritanceClause(cls)
	return ok
}

// AssociationRole maps end through the adapter.
func (c *Context) AssociationRole(end *metamodel.Property) Role {
	return c.adapter.AssociationRole(end)
}

// Roles returns the navigable roles of cls: for every association in name
// order, the role of each end whose opposite end is typed by cls.
func (c *Context) Roles(cls *metamodel.Class) []Role {
	var roles []Role
	for _, a := range c.model.AssociationsOf(cls) {
		ends := a.Ends()
		for i, end := range ends {
			opposite := ends[1-i]
			if opposite.Type().Ref != cls.Name() || !end.IsNavigable() {
				continue
			}
			roles = append(roles, c.adapter.AssociationRole(end))
		}
	}
	return roles
}

// AllRoles returns the roles of cls and of its ancestors.
func (c *Context) AllRoles(cls *metamodel.Class) []Role {
	roles := c.Roles(cls)
	for _, anc := range c.model.Ancestors(cls) {
		roles = append(roles, c.Roles(anc)...)
	}
	return roles
}

// FuncMap returns the template functions of the run: the naming helpers,
// the context queries and the adapter functions.
func (c *Context) FuncMap() template.FuncMap {
	funcs := maps.Clone(Funcs)
	maps.Copy(funcs, template.FuncMap{
		"typeName":       c.TypeName,
		"collection":     c.CollectionWrapper,
		"fieldType":      c.FieldType,
		"fieldName":      c.FieldName,
		"inheritance":    c.InheritanceClause,
		"hasInheritance": c.HasInheritance,
		"role":           c.AssociationRole,
		"roles":          c.Roles,
		"attributes":     c.Attributes,
		"allAttributes":  c.AllAttributes,
		"parents":        c.Parents,
		"children":       c.Children,
		"hierarchy":      c.Hierarchy,
		"kinds":          c.Kinds,
		"sealed":         c.IsSealed,
		"abstract":       c.IsAbstract,
		"sealedBy":       c.SealedBy,
	})
	if p, ok := c.adapter.(FuncProvider); ok {
		maps.Copy(funcs, p.Funcs())
	}
	return funcs
}

// Scope returns the data of class templates for cls.
func (c *Context) Scope(cls *metamodel.Class) *ClassScope {
	return &ClassScope{Context: c, Class: cls}
}
