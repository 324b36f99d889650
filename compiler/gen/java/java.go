// Package java provides the Java target of umlgen.
//
// Every class becomes a <Class>.java file under the directories of the
// configured package. Sealed hierarchies become sealed abstract classes
// with final specific classes, and disjoint generalization sets produce a
// <General>Kind enum used as discriminator.
package java

import (
	"embed"
	"fmt"
	"math"
	"path"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/metamodel"
)

// Name is the target identifier.
const Name = "java"

//go:embed template/*.tmpl
var templates embed.FS

type (
	// Adapter maps domain models to Java sources.
	Adapter struct {
		pkg string
	}

	// Option configures the Adapter.
	Option func(*Adapter)
)

// WithPackage sets the Java package of the generated classes,
// e.g. "org.example.research".
func WithPackage(pkg string) Option {
	return func(a *Adapter) {
		a.pkg = pkg
	}
}

// New returns a Java adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements gen.Adapter.
func (*Adapter) Name() string { return Name }

// Package returns the Java package of the generated classes.
func (a *Adapter) Package() string { return a.pkg }

// TypeName implements gen.TypeMapper.
func (*Adapter) TypeName(t metamodel.Type) string {
	switch t.Kind {
	case metamodel.KindString:
		return "String"
	case metamodel.KindInteger:
		return "int"
	case metamodel.KindBoolean:
		return "boolean"
	case metamodel.KindDate:
		return "LocalDate"
	case metamodel.KindFloat:
		return "float"
	case metamodel.KindClass:
		return gen.Pascal(t.Ref)
	default:
		return "Object"
	}
}

// boxed returns the reference type of a Java primitive.
func boxed(elem string) string {
	switch elem {
	case "int":
		return "Integer"
	case "boolean":
		return "Boolean"
	case "float":
		return "Float"
	default:
		return elem
	}
}

// CollectionWrapper implements gen.TypeMapper. Collections are lists of
// boxed elements; optional primitives are boxed to admit null.
func (*Adapter) CollectionWrapper(m metamodel.Multiplicity, elem string) string {
	switch {
	case m.IsCollection():
		return "List<" + boxed(elem) + ">"
	case m.IsOptional():
		return boxed(elem)
	default:
		return elem
	}
}

// FieldName implements gen.TypeMapper.
func (*Adapter) FieldName(p *metamodel.Property) string {
	name := gen.Camel(p.Name())
	if _, ok := keywords[name]; ok {
		name += "_"
	}
	return name
}

// InheritanceClause implements gen.HierarchyMapper. Java classes extend a
// single general class.
func (a *Adapter) InheritanceClause(c *metamodel.Class) (string, bool) {
	parents := gen.Parents(c)
	if len(parents) == 0 {
		return "", false
	}
	return "extends " + gen.Pascal(parents[0].Name()), true
}

// AssociationRole implements gen.RoleMapper.
func (a *Adapter) AssociationRole(end *metamodel.Property) gen.Role {
	return gen.NewRole(a, end)
}

// Capabilities implements gen.CapabilityProvider.
func (*Adapter) Capabilities() gen.Capabilities {
	return gen.Capabilities{SealedHierarchies: true}
}

// Templates implements gen.Adapter.
func (a *Adapter) Templates() gen.TemplateSet {
	return gen.TemplateSet{
		Name: Name,
		Parse: func(t *template.Template) (*template.Template, error) {
			return t.ParseFS(templates, "template/*.tmpl")
		},
		Class: []gen.ClassTemplate{
			{
				Name:   "java/class",
				Format: func(_ *gen.Context, c *metamodel.Class) string { return a.file(gen.Pascal(c.Name())) },
			},
			{
				Name:   "java/enum",
				Format: func(_ *gen.Context, c *metamodel.Class) string { return a.file(kindType(c)) },
				Cond:   func(_ *gen.Context, c *metamodel.Class) bool { return len(gen.Kinds(c)) > 0 },
			},
		},
	}
}

// Funcs implements gen.FuncProvider.
func (a *Adapter) Funcs() template.FuncMap {
	return template.FuncMap{
		"javaPackage": a.Package,
		"className":   func(c *metamodel.Class) string { return gen.Pascal(c.Name()) },
		"declaration": a.declaration,
		"imports":     imports,
		"initializer": initializer,
		"vis":         visibility,
		"getter":      getter,
		"setter":      func(p *metamodel.Property) string { return "set" + gen.Pascal(p.Name()) },
		"constant":    constant,
		"kindType":    kindType,
		"kindMethod":  kindMethod,
		"kindOwners":  kindOwners,
		"tagged":      tagged,
	}
}

// file returns the fragment name of the Java type named typ.
func (a *Adapter) file(typ string) string {
	return path.Join(strings.ReplaceAll(a.pkg, ".", "/"), typ+".java")
}

// declaration returns the class declaration line up to the opening brace.
func (a *Adapter) declaration(c *metamodel.Class) string {
	var (
		b        strings.Builder
		sealed   = gen.HierarchyOf(c) == gen.HierarchySealed
		children = gen.Children(c)
	)
	b.WriteString("public ")
	switch {
	case sealed:
		b.WriteString("abstract sealed ")
	case gen.IsAbstract(c):
		b.WriteString("abstract ")
	}
	if !sealed && sealedParent(c) {
		if len(children) == 0 && !c.IsAbstract() {
			b.WriteString("final ")
		} else {
			b.WriteString("non-sealed ")
		}
	}
	b.WriteString("class ")
	b.WriteString(gen.Pascal(c.Name()))
	if clause, ok := a.InheritanceClause(c); ok {
		b.WriteString(" " + clause)
	}
	if sealed {
		names := make([]string, len(children))
		for i, child := range children {
			names[i] = gen.Pascal(child.Name())
		}
		b.WriteString(" permits " + strings.Join(names, ", "))
	}
	return b.String()
}

// sealedParent reports if the superclass of c is sealed. Subclasses of a
// sealed class must be final, sealed or non-sealed.
func sealedParent(c *metamodel.Class) bool {
	parents := gen.Parents(c)
	return len(parents) > 0 && gen.HierarchyOf(parents[0]) == gen.HierarchySealed
}

// imports returns the sorted import list of a class.
func imports(attrs []*metamodel.Property, roles []gen.Role) []string {
	set := make(map[string]struct{})
	for _, p := range attrs {
		if p.Type().Kind == metamodel.KindDate {
			set["java.time.LocalDate"] = struct{}{}
		}
		if p.Multiplicity().IsCollection() {
			set["java.util.ArrayList"] = struct{}{}
			set["java.util.List"] = struct{}{}
		}
	}
	for _, r := range roles {
		if !r.Collection {
			continue
		}
		set["java.util.ArrayList"] = struct{}{}
		set["java.util.List"] = struct{}{}
		if r.Owned {
			set["java.util.Collections"] = struct{}{}
		}
	}
	list := make([]string, 0, len(set))
	for imp := range set {
		list = append(list, imp)
	}
	slices.Sort(list)
	return list
}

// initializer returns the field initializer of an attribute, or "".
func initializer(p *metamodel.Property) (string, error) {
	if p.Multiplicity().IsCollection() {
		return "new ArrayList<>()", nil
	}
	if !p.HasDefault() {
		return "", nil
	}
	return literal(p.Default())
}

// literal renders v as a Java literal.
func literal(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), nil
	case float32:
		return floatLiteral(float64(v))
	case float64:
		return floatLiteral(v)
	case time.Time:
		return fmt.Sprintf("LocalDate.of(%d, %d, %d)", v.Year(), v.Month(), v.Day()), nil
	default:
		return "", fmt.Errorf("java: unsupported default value %v (%T)", v, v)
	}
}

// floatLiteral renders v as a Java float literal. Float attributes are
// declared float, so v is narrowed to the nearest float32 value; values
// outside the float range and non-finite values have no literal.
func floatLiteral(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxFloat32 {
		return "", fmt.Errorf("java: default value %v is not a finite float", v)
	}
	return strconv.FormatFloat(v, 'g', -1, 32) + "f", nil
}

// visibility returns the access modifier of p followed by a space, or ""
// for package visibility.
func visibility(p *metamodel.Property) string {
	if p.Visibility() == metamodel.Package {
		return ""
	}
	return p.Visibility().String() + " "
}

// getter returns the accessor name of p.
func getter(p *metamodel.Property) string {
	m := p.Multiplicity()
	if p.Type().Kind == metamodel.KindBoolean && !m.IsCollection() && !m.IsOptional() {
		return "is" + gen.Pascal(p.Name())
	}
	return "get" + gen.Pascal(p.Name())
}

// constant returns the enum constant of a class.
//
//	ResearchEvent => RESEARCH_EVENT
func constant(c *metamodel.Class) string {
	return strings.ToUpper(gen.Snake(gen.Pascal(c.Name())))
}

// kindType returns the discriminator enum name of a general class.
func kindType(c *metamodel.Class) string {
	return gen.Pascal(c.Name()) + "Kind"
}

// kindMethod returns the discriminator accessor name of a general class.
// It is qualified by the general class so that nested hierarchies do not
// clash.
func kindMethod(c *metamodel.Class) string {
	return gen.Camel(gen.Snake(gen.Pascal(c.Name()))) + "Kind"
}

// kindOwners returns the general classes listing c as a discriminator tag.
func kindOwners(c *metamodel.Class) []*metamodel.Class {
	var owners []*metamodel.Class
	for _, p := range gen.Parents(c) {
		if slices.Contains(gen.Kinds(p), c) {
			owners = append(owners, p)
		}
	}
	return owners
}

// tagged reports if every specific class of c is one of its kinds. Other
// specific classes inherit a kind method returning null.
func tagged(c *metamodel.Class) bool {
	kinds := gen.Kinds(c)
	for _, child := range gen.Children(c) {
		if !slices.Contains(kinds, child) {
			return false
		}
	}
	return true
}

var keywords = map[string]struct{}{
	"abstract": {}, "assert": {}, "boolean": {}, "break": {}, "byte": {},
	"case": {}, "catch": {}, "char": {}, "class": {}, "const": {},
	"continue": {}, "default": {}, "do": {}, "double": {}, "else": {},
	"enum": {}, "extends": {}, "final": {}, "finally": {}, "float": {},
	"for": {}, "goto": {}, "if": {}, "implements": {}, "import": {},
	"instanceof": {}, "int": {}, "interface": {}, "long": {}, "native": {},
	"new": {}, "package": {}, "private": {}, "protected": {}, "public": {},
	"return": {}, "short": {}, "static": {}, "strictfp": {}, "super": {},
	"switch": {}, "synchronized": {}, "this": {}, "throw": {}, "throws": {},
	"transient": {}, "try": {}, "void": {}, "volatile": {}, "while": {},
	"true": {}, "false": {}, "null": {}, "record": {}, "sealed": {},
	"permits": {}, "var": {}, "yield": {},
}
