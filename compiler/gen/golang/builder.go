package golang

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/metamodel"
)

// builder appends the declarations of every class to a file.
type builder struct {
	*gen.Context
	file *jen.File
}

func (b *builder) class(c *metamodel.Class) error {
	if len(b.Kinds(c)) > 0 {
		b.kinds(c)
	}
	name := typeName(c)
	fields := b.fields(c)
	if b.IsSealed(c) {
		b.file.Commentf("%s is a sealed hierarchy: every %s is exactly one of %s.", name, name, names(b.Kinds(c)))
		b.file.Type().Id(name).Interface(
			jen.Id(marker(c)).Params(),
			jen.Commentf("%s returns the kind of the %s.", kindType(c), name),
			jen.Id(kindType(c)).Params().Id(kindType(c)),
			jen.Commentf("%sFields returns the fields shared by all kinds.", name),
			jen.Id(name+"Fields").Params().Op("*").Id(baseType(c)),
		)
		b.file.Commentf("%s holds the fields shared by the kinds of %s.", baseType(c), name)
		b.file.Type().Id(baseType(c)).Struct(fields...)
		recv := gen.Receiver(baseType(c))
		b.file.Commentf("%sFields implements %s.", name, name)
		b.file.Func().Params(jen.Id(recv).Op("*").Id(baseType(c))).Id(name+"Fields").Params().Op("*").Id(baseType(c)).Block(
			jen.Return(jen.Id(recv)),
		)
		return nil
	}
	b.doc(c)
	b.file.Type().Id(name).Struct(fields...)
	if len(b.Kinds(c)) > 0 {
		b.file.Commentf("%s returns the zero kind: the %s is none of its specific classes.", kindType(c), name)
		b.file.Func().Params(jen.Op("*").Id(name)).Id(kindType(c)).Params().Id(kindType(c)).Block(
			jen.Return(jen.Lit("")),
		)
	}
	b.discriminators(c)
	return b.constructor(c)
}

// doc comments the struct of c with its place in the hierarchy.
func (b *builder) doc(c *metamodel.Class) {
	name := typeName(c)
	var lines []string
	if clause := b.InheritanceClause(c); clause != "" {
		lines = append(lines, fmt.Sprintf("%s %s.", name, clause))
	}
	if children := b.Children(c); len(children) > 0 {
		lines = append(lines, fmt.Sprintf("%s is a %s hierarchy of %s.", name, b.Hierarchy(c), names(children)))
	}
	if len(lines) == 0 {
		lines = append(lines, fmt.Sprintf("%s is the %s class of the %s model.", name, c.Name(), b.Model().Name()))
	}
	b.file.Comment(strings.Join(lines, " "))
}

// kinds declares the discriminator type of a general class.
func (b *builder) kinds(c *metamodel.Class) {
	kind := kindType(c)
	b.file.Commentf("%s discriminates the specific classes of %s.", kind, typeName(c))
	b.file.Type().Id(kind).String()
	b.file.Commentf("%s values.", kind)
	b.file.Const().DefsFunc(func(g *jen.Group) {
		for _, k := range b.Kinds(c) {
			g.Id(kind + typeName(k)).Id(kind).Op("=").Lit(typeName(k))
		}
	})
	b.file.Commentf("%sValues returns all values of %s.", kind, kind)
	b.file.Func().Id(kind + "Values").Params().Index().Id(kind).Block(
		jen.Return(jen.Index().Id(kind).ValuesFunc(func(g *jen.Group) {
			for _, k := range b.Kinds(c) {
				g.Id(kind + typeName(k))
			}
		})),
	)
}

// fields returns the embedded generals, attributes and roles of c.
func (b *builder) fields(c *metamodel.Class) []jen.Code {
	var fields []jen.Code
	for _, p := range b.Parents(c) {
		fields = append(fields, jen.Id(embedded(p)))
	}
	for _, p := range b.Attributes(c) {
		fields = append(fields, jen.Id(b.FieldName(p)).Add(attrType(p)).Tag(tag(p)))
	}
	for _, r := range b.Roles(c) {
		field := jen.Id(r.Name).Add(b.roleType(r)).Tag(tag(r.End))
		if r.Owned {
			field.Comment("owned")
		}
		fields = append(fields, field)
	}
	return fields
}

// discriminators implements the sealed interfaces and kind methods of the
// general classes c is a kind of.
func (b *builder) discriminators(c *metamodel.Class) {
	name := typeName(c)
	for _, a := range b.Model().Ancestors(c) {
		k := b.kindOf(a, c)
		if k == nil {
			continue
		}
		if b.IsSealed(a) {
			b.file.Func().Params(jen.Op("*").Id(name)).Id(marker(a)).Params().Block()
		}
		b.file.Commentf("%s implements %s.", kindType(a), typeName(a))
		b.file.Func().Params(jen.Op("*").Id(name)).Id(kindType(a)).Params().Id(kindType(a)).Block(
			jen.Return(jen.Id(kindType(a) + typeName(k))),
		)
	}
}

// kindOf returns the kind of the general class a that c is, or is a
// specific class of.
func (b *builder) kindOf(a, c *metamodel.Class) *metamodel.Class {
	ancestors := b.Model().Ancestors(c)
	for _, k := range b.Kinds(a) {
		if k == c || slices.Contains(ancestors, k) {
			return k
		}
	}
	return nil
}

// constructor declares New<Class> for classes with default values.
func (b *builder) constructor(c *metamodel.Class) error {
	var defaults []*metamodel.Property
	for _, p := range b.AllAttributes(c) {
		if p.HasDefault() && !p.Multiplicity().IsCollection() {
			defaults = append(defaults, p)
		}
	}
	if len(defaults) == 0 {
		return nil
	}
	name := typeName(c)
	recv := gen.Receiver(name)
	body := []jen.Code{jen.Id(recv).Op(":=").Op("&").Id(name).Values()}
	for _, p := range defaults {
		v, err := literal(p.Default())
		if err != nil {
			return fmt.Errorf("go: default of %s: %w", p.QualifiedName(), err)
		}
		field := b.FieldName(p)
		if p.Multiplicity().IsOptional() {
			tmp := "default" + field
			body = append(body,
				jen.Id(tmp).Op(":=").Add(v),
				jen.Id(recv).Dot(field).Op("=").Op("&").Id(tmp),
			)
			continue
		}
		body = append(body, jen.Id(recv).Dot(field).Op("=").Add(v))
	}
	body = append(body, jen.Return(jen.Id(recv)))
	b.file.Commentf("New%s returns a %s with its default values set.", name, name)
	b.file.Func().Id("New" + name).Params().Op("*").Id(name).Block(body...)
	return nil
}

// roleType returns the field type of r. Sealed classes are held by their
// interface, other classes by pointer.
func (b *builder) roleType(r gen.Role) jen.Code {
	var elem *jen.Statement
	if r.Class != nil && b.IsSealed(r.Class) {
		elem = jen.Id(r.Type)
	} else {
		elem = jen.Op("*").Id(r.Type)
	}
	if r.Collection {
		return jen.Index().Add(elem)
	}
	return elem
}

func attrType(p *metamodel.Property) jen.Code {
	var elem *jen.Statement
	switch p.Type().Kind {
	case metamodel.KindString:
		elem = jen.String()
	case metamodel.KindInteger:
		elem = jen.Int()
	case metamodel.KindBoolean:
		elem = jen.Bool()
	case metamodel.KindDate:
		elem = jen.Qual("time", "Time")
	case metamodel.KindFloat:
		elem = jen.Float64()
	default:
		elem = jen.Any()
	}
	switch m := p.Multiplicity(); {
	case m.IsCollection():
		return jen.Index().Add(elem)
	case m.IsOptional():
		return jen.Op("*").Add(elem)
	default:
		return elem
	}
}

func tag(p *metamodel.Property) map[string]string {
	v := p.Name()
	if m := p.Multiplicity(); m.IsOptional() || m.IsCollection() {
		v += ",omitempty"
	}
	return map[string]string{"json": v}
}

// literal renders a default value as a Go expression of the field type.
func literal(v any) (jen.Code, error) {
	switch v := v.(type) {
	case string, bool:
		return jen.Lit(v), nil
	case int:
		return jen.Lit(v), nil
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		var n int
		if _, err := fmt.Sscan(fmt.Sprint(v), &n); err != nil {
			return nil, err
		}
		return jen.Lit(n), nil
	case float32:
		return jen.Lit(float64(v)), nil
	case float64:
		return jen.Lit(v), nil
	case time.Time:
		return jen.Qual("time", "Date").Call(
			jen.Lit(v.Year()), jen.Qual("time", v.Month().String()), jen.Lit(v.Day()),
			jen.Lit(0), jen.Lit(0), jen.Lit(0), jen.Lit(0), jen.Qual("time", "UTC"),
		), nil
	default:
		return nil, fmt.Errorf("unsupported default value %v (%T)", v, v)
	}
}

// names joins the Go identifiers of classes.
func names(classes []*metamodel.Class) string {
	list := make([]string, len(classes))
	for i, c := range classes {
		list[i] = typeName(c)
	}
	switch len(list) {
	case 0:
		return ""
	case 1:
		return list[0]
	default:
		return strings.Join(list[:len(list)-1], ", ") + " and " + list[len(list)-1]
	}
}
