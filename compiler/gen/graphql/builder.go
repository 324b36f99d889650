package graphql

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/metamodel"
)

// Root operation types.
const (
	QueryType    = "Query"
	MutationType = "Mutation"
)

type (
	// builder collects the definitions of one run.
	builder struct {
		*gen.Context
		adapter *Adapter
		defs    ast.DefinitionList
		defined map[string]bool
		objects []object
		date    bool
	}

	// object is an object type and the class of its instances.
	object struct {
		name  string
		class *metamodel.Class
	}
)

func (b *builder) document() error {
	for _, c := range b.Classes() {
		if err := b.class(c); err != nil {
			return err
		}
	}
	for _, o := range b.objects {
		if err := b.input(o); err != nil {
			return err
		}
	}
	if err := b.query(); err != nil {
		return err
	}
	if err := b.mutation(); err != nil {
		return err
	}
	if b.date {
		scalar := &ast.Definition{
			Kind:        ast.Scalar,
			Name:        DateScalar,
			Description: "A calendar date formatted as YYYY-MM-DD.",
		}
		if err := b.define(scalar); err != nil {
			return err
		}
		b.defs = append(ast.DefinitionList{scalar}, b.defs[:len(b.defs)-1]...)
	}
	return nil
}

// class adds the types of c: an object type for leaf classes, an interface
// for general ones.
func (b *builder) class(c *metamodel.Class) error {
	fields, err := b.fields(c)
	if err != nil {
		return err
	}
	name := gen.Pascal(c.Name())
	children := gen.Children(c)
	if len(children) == 0 {
		return b.object(name, c, "", fields)
	}
	err = b.define(&ast.Definition{
		Kind:        ast.Interface,
		Name:        name,
		Description: fmt.Sprintf("%s is %s hierarchy of %s.", name, article(gen.HierarchyOf(c).String()), typeNames(children)),
		Interfaces:  interfaces(c),
		Fields:      fields,
	})
	if err != nil {
		return err
	}
	if !gen.IsAbstract(c) {
		desc := fmt.Sprintf("Plain%s is a %s that is none of %s.", name, name, typeNames(children))
		if err := b.object("Plain"+name, c, desc, fields); err != nil {
			return err
		}
	}
	if gen.HierarchyOf(c) == gen.HierarchySealed {
		var members []string
		for _, k := range gen.Kinds(c) {
			members = append(members, objects(k)...)
		}
		slices.Sort(members)
		return b.define(&ast.Definition{
			Kind:        ast.Union,
			Name:        name + "Kind",
			Description: fmt.Sprintf("Every %s is exactly one of these types.", name),
			Types:       slices.Compact(members),
		})
	}
	return nil
}

func (b *builder) object(name string, c *metamodel.Class, desc string, fields ast.FieldList) error {
	ifaces := interfaces(c)
	if name != gen.Pascal(c.Name()) {
		ifaces = append(ifaces, gen.Pascal(c.Name()))
		slices.Sort(ifaces)
	}
	b.objects = append(b.objects, object{name: name, class: c})
	return b.define(&ast.Definition{
		Kind:        ast.Object,
		Name:        name,
		Description: desc,
		Interfaces:  ifaces,
		Fields:      fields,
	})
}

// fields returns the fields of the types of c: the identifier, then the
// own and inherited attributes and roles.
func (b *builder) fields(c *metamodel.Class) (ast.FieldList, error) {
	fields := ast.FieldList{{Name: "id", Type: ast.NonNullNamedType("ID", nil)}}
	add := func(f *ast.FieldDefinition) error {
		if fields.ForName(f.Name) != nil {
			return b.unsupported(c.Name(), fmt.Sprintf("field %s is declared twice", f.Name))
		}
		fields = append(fields, f)
		return nil
	}
	for _, attr := range b.AllAttributes(c) {
		named, err := b.named(attr)
		if err != nil {
			return nil, err
		}
		if err := add(&ast.FieldDefinition{Name: b.FieldName(attr), Type: outputType(attr.Multiplicity(), named)}); err != nil {
			return nil, err
		}
	}
	for _, r := range b.AllRoles(c) {
		if err := add(&ast.FieldDefinition{Name: r.Name, Type: outputType(r.End.Multiplicity(), r.Type)}); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

// input adds the creation input of o. References to other instances are
// given by identifier.
func (b *builder) input(o object) error {
	var fields ast.FieldList
	ref := func(p *metamodel.Property) *ast.FieldDefinition {
		name := gen.Camel(gen.Singular(p.Name())) + "Id"
		if p.Multiplicity().IsCollection() {
			name += "s"
		}
		return &ast.FieldDefinition{Name: name, Type: inputType(p.Multiplicity(), "ID")}
	}
	for _, attr := range b.AllAttributes(o.class) {
		if attr.Type().IsClass() {
			fields = append(fields, ref(attr))
			continue
		}
		named, err := b.named(attr)
		if err != nil {
			return err
		}
		f := &ast.FieldDefinition{Name: b.FieldName(attr), Type: inputType(attr.Multiplicity(), named)}
		if attr.HasDefault() {
			if f.DefaultValue, err = value(attr.Default()); err != nil {
				return b.unsupported(attr.QualifiedName(), err.Error())
			}
		}
		fields = append(fields, f)
	}
	for _, r := range b.AllRoles(o.class) {
		fields = append(fields, ref(r.End))
	}
	if len(fields) == 0 {
		return nil
	}
	return b.define(&ast.Definition{Kind: ast.InputObject, Name: o.name + "Input", Fields: fields})
}

// query adds the Query root: a lookup by identifier and a listing per
// class.
func (b *builder) query() error {
	var fields ast.FieldList
	for _, c := range b.Classes() {
		name := gen.Pascal(c.Name())
		one, all := gen.Camel(name), gen.Camel(gen.Plural(name))
		if all == one {
			all += "List"
		}
		fields = append(fields,
			&ast.FieldDefinition{
				Name: one,
				Arguments: ast.ArgumentDefinitionList{
					{Name: "id", Type: ast.NonNullNamedType("ID", nil)},
				},
				Type: ast.NamedType(name, nil),
			},
			&ast.FieldDefinition{Name: all, Type: ast.NonNullListType(ast.NonNullNamedType(name, nil), nil)},
		)
	}
	if len(fields) == 0 {
		return nil
	}
	return b.define(&ast.Definition{Kind: ast.Object, Name: QueryType, Fields: fields})
}

// mutation adds the Mutation root with a creation per object type.
func (b *builder) mutation() error {
	var fields ast.FieldList
	for _, o := range b.objects {
		f := &ast.FieldDefinition{Name: "create" + o.name, Type: ast.NonNullNamedType(o.name, nil)}
		if b.defined[o.name+"Input"] {
			f.Arguments = ast.ArgumentDefinitionList{
				{Name: "input", Type: ast.NonNullNamedType(o.name+"Input", nil)},
			}
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil
	}
	return b.define(&ast.Definition{Kind: ast.Object, Name: MutationType, Fields: fields})
}

// named returns the named type of attr.
func (b *builder) named(attr *metamodel.Property) (string, error) {
	t := attr.Type()
	switch {
	case t.IsClass():
		if b.Model().Class(t.Ref) == nil {
			return "", b.unsupported(attr.QualifiedName(), fmt.Sprintf("unknown class %q", t.Ref))
		}
	case t.Kind == metamodel.KindDate:
		b.date = true
	}
	return b.TypeName(t), nil
}

func (b *builder) define(def *ast.Definition) error {
	if b.defined[def.Name] {
		return b.unsupported(def.Name, "type name is used twice")
	}
	b.defined[def.Name] = true
	b.defs = append(b.defs, def)
	return nil
}

func (b *builder) unsupported(element, msg string) error {
	return &gen.UnsupportedError{Target: Name, Element: element, Message: msg}
}

// interfaces returns the interfaces implemented by the type of c: the
// types of all its ancestors, ordered by name.
func interfaces(c *metamodel.Class) []string {
	var (
		names []string
		seen  = map[*metamodel.Class]bool{c: true}
		walk  func(*metamodel.Class)
	)
	walk = func(c *metamodel.Class) {
		for _, p := range gen.Parents(c) {
			if seen[p] {
				continue
			}
			seen[p] = true
			names = append(names, gen.Pascal(p.Name()))
			walk(p)
		}
	}
	walk(c)
	slices.Sort(names)
	return names
}

// objects returns the object types of the instances of c.
func objects(c *metamodel.Class) []string {
	children := gen.Children(c)
	if len(children) == 0 {
		return []string{gen.Pascal(c.Name())}
	}
	var names []string
	if !gen.IsAbstract(c) {
		names = append(names, "Plain"+gen.Pascal(c.Name()))
	}
	for _, child := range children {
		names = append(names, objects(child)...)
	}
	return names
}

// value returns the literal of a default value.
func value(v any) (*ast.Value, error) {
	switch v := v.(type) {
	case string:
		return &ast.Value{Kind: ast.StringValue, Raw: v}, nil
	case bool:
		return &ast.Value{Kind: ast.BooleanValue, Raw: strconv.FormatBool(v)}, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return &ast.Value{Kind: ast.IntValue, Raw: fmt.Sprint(v)}, nil
	case float32:
		return &ast.Value{Kind: ast.FloatValue, Raw: strconv.FormatFloat(float64(v), 'g', -1, 32)}, nil
	case float64:
		return &ast.Value{Kind: ast.FloatValue, Raw: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	case time.Time:
		return &ast.Value{Kind: ast.StringValue, Raw: v.Format(time.DateOnly)}, nil
	default:
		return nil, fmt.Errorf("unsupported default value %v (%T)", v, v)
	}
}

func typeNames(classes []*metamodel.Class) string {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = gen.Pascal(c.Name())
	}
	if len(names) < 2 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func article(word string) string {
	if strings.ContainsRune("aeiou", rune(word[0])) {
		return "an " + word
	}
	return "a " + word
}
