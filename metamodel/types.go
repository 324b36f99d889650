package metamodel

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies the kind of a Type.
type Kind uint8

// Primitive kinds form a closed set. KindClass marks a reference to a Class.
const (
	KindInvalid Kind = iota
	KindString
	KindInteger
	KindBoolean
	KindDate
	KindFloat
	KindClass
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindString:  "string",
	KindInteger: "integer",
	KindBoolean: "boolean",
	KindDate:    "date",
	KindFloat:   "float",
	KindClass:   "class",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Type is an immutable type tag usable as a property type. Primitive types
// are shared by value; class types refer to their class by name and are
// resolved against a DomainModel.
type Type struct {
	Kind Kind
	// Ref holds the referenced class name for KindClass.
	Ref string
}

// Primitive types.
var (
	StringType  = Type{Kind: KindString}
	IntegerType = Type{Kind: KindInteger}
	BooleanType = Type{Kind: KindBoolean}
	DateType    = Type{Kind: KindDate}
	FloatType   = Type{Kind: KindFloat}
)

// ClassType returns a type referring to the class with the given name.
func ClassType(name string) Type {
	return Type{Kind: KindClass, Ref: name}
}

// TypeOf returns the type referring to c.
func TypeOf(c *Class) Type {
	return ClassType(c.Name())
}

// IsPrimitive reports if t is one of the primitive types.
func (t Type) IsPrimitive() bool {
	return t.Kind > KindInvalid && t.Kind < KindClass
}

// IsClass reports if t refers to a class.
func (t Type) IsClass() bool { return t.Kind == KindClass }

// Valid reports if t is a primitive type or a named class reference.
func (t Type) Valid() bool {
	return t.IsPrimitive() || (t.IsClass() && t.Ref != "")
}

// Name returns the class name for class types, or the primitive kind name.
func (t Type) Name() string {
	if t.IsClass() {
		return t.Ref
	}
	return t.Kind.String()
}

// String implements fmt.Stringer.
func (t Type) String() string { return t.Name() }

// Resolved is the outcome of resolving a Type against a DomainModel.
type Resolved struct {
	Type
	// Class is set for class types.
	Class *Class
}

// Resolve resolves t against the model. Class references naming a class
// absent from the model fail with ErrUnknownType.
func (m *DomainModel) Resolve(t Type) (Resolved, error) {
	switch {
	case t.IsPrimitive():
		return Resolved{Type: t}, nil
	case t.IsClass():
		if c := m.Class(t.Ref); c != nil {
			return Resolved{Type: t, Class: c}, nil
		}
		return Resolved{}, newModelError(ErrUnknownType, "type", t.Ref, fmt.Sprintf("class is not part of model %q", m.name))
	default:
		return Resolved{}, newModelError(ErrUnknownType, "type", t.Kind.String(), "invalid type")
	}
}

// checkDefault reports if v is an acceptable default value for t.
func checkDefault(t Type, v any) error {
	if v == nil {
		return nil
	}
	ok := false
	switch t.Kind {
	case KindString:
		_, ok = v.(string)
	case KindInteger:
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			ok = true
		}
	case KindBoolean:
		_, ok = v.(bool)
	case KindDate:
		_, ok = v.(time.Time)
	case KindFloat:
		switch v.(type) {
		case float32, float64:
			ok = true
		}
	case KindClass:
		return errors.New("class-typed property cannot have a default value")
	}
	if !ok {
		return fmt.Errorf("default value %v (%T) does not match type %s", v, v, t)
	}
	return nil
}
