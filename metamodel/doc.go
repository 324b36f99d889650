// Package metamodel provides the structural domain metamodel consumed by the
// umlgen code generator.
//
// A model is built programmatically from types, properties, classes,
// associations, generalizations and generalization sets, composed into a
// DomainModel and checked with Validate before generation:
//
//	title := metamodel.MustProperty("title", metamodel.StringType)
//	paper := metamodel.MustClass("Paper", metamodel.Attributes(title))
//	m, err := metamodel.NewDomainModel("Research", metamodel.WithClasses(paper))
//	if err != nil {
//		return err
//	}
//	if err := metamodel.Validate(m).Err(); err != nil {
//		return err
//	}
//
// # Ordering
//
// Every query of a DomainModel returns elements in a total order: by name,
// then by declaration order. Generators iterate in that order only, which
// makes generated output reproducible byte for byte.
//
// # Ownership
//
// A Property is owned by exactly one Class or one Association, and every
// other element by at most one DomainModel. Adding an owned element to a
// second owner fails with ErrAlreadyOwned; call Release to detach the
// elements of a model. A DomainModel performs no locking: it may be read by
// several goroutines once built, but must be mutated by one at a time.
package metamodel
