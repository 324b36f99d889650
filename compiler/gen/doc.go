// Package gen provides the generation engine of umlgen.
//
// It projects a validated metamodel.DomainModel into source code for a
// target technology, such as Java classes, Rails models or SQL DDL.
//
// # Architecture
//
// The code generation pipeline follows this flow:
//
//	metamodel.DomainModel (built programmatically)
//	        ↓
//	   metamodel.Validate (collects every finding)
//	        ↓
//	   Engine.Resolve (target Adapter + TemplateSet + Context)
//	        ↓
//	   Engine.Render (named Fragments, in a total order)
//	        ↓
//	   Engine.Write (Sink: DirSink, MemorySink)
//
// # Key Types
//
//   - Engine: drives one run through the states Idle, Resolved, Rendering,
//     Written and Failed
//   - Adapter: the per-target mapping functions and template set
//   - TemplateSet: text/template definitions and Build funcs of a target
//   - Context: the read-only view of a run handed to templates
//   - Role: the target-facing descriptor of an association end
//   - Registry: maps target identifiers to adapters
//   - Sink: receives generated fragments
//
// # Interface Hierarchy
//
//	Adapter
//	├── Name() string
//	├── TypeMapper (TypeName, CollectionWrapper, FieldName)
//	├── HierarchyMapper (InheritanceClause)
//	├── RoleMapper (AssociationRole)
//	└── Templates() TemplateSet
//
//	Optional, detected at runtime:
//	├── CapabilityProvider (sealed hierarchies, multiple inheritance)
//	├── Formatter (post-processing of rendered fragments)
//	└── FuncProvider (target-specific template functions)
//
// # Error Handling
//
// The package uses structured error types:
//
//   - TargetError: unknown target identifiers (ErrUnknownTarget)
//   - RenderError: template evaluation failures (ErrTemplateRender)
//   - WriteError: sink failures, naming the failing fragment (ErrOutputWrite)
//   - ConfigError: invalid options (ErrMissingConfig)
//   - StateError: operations called in the wrong state (ErrInvalidState)
//   - UnsupportedError: models a target cannot express (ErrUnsupportedModel)
//
// Validation failures surface as *metamodel.ValidationFailedError.
// A failed write returns the partial Result along with the error:
//
//	res, err := engine.Run(ctx, model, "java", sink)
//	if gen.IsWriteError(err) {
//	    // res.Written lists the fragments that reached the sink.
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	engine, err := gen.NewEngine(
//	    gen.WithHeader("Code generated by umlgen. DO NOT EDIT."),
//	    gen.WithTemplateDir("./templates"),
//	    gen.WithFeatures(gen.FeatureSnapshot),
//	)
//
// # Template Overrides
//
// With WithTemplateDir, the files <dir>/<target>/*.tmpl are parsed after the
// built-in definitions of a target. A file may redefine any definition of
// the set with {{ define "name" }}.
package gen
