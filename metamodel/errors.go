package metamodel

import (
	"errors"
	"strconv"
	"strings"
)

// Sentinel errors identifying the kind of a model problem. Concrete errors
// returned by this package match exactly one of them with errors.Is.
var (
	// ErrDuplicateName indicates a class or property name collision.
	ErrDuplicateName = errors.New("umlgen: duplicate name")
	// ErrMalformedAssociation indicates an association that does not have
	// exactly two class-typed ends, or violates composition exclusivity.
	ErrMalformedAssociation = errors.New("umlgen: malformed association")
	// ErrUnknownType indicates a reference to a class absent from the model.
	ErrUnknownType = errors.New("umlgen: unknown type")
	// ErrCyclicGeneralization indicates a cycle in the general/specific relation.
	ErrCyclicGeneralization = errors.New("umlgen: cyclic generalization")
	// ErrInconsistentGeneralizationSet indicates a generalization set whose
	// members do not share the declared general class.
	ErrInconsistentGeneralizationSet = errors.New("umlgen: inconsistent generalization set")
	// ErrInvalidMultiplicity indicates a multiplicity with a negative lower
	// bound or an upper bound below the lower bound.
	ErrInvalidMultiplicity = errors.New("umlgen: invalid multiplicity")
	// ErrInvalidProperty indicates a property definition error, such as a
	// default value that does not match the property type.
	ErrInvalidProperty = errors.New("umlgen: invalid property")
	// ErrInvalidName indicates an empty element name.
	ErrInvalidName = errors.New("umlgen: invalid name")
	// ErrAlreadyOwned indicates an element already owned by another class,
	// association or model.
	ErrAlreadyOwned = errors.New("umlgen: element already owned")
	// ErrNameShadowing indicates an own attribute hiding an inherited one.
	// It is only reported with warning severity.
	ErrNameShadowing = errors.New("umlgen: name shadowing")
	// ErrValidationFailed indicates a model carrying validation errors.
	ErrValidationFailed = errors.New("umlgen: validation failed")
)

// ModelError describes a problem with one element of a domain model.
type ModelError struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Element is the element kind, e.g. "class", "property", "association".
	Element string
	// Name is the qualified element name, e.g. "Paper.title".
	Name    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("umlgen: model error")
	}
	if e.Element != "" {
		b.WriteString(" on ")
		b.WriteString(e.Element)
	}
	if e.Name != "" {
		b.WriteString(" ")
		b.WriteString(e.Name)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ModelError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel kind of the error.
func (e *ModelError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func newModelError(kind error, element, name, message string) *ModelError {
	return &ModelError{
		Kind:    kind,
		Element: element,
		Name:    name,
		Message: message,
	}
}

// ValidationFailedError aggregates every finding of a failed validation.
type ValidationFailedError struct {
	Model    string
	Findings []Finding
}

// Error implements the error interface.
func (e *ValidationFailedError) Error() string {
	var b strings.Builder
	b.WriteString("umlgen: validation failed")
	if e.Model != "" {
		b.WriteString(" for model ")
		b.WriteString(e.Model)
	}
	errs := 0
	for _, f := range e.Findings {
		if f.Severity == SeverityError {
			errs++
		}
	}
	switch errs {
	case 0:
	case 1:
		b.WriteString(": 1 error")
	default:
		b.WriteString(": ")
		b.WriteString(strconv.Itoa(errs))
		b.WriteString(" errors")
	}
	for _, f := range e.Findings {
		if f.Severity != SeverityError {
			continue
		}
		b.WriteString("\n\t")
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

// Is reports whether the target is ErrValidationFailed.
func (e *ValidationFailedError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Unwrap returns the error findings, making errors.Is match any of their kinds.
func (e *ValidationFailedError) Unwrap() []error {
	var errs []error
	for _, f := range e.Findings {
		if f.Severity == SeverityError {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

// IsModelError reports whether the error is a ModelError.
func IsModelError(err error) bool {
	var modelErr *ModelError
	return errors.As(err, &modelErr)
}

// IsValidationFailed reports whether the error is a ValidationFailedError.
func IsValidationFailed(err error) bool {
	var valErr *ValidationFailedError
	return errors.As(err, &valErr)
}
