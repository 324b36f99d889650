package metamodel

import (
	"fmt"
	"slices"
	"strings"
)

// Severity of a validation finding.
type Severity uint8

// Severity levels. Only errors block generation.
const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Finding is one problem reported by Validate.
type Finding struct {
	Severity Severity
	// Err is a *ModelError matching one of the package sentinels.
	Err error
}

// String implements fmt.Stringer.
func (f Finding) String() string {
	return f.Severity.String() + ": " + f.Err.Error()
}

// Result holds the ordered findings of a validation run.
type Result struct {
	Model    string
	Findings []Finding
}

// Errors returns the findings with error severity.
func (r *Result) Errors() []Finding {
	return r.filter(SeverityError)
}

// Warnings returns the findings with warning severity.
func (r *Result) Warnings() []Finding {
	return r.filter(SeverityWarning)
}

// HasErrors reports if any finding has error severity.
func (r *Result) HasErrors() bool {
	return slices.ContainsFunc(r.Findings, func(f Finding) bool {
		return f.Severity == SeverityError
	})
}

// OK reports if the result holds no findings at all.
func (r *Result) OK() bool { return len(r.Findings) == 0 }

// Err returns a *ValidationFailedError if the result carries errors, or nil.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return &ValidationFailedError{Model: r.Model, Findings: slices.Clone(r.Findings)}
}

// StrictErr is like Err but treats warnings as errors.
func (r *Result) StrictErr() error {
	if r.OK() {
		return nil
	}
	findings := slices.Clone(r.Findings)
	for i := range findings {
		findings[i].Severity = SeverityError
	}
	return &ValidationFailedError{Model: r.Model, Findings: findings}
}

func (r *Result) filter(s Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

func (r *Result) errorf(kind error, element, name, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Severity: SeverityError,
		Err:      newModelError(kind, element, name, fmt.Sprintf(format, args...)),
	})
}

func (r *Result) warnf(kind error, element, name, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Severity: SeverityWarning,
		Err:      newModelError(kind, element, name, fmt.Sprintf(format, args...)),
	})
}

// Validate checks the structural invariants of m and returns every finding
// in a deterministic order: by check, then by element order. It never
// mutates the model.
func Validate(m *DomainModel) *Result {
	r := &Result{Model: m.name}
	classes := m.Classes()
	checkClassNames(r, classes)
	checkAttributes(r, m, classes)
	checkAssociationEnds(r, m)
	checkComposition(r, m)
	checkGeneralizations(r, m)
	checkCycles(r, m, classes)
	checkGeneralizationSets(r, m)
	checkMultiplicities(r, m, classes)
	checkShadowing(r, m, classes)
	return r
}

// Validate is a shorthand for the package function.
func (m *DomainModel) Validate() *Result { return Validate(m) }

func checkClassNames(r *Result, classes []*Class) {
	for i := 1; i < len(classes); i++ {
		if classes[i].name == classes[i-1].name && (i < 2 || classes[i-2].name != classes[i].name) {
			r.errorf(ErrDuplicateName, "class", classes[i].name, "class name is not unique")
		}
	}
}

func checkAttributes(r *Result, m *DomainModel, classes []*Class) {
	for _, c := range classes {
		attrs := sortedAttributes(c)
		for i, a := range attrs {
			if i > 0 && attrs[i-1].name == a.name {
				r.errorf(ErrDuplicateName, "property", a.QualifiedName(), "attribute name is not unique")
			}
			if a.typ.IsClass() && m.Class(a.typ.Ref) == nil {
				r.errorf(ErrUnknownType, "property", a.QualifiedName(), "class %q is not part of the model", a.typ.Ref)
			}
		}
	}
}

func checkAssociationEnds(r *Result, m *DomainModel) {
	for _, a := range m.Associations() {
		for _, e := range a.ends {
			if m.Class(e.typ.Ref) == nil {
				r.errorf(ErrUnknownType, "association end", e.QualifiedName(), "class %q is not part of the model", e.typ.Ref)
			}
		}
	}
}

func checkComposition(r *Result, m *DomainModel) {
	for _, a := range m.Associations() {
		if len(a.CompositeEnds()) > 1 {
			r.errorf(ErrMalformedAssociation, "association", a.name, "at most one end may be composite, got %d", len(a.CompositeEnds()))
		}
	}
}

func checkGeneralizations(r *Result, m *DomainModel) {
	for _, g := range m.Generalizations() {
		for _, c := range []*Class{g.specific, g.general} {
			if !m.Contains(c) {
				r.errorf(ErrUnknownType, "generalization", g.Name(), "class %q is not part of the model", c.name)
			}
		}
	}
}

// checkCycles reports one finding per strongly connected component of the
// generalization graph that contains a cycle. Diamonds are acyclic and pass.
func checkCycles(r *Result, m *DomainModel, classes []*Class) {
	var (
		index   = make(map[*Class]int)
		low     = make(map[*Class]int)
		onStack = make(map[*Class]bool)
		stack   []*Class
		next    int
		sccs    [][]*Class
	)
	var visit func(c *Class)
	visit = func(c *Class) {
		index[c], low[c] = next, next
		next++
		stack = append(stack, c)
		onStack[c] = true
		for _, p := range m.Parents(c) {
			if _, ok := index[p]; !ok {
				visit(p)
				low[c] = min(low[c], low[p])
			} else if onStack[p] {
				low[c] = min(low[c], index[p])
			}
		}
		if low[c] != index[c] {
			return
		}
		var scc []*Class
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			scc = append(scc, top)
			if top == c {
				break
			}
		}
		sccs = append(sccs, scc)
	}
	for _, c := range classes {
		if _, ok := index[c]; !ok {
			visit(c)
		}
	}
	var cycles [][]*Class
	for _, scc := range sccs {
		if len(scc) > 1 || slices.Contains(m.Parents(scc[0]), scc[0]) {
			sortClasses(scc)
			cycles = append(cycles, scc)
		}
	}
	slices.SortFunc(cycles, func(a, b []*Class) int {
		return strings.Compare(a[0].name, b[0].name)
	})
	for _, scc := range cycles {
		names := make([]string, 0, len(scc)+1)
		for _, c := range scc {
			names = append(names, c.name)
		}
		names = append(names, scc[0].name)
		r.errorf(ErrCyclicGeneralization, "generalization", scc[0].name, "cycle through %s", strings.Join(names, " -> "))
	}
}

func checkGeneralizationSets(r *Result, m *DomainModel) {
	for _, s := range m.GeneralizationSets() {
		if s.general == nil {
			r.errorf(ErrInconsistentGeneralizationSet, "generalization set", s.name, "no general class declared")
			continue
		}
		if len(s.members) == 0 {
			r.errorf(ErrInconsistentGeneralizationSet, "generalization set", s.name, "set has no generalizations")
			continue
		}
		members := slices.Clone(s.members)
		sortGeneralizations(members)
		for _, g := range members {
			if g.general != s.general {
				r.errorf(ErrInconsistentGeneralizationSet, "generalization set", s.name,
					"generalization %s does not specialize %q", g.Name(), s.general.name)
			}
		}
	}
}

func checkMultiplicities(r *Result, m *DomainModel, classes []*Class) {
	for _, c := range classes {
		for _, a := range sortedAttributes(c) {
			if !a.multiplicity.Valid() {
				r.errorf(ErrInvalidMultiplicity, "property", a.QualifiedName(), "invalid bounds %d..%s", a.multiplicity.Lower, upperString(a.multiplicity))
			}
		}
	}
	for _, as := range m.Associations() {
		for _, e := range as.ends {
			if !e.multiplicity.Valid() {
				r.errorf(ErrInvalidMultiplicity, "association end", e.QualifiedName(), "invalid bounds %d..%s", e.multiplicity.Lower, upperString(e.multiplicity))
			}
		}
	}
}

func upperString(m Multiplicity) string {
	if m.IsUnbounded() {
		return "*"
	}
	return fmt.Sprint(m.Upper)
}

func checkShadowing(r *Result, m *DomainModel, classes []*Class) {
	for _, c := range classes {
		ancestors := m.Ancestors(c)
		for _, a := range sortedAttributes(c) {
			for _, anc := range ancestors {
				if anc.Property(a.name) != nil {
					r.warnf(ErrNameShadowing, "property", a.QualifiedName(), "hides attribute inherited from %q", anc.name)
					break
				}
			}
		}
	}
}
