package gen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/syssam/umlgen/metamodel"
)

// State of an Engine run.
type State uint8

// Engine states. A run moves Idle → Resolved → Rendering → Written, or to
// Failed from any step.
const (
	StateIdle State = iota
	StateResolved
	StateRendering
	StateWritten
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolved:
		return "resolved"
	case StateRendering:
		return "rendering"
	case StateWritten:
		return "written"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

type (
	// Fragment is one named unit of generated output.
	Fragment struct {
		// Name is the sink-relative name of the fragment, e.g. "Paper.java".
		Name string
		// Template is the identifier of the template that produced it.
		Template string
		// Class is the class the fragment was rendered for, or nil for
		// model templates.
		Class *metamodel.Class
		// Content holds the rendered (and formatted) bytes.
		Content []byte
	}

	// Written describes a fragment flushed to a sink.
	Written struct {
		Fragment string
		Location string
		Bytes    int
	}

	// Result is the outcome of a generation run. On a write failure it is
	// returned together with the *WriteError and lists only the fragments
	// that reached the sink before the failure. They are not removed.
	Result struct {
		RunID   string
		Target  string
		Model   string
		Written []Written
		// Warnings are the validation findings that did not block the run.
		Warnings []metamodel.Finding
	}
)

// Locations returns the sink locations of the written fragments, in write
// order.
func (r *Result) Locations() []string {
	locs := make([]string, len(r.Written))
	for i, w := range r.Written {
		locs[i] = w.Location
	}
	return locs
}

// Engine drives one generation run at a time for a domain model and a
// target. An Engine is owned by a single goroutine; independent engines
// may run concurrently on distinct models.
type Engine struct {
	config *Config

	state     State
	err       error
	ctx       *Context
	tmpl      *template.Template
	set       TemplateSet
	warnings  []metamodel.Finding
	fragments []Fragment
}

// NewEngine creates an engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	c, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{config: c}, nil
}

// NewEngineWithConfig creates an engine from an existing config.
func NewEngineWithConfig(c *Config) *Engine {
	if c == nil {
		c = DefaultConfig()
	}
	return &Engine{config: c}
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config { return e.config }

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Err returns the error that moved the engine to StateFailed, or nil.
func (e *Engine) Err() error { return e.err }

// Context returns the rendering context of the current run, or nil before
// Resolve.
func (e *Engine) Context() *Context { return e.ctx }

// Reset drops the current run and moves the engine back to StateIdle.
func (e *Engine) Reset() {
	e.state = StateIdle
	e.err = nil
	e.ctx = nil
	e.tmpl = nil
	e.set = TemplateSet{}
	e.warnings = nil
	e.fragments = nil
}

// Resolve validates m, locates the adapter registered for target and binds
// both into a fresh rendering context. Validation warnings do not block the
// run unless FeatureStrict is enabled.
func (e *Engine) Resolve(m *metamodel.DomainModel, target string) error {
	if err := e.expect("resolve", StateIdle); err != nil {
		return err
	}
	if m == nil {
		return e.fail(NewConfigError("Model", nil, "model cannot be nil"))
	}
	adapter, err := e.config.registry().Lookup(target)
	if err != nil {
		return e.fail(err)
	}
	res := metamodel.Validate(m)
	verr := res.Err()
	if e.config.HasFeature(FeatureStrict.Name) {
		verr = res.StrictErr()
	}
	if verr != nil {
		return e.fail(verr)
	}
	for _, w := range res.Warnings() {
		e.config.logger().Warn("umlgen: validation warning", "model", m.Name(), "target", target, "finding", w.String())
	}
	if err := checkSupported(adapter, m); err != nil {
		return e.fail(err)
	}
	ctx := &Context{model: m, adapter: adapter, config: e.config, runID: uuid.NewString()}
	set := adapter.Templates()
	set.Model = slices.Clone(set.Model)
	for _, f := range AllFeatures {
		if e.config.HasFeature(f.Name) {
			set.Model = append(set.Model, f.ModelTemplates...)
		}
	}
	tmpl, err := set.parse(ctx, e.config.TemplateDir)
	if err != nil {
		return e.fail(NewRenderError(target, "", set.Name, err))
	}
	e.ctx, e.set, e.tmpl, e.warnings = ctx, set, tmpl, res.Warnings()
	e.transition(StateResolved)
	return nil
}

// checkSupported rejects models the adapter cannot express.
func checkSupported(a Adapter, m *metamodel.DomainModel) error {
	if CapabilitiesOf(a).MultipleInheritance {
		return nil
	}
	for _, c := range m.Classes() {
		if parents := m.Parents(c); len(parents) > 1 {
			names := make([]string, len(parents))
			for i, p := range parents {
				names[i] = p.Name()
			}
			return &UnsupportedError{
				Target:  a.Name(),
				Element: "class " + c.Name(),
				Message: "multiple inheritance from " + strings.Join(names, ", "),
			}
		}
	}
	return nil
}

// Render evaluates the template set against the rendering context and
// returns the fragments in generation order: model templates first, then
// the class templates of every class in name order. Cancellation of ctx is
// checked between fragments only.
func (e *Engine) Render(ctx context.Context) ([]Fragment, error) {
	if err := e.expect("render", StateResolved); err != nil {
		return nil, err
	}
	e.transition(StateRendering)
	var (
		c         = e.ctx
		fragments []Fragment
		seen      = make(map[string]string)
	)
	add := func(f Fragment) error {
		if prev, ok := seen[f.Name]; ok {
			return fmt.Errorf("fragment %q rendered by both %q and %q", f.Name, prev, f.Template)
		}
		seen[f.Name] = f.Template
		formatted, err := e.format(f.Name, f.Content)
		if err != nil {
			return err
		}
		f.Content = formatted
		fragments = append(fragments, f)
		return nil
	}
	for _, t := range e.set.Model {
		if err := ctx.Err(); err != nil {
			return nil, e.fail(err)
		}
		if t.Skip != nil && t.Skip(c) {
			continue
		}
		name := t.Format(c)
		var (
			b   []byte
			err error
		)
		if t.Build != nil {
			b, err = t.Build(c)
		} else {
			b, err = execute(e.tmpl, t.Name, c)
		}
		if err == nil {
			err = add(Fragment{Name: name, Template: t.Name, Content: b})
		}
		if err != nil {
			return nil, e.fail(NewRenderError(c.Target(), name, t.Name, err))
		}
	}
	for _, cls := range c.Classes() {
		for _, t := range e.set.Class {
			if err := ctx.Err(); err != nil {
				return nil, e.fail(err)
			}
			if t.Cond != nil && !t.Cond(c, cls) {
				continue
			}
			name := t.Format(c, cls)
			var (
				b   []byte
				err error
			)
			if t.Build != nil {
				b, err = t.Build(c, cls)
			} else {
				b, err = execute(e.tmpl, t.Name, c.Scope(cls))
			}
			if err == nil {
				err = add(Fragment{Name: name, Template: t.Name, Class: cls, Content: b})
			}
			if err != nil {
				return nil, e.fail(NewRenderError(c.Target(), name, t.Name, err))
			}
		}
	}
	e.fragments = fragments
	e.config.logger().Debug("umlgen: rendered", e.attrs("fragments", len(fragments))...)
	return slices.Clone(fragments), nil
}

func (e *Engine) format(name string, src []byte) ([]byte, error) {
	f, ok := e.ctx.adapter.(Formatter)
	if !ok {
		return src, nil
	}
	return f.Format(name, src)
}

// Write flushes the rendered fragments to sink, in render order. A sink
// failure moves the engine to StateFailed and returns a *WriteError naming
// the failing fragment together with the partial Result. If the sink is
// also a Remover, the output of disabled features is removed afterwards.
func (e *Engine) Write(ctx context.Context, sink Sink) (*Result, error) {
	if err := e.expect("write", StateRendering); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, e.fail(NewConfigError("Sink", nil, "sink cannot be nil"))
	}
	res := &Result{
		RunID:    e.ctx.RunID(),
		Target:   e.ctx.Target(),
		Model:    e.ctx.Model().Name(),
		Warnings: e.warnings,
	}
	for _, f := range e.fragments {
		if err := ctx.Err(); err != nil {
			return res, e.fail(err)
		}
		w, err := e.flush(sink, f)
		if err != nil {
			return res, e.fail(err)
		}
		res.Written = append(res.Written, w)
		e.config.logger().Debug("umlgen: wrote fragment", e.attrs("fragment", w.Fragment, "location", w.Location, "bytes", w.Bytes)...)
	}
	if r, ok := sink.(Remover); ok {
		for _, f := range AllFeatures {
			if f.cleanup == nil || e.config.HasFeature(f.Name) {
				continue
			}
			if err := f.cleanup(r); err != nil {
				return res, e.fail(NewWriteError(res.Target, f.Name, "", err))
			}
		}
	}
	e.transition(StateWritten)
	return res, nil
}

// flush writes one fragment. The sink handle is closed on every path.
func (e *Engine) flush(sink Sink, f Fragment) (_ Written, err error) {
	w, loc, err := sink.Open(f.Name)
	if err != nil {
		return Written{}, NewWriteError(e.ctx.Target(), f.Name, loc, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = NewWriteError(e.ctx.Target(), f.Name, loc, cerr)
		}
	}()
	n, err := w.Write(f.Content)
	if err == nil && n < len(f.Content) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return Written{}, NewWriteError(e.ctx.Target(), f.Name, loc, err)
	}
	return Written{Fragment: f.Name, Location: loc, Bytes: n}, nil
}

// Run resets the engine and performs a full run: Resolve, Render and Write.
func (e *Engine) Run(ctx context.Context, m *metamodel.DomainModel, target string, sink Sink) (*Result, error) {
	e.Reset()
	if err := e.Resolve(m, target); err != nil {
		return nil, err
	}
	if _, err := e.Render(ctx); err != nil {
		return nil, err
	}
	return e.Write(ctx, sink)
}

func (e *Engine) expect(op string, want ...State) error {
	if slices.Contains(want, e.state) {
		return nil
	}
	return &StateError{Op: op, State: e.state, Want: want}
}

func (e *Engine) transition(s State) {
	from := e.state
	e.state = s
	e.config.logger().Debug("umlgen: state transition", e.attrs("from", from.String(), "to", s.String())...)
}

func (e *Engine) fail(err error) error {
	e.state = StateFailed
	e.err = err
	e.config.logger().Error("umlgen: generation failed", e.attrs("error", err)...)
	return err
}

// attrs returns the run attributes followed by args.
func (e *Engine) attrs(args ...any) []any {
	if e.ctx == nil {
		return args
	}
	return append([]any{
		slog.String("target", e.ctx.Target()),
		slog.String("model", e.ctx.Model().Name()),
		slog.String("run", e.ctx.RunID()),
	}, args...)
}
