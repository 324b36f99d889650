package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for generation failures.
var (
	// ErrUnknownTarget indicates a target identifier with no registered adapter.
	ErrUnknownTarget = errors.New("umlgen: unknown target")
	// ErrTemplateRender indicates a failure while evaluating a template.
	ErrTemplateRender = errors.New("umlgen: template render failed")
	// ErrOutputWrite indicates a failure while flushing a fragment to its sink.
	ErrOutputWrite = errors.New("umlgen: output write failed")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("umlgen: missing configuration")
	// ErrInvalidState indicates an engine operation called in the wrong state.
	ErrInvalidState = errors.New("umlgen: invalid engine state")
	// ErrUnsupportedModel indicates a model the target adapter cannot express,
	// such as multiple inheritance for single-inheritance targets.
	ErrUnsupportedModel = errors.New("umlgen: model not supported by target")
)

// TargetError represents a target lookup or registration error.
type TargetError struct {
	Target  string
	Message string
}

// Error implements the error interface.
func (e *TargetError) Error() string {
	var b strings.Builder
	b.WriteString("umlgen: unknown target")
	if e.Target != "" {
		fmt.Fprintf(&b, " %q", e.Target)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for TargetError.
func (e *TargetError) Is(target error) bool {
	return target == ErrUnknownTarget
}

// NewTargetError creates a new TargetError.
func NewTargetError(target, message string) *TargetError {
	return &TargetError{Target: target, Message: message}
}

// RenderError represents a template evaluation error.
type RenderError struct {
	Target   string
	Fragment string // Fragment name (if known)
	Template string // Template identifier
	Cause    error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	var b strings.Builder
	b.WriteString("umlgen: render error")
	if e.Target != "" {
		b.WriteString(" for target ")
		b.WriteString(e.Target)
	}
	if e.Template != "" {
		fmt.Fprintf(&b, " in template %q", e.Template)
	}
	if e.Fragment != "" {
		b.WriteString(" (fragment: ")
		b.WriteString(e.Fragment)
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for RenderError.
func (e *RenderError) Is(target error) bool {
	return target == ErrTemplateRender
}

// NewRenderError creates a new RenderError.
func NewRenderError(target, fragment, template string, cause error) *RenderError {
	return &RenderError{
		Target:   target,
		Fragment: fragment,
		Template: template,
		Cause:    cause,
	}
}

// WriteError represents a sink error for one fragment. Fragments written
// before the failing one stay in place; see Result.Written.
type WriteError struct {
	Target   string
	Fragment string
	Location string
	Cause    error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	var b strings.Builder
	b.WriteString("umlgen: write error")
	if e.Target != "" {
		b.WriteString(" for target ")
		b.WriteString(e.Target)
	}
	if e.Fragment != "" {
		fmt.Fprintf(&b, " on fragment %q", e.Fragment)
	}
	if e.Location != "" {
		b.WriteString(" (location: ")
		b.WriteString(e.Location)
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for WriteError.
func (e *WriteError) Is(target error) bool {
	return target == ErrOutputWrite
}

// NewWriteError creates a new WriteError.
func NewWriteError(target, fragment, location string, cause error) *WriteError {
	return &WriteError{
		Target:   target,
		Fragment: fragment,
		Location: location,
		Cause:    cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("umlgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("umlgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// StateError reports an engine operation attempted in the wrong state.
type StateError struct {
	Op    string
	State State
	Want  []State
}

// Error implements the error interface.
func (e *StateError) Error() string {
	want := make([]string, len(e.Want))
	for i, s := range e.Want {
		want[i] = s.String()
	}
	return fmt.Sprintf("umlgen: cannot %s in state %s (want %s)", e.Op, e.State, strings.Join(want, " or "))
}

// Is reports whether the target matches the sentinel error for StateError.
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// UnsupportedError reports a model element the target cannot express.
type UnsupportedError struct {
	Target  string
	Element string
	Message string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("umlgen: target %s does not support %s: %s", e.Target, e.Element, e.Message)
}

// Is reports whether the target matches the sentinel error for UnsupportedError.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupportedModel
}

// IsTargetError reports whether the error is a TargetError.
func IsTargetError(err error) bool {
	var targetErr *TargetError
	return errors.As(err, &targetErr)
}

// IsRenderError reports whether the error is a RenderError.
func IsRenderError(err error) bool {
	var renderErr *RenderError
	return errors.As(err, &renderErr)
}

// IsWriteError reports whether the error is a WriteError.
func IsWriteError(err error) bool {
	var writeErr *WriteError
	return errors.As(err, &writeErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsStateError reports whether the error is a StateError.
func IsStateError(err error) bool {
	var stateErr *StateError
	return errors.As(err, &stateErr)
}
