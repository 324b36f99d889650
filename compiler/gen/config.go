package gen

import (
	"log/slog"
	"slices"
)

// defaultHeader is written at the top of every generated fragment by
// adapters that support comments.
const defaultHeader = "Code generated by umlgen. DO NOT EDIT."

// Config holds the global codegen configuration shared by every run of an
// Engine. It is read-only once the engine is built.
type Config struct {
	// Header is the comment written at the top of generated fragments.
	Header string

	// TemplateDir optionally holds text/template files overriding or
	// extending the template definitions of a target. Files are looked up
	// as <TemplateDir>/<target>/*.tmpl.
	TemplateDir string

	// Features enabled for generation.
	Features []Feature

	// Registry resolves target identifiers. Defaults to DefaultRegistry.
	Registry *Registry

	// Logger receives engine state transitions. Defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the default header, the default
// registry and the default logger.
func DefaultConfig() *Config {
	return &Config{
		Header:   defaultHeader,
		Registry: DefaultRegistry,
		Logger:   slog.Default(),
	}
}

// FeatureEnabled reports if the given feature name is enabled.
// It's exported to be used by the template engine as follows:
//
//	{{ with $.FeatureEnabled "model/snapshot" }}
//		...
//	{{ end }}
func (c *Config) FeatureEnabled(name string) (bool, error) {
	for _, f := range AllFeatures {
		if name == f.Name {
			return c.HasFeature(name), nil
		}
	}
	return false, NewConfigError("Features", name, "unknown feature name")
}

// HasFeature reports if the feature is in the enabled list, or enabled by
// default.
func (c *Config) HasFeature(name string) bool {
	if slices.ContainsFunc(c.Features, func(f Feature) bool { return f.Name == name }) {
		return true
	}
	for _, f := range AllFeatures {
		if f.Name == name && f.Default {
			return true
		}
	}
	return false
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Config) registry() *Registry {
	if c.Registry != nil {
		return c.Registry
	}
	return DefaultRegistry
}
