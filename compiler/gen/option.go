package gen

import (
	"errors"
	"log/slog"
	"os"
)

// Option configures a generation run.
type Option func(*Config) error

// WithHeader sets the comment written at the top of every fragment, in
// the comment syntax of the target.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithTemplateDir sets the directory holding template overrides.
// The directory must exist.
func WithTemplateDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("TemplateDir", nil, "template directory cannot be empty")
		}
		info, err := os.Stat(dir)
		if err != nil {
			return NewConfigError("TemplateDir", dir, err.Error())
		}
		if !info.IsDir() {
			return NewConfigError("TemplateDir", dir, "not a directory")
		}
		c.TemplateDir = dir
		return nil
	}
}

// WithFeatures enables the given codegen features.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithFeatureNames enables features by name, as read from a config file.
func WithFeatureNames(names ...string) Option {
	return func(c *Config) error {
		for _, name := range names {
			f, ok := FeatureByName(name)
			if !ok {
				return NewConfigError("Features", name, "unknown feature name")
			}
			c.Features = append(c.Features, f)
		}
		return nil
	}
}

// WithRegistry sets the target registry used to resolve target identifiers.
func WithRegistry(r *Registry) Option {
	return func(c *Config) error {
		if r == nil {
			return NewConfigError("Registry", nil, "registry cannot be nil")
		}
		c.Registry = r
		return nil
	}
}

// WithLogger sets the logger receiving engine events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply runs opts in order and stops at the first failing option.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll runs every option and returns the errors of the failing ones
// joined, or nil.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config, starting from DefaultConfig, with the
// given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := DefaultConfig()
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig is like NewConfig but panics on error.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
