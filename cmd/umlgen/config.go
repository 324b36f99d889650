package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/umlgen/compiler/gen"
)

// DefaultConfigFile is read from the working directory when --config is
// not given. It may be missing.
const DefaultConfigFile = "umlgen.yaml"

// Config is the content of the configuration file. Command line flags
// override it.
type Config struct {
	// Model names the bundled model to generate.
	Model string `yaml:"model"`
	// Targets are the default targets of generate and watch.
	Targets []string `yaml:"targets"`
	// Output is the root output directory, one subdirectory per target.
	Output string `yaml:"output"`
	// Header replaces the header comment of generated files.
	Header string `yaml:"header"`
	// Templates is the directory of template overrides.
	Templates string `yaml:"templates"`
	// Features are the names of the enabled codegen features.
	Features []string `yaml:"features"`
	// Workers limits the targets generated at once.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Model:  "research",
		Output: "gen",
	}
}

// LoadConfig reads the config file at path over the defaults. A missing
// file is an error only when required.
func LoadConfig(path string, required bool) (*Config, error) {
	c := DefaultConfig()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
		return c, nil
	case err != nil:
		return nil, gen.NewConfigError("ConfigFile", path, err.Error())
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, gen.NewConfigError("ConfigFile", path, err.Error())
	}
	return c, nil
}

// Options returns the engine options of the config.
func (c *Config) Options(logger *slog.Logger) ([]gen.Option, error) {
	opts := []gen.Option{gen.WithLogger(logger), gen.WithFeatureNames(c.Features...)}
	if c.Header != "" {
		opts = append(opts, gen.WithHeader(c.Header))
	}
	if c.Templates != "" {
		opts = append(opts, gen.WithTemplateDir(c.Templates))
	}
	// Report bad options before any target starts.
	if _, err := gen.NewConfig(opts...); err != nil {
		return nil, err
	}
	return opts, nil
}

// newLogger returns the logger of the CLI writing to w.
func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
