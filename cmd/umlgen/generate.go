package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/syssam/umlgen"
	"github.com/syssam/umlgen/compiler/gen"
)

// genFlags are the flags of the commands running generation. Set flags
// override the config file.
type genFlags struct {
	model     string
	output    string
	header    string
	templates string
	features  []string
	workers   int
}

func (f *genFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.model, "model", "m", "research", "bundled model to generate")
	flags.StringVarP(&f.output, "output", "o", "gen", "output directory, one subdirectory per target")
	flags.StringVar(&f.header, "header", "", "header comment of generated files")
	flags.StringVar(&f.templates, "templates", "", "directory of template overrides, one subdirectory per target")
	flags.StringSliceVar(&f.features, "feature", nil, "enable a codegen feature (repeatable)")
	flags.IntVar(&f.workers, "workers", 0, "targets generated at once (default GOMAXPROCS)")
}

// settings merges the set flags and the target arguments into the config.
func (c *cli) settings(cmd *cobra.Command, f *genFlags, args []string) (*Config, error) {
	cfg := *c.config
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = f.model
	}
	if flags.Changed("output") {
		cfg.Output = f.output
	}
	if flags.Changed("header") {
		cfg.Header = f.header
	}
	if flags.Changed("templates") {
		cfg.Templates = f.templates
	}
	if flags.Changed("feature") {
		cfg.Features = f.features
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if len(args) > 0 {
		cfg.Targets = args
	}
	if len(cfg.Targets) == 0 {
		return nil, gen.NewConfigError("Targets", nil, "no target given")
	}
	return &cfg, nil
}

// batch returns the generation batch of cfg.
func (c *cli) batch(cfg *Config) (*umlgen.Batch, error) {
	build, err := model(cfg.Model)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options(c.logger)
	if err != nil {
		return nil, err
	}
	return &umlgen.Batch{
		Model:     build,
		Targets:   cfg.Targets,
		OutputDir: cfg.Output,
		Workers:   cfg.Workers,
		Options:   opts,
	}, nil
}

func newGenerateCmd(c *cli) *cobra.Command {
	f := &genFlags{}
	cmd := &cobra.Command{
		Use:   "generate [target...]",
		Short: "Generate the code of a model for one or more targets",
		Example: `  umlgen generate java rails
  umlgen generate sqlite --model authoring -o ./out --feature model/snapshot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.settings(cmd, f, args)
			if err != nil {
				return err
			}
			b, err := c.batch(cfg)
			if err != nil {
				return err
			}
			results, err := b.Run(cmd.Context())
			c.report(cfg, results)
			return err
		},
	}
	f.register(cmd)
	return cmd
}

// report prints a line per generated target.
func (c *cli) report(cfg *Config, results []*gen.Result) {
	for _, res := range results {
		if res == nil {
			continue
		}
		fmt.Fprintf(c.out, "%s: wrote %d files to %s\n", res.Target, len(res.Written), filepath.Join(cfg.Output, res.Target))
		for _, w := range res.Warnings {
			fmt.Fprintf(c.out, "  %s\n", w)
		}
	}
}
