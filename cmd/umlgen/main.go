// Command umlgen generates source code from the bundled domain models.
//
//	umlgen generate java rails -o ./gen
//	umlgen validate --model research
//	umlgen watch go --templates ./templates
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syssam/umlgen"
	"github.com/syssam/umlgen/examples/research"
)

// models are the domain models the CLI can generate.
var models = map[string]umlgen.ModelFunc{
	"research":  research.New,
	"authoring": research.Authoring,
}

// cli holds the state shared by the commands of one invocation.
type cli struct {
	out    io.Writer
	config *Config
	logger *slog.Logger

	configPath string
	logFormat  string
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out}
	root := &cobra.Command{
		Use:   "umlgen",
		Short: "Generate code from UML domain models",
		Long: `umlgen renders UML-style domain models (classes, associations and
generalization hierarchies) into source code for several targets: Java,
Ruby on Rails, Go, SQLite and PostgreSQL DDL, and GraphQL SDL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if c.logger, err = newLogger(errOut, c.logFormat, c.verbose); err != nil {
				return err
			}
			c.config, err = LoadConfig(c.configPath, cmd.Flags().Changed("config"))
			return err
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", DefaultConfigFile, "configuration file")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(
		newGenerateCmd(c),
		newValidateCmd(c),
		newTargetsCmd(c),
		newWatchCmd(c),
	)
	return root
}

// model returns the builder of the named model.
func model(name string) (umlgen.ModelFunc, error) {
	build, ok := models[name]
	if !ok {
		names := make([]string, 0, len(models))
		for n := range models {
			names = append(names, n)
		}
		slices.Sort(names)
		return nil, fmt.Errorf("unknown model %q, expected one of %v", name, names)
	}
	return build, nil
}
