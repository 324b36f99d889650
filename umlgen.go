// Package umlgen generates source code from UML-style domain models.
//
// Models are assembled with the metamodel package and rendered by the
// target adapters of compiler/gen. Importing this package registers the
// built-in targets in gen.DefaultRegistry:
//
//	m := research.MustNew()
//	res, err := umlgen.Generate(ctx, m, "java", "./out")
package umlgen

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/umlgen/compiler/gen"
	"github.com/syssam/umlgen/compiler/gen/golang"
	"github.com/syssam/umlgen/compiler/gen/graphql"
	"github.com/syssam/umlgen/compiler/gen/java"
	"github.com/syssam/umlgen/compiler/gen/rails"
	"github.com/syssam/umlgen/compiler/gen/sql"
	"github.com/syssam/umlgen/metamodel"
)

func init() {
	for _, a := range Adapters() {
		gen.DefaultRegistry.MustRegister(a)
	}
}

// Adapters returns new instances of the built-in target adapters.
func Adapters() []gen.Adapter {
	return []gen.Adapter{
		java.New(),
		rails.New(),
		golang.New(),
		sql.NewSQLite(),
		sql.NewPostgres(),
		graphql.New(),
	}
}

// NewRegistry returns a registry holding the built-in targets.
func NewRegistry() *gen.Registry {
	r := gen.NewRegistry()
	for _, a := range Adapters() {
		r.MustRegister(a)
	}
	return r
}

// Generate validates m and writes the code of target under outputDir.
// On a write failure the partial result is returned with the error.
func Generate(ctx context.Context, m *metamodel.DomainModel, target, outputDir string, opts ...gen.Option) (*gen.Result, error) {
	sink, err := gen.NewDirSink(outputDir)
	if err != nil {
		return nil, err
	}
	e, err := gen.NewEngine(opts...)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, m, target, sink)
}

// ModelFunc builds a fresh domain model.
type ModelFunc func() (*metamodel.DomainModel, error)

type (
	// Batch generates several targets concurrently.
	Batch struct {
		// Model builds the model of each target. A model is owned by the
		// goroutine rendering it, so every target gets its own.
		Model ModelFunc
		// Targets are the target identifiers to generate.
		Targets []string
		// OutputDir is the root directory. Each target writes in the
		// subdirectory named after it.
		OutputDir string
		// Workers limits the targets rendered at once. Defaults to
		// GOMAXPROCS.
		Workers int
		// Options configure the engine of every target.
		Options []gen.Option
	}
)

// Run generates every target of the batch and returns the results in
// target order. The first failure cancels the targets not yet started.
func (b *Batch) Run(ctx context.Context) ([]*gen.Result, error) {
	if b.Model == nil {
		return nil, gen.NewConfigError("Model", nil, "model builder cannot be nil")
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*gen.Result, len(b.Targets))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, target := range b.Targets {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := b.Model()
			if err != nil {
				return fmt.Errorf("umlgen: build model for %s: %w", target, err)
			}
			res, err := Generate(ctx, m, target, filepath.Join(b.OutputDir, target), b.Options...)
			results[i] = res
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
