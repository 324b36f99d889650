package gen

import (
	"os"
	"path/filepath"

	"github.com/syssam/umlgen/metamodel"
)

// snapshotFragment is the fragment name of the model snapshot.
const snapshotFragment = "umlgen/model.msgpack"

var (
	// FeatureSnapshot stores a msgpack snapshot of the generated model next to
	// the generated code, so that later runs and tools can diff against it.
	FeatureSnapshot = Feature{
		Name:        "model/snapshot",
		Stage:       Experimental,
		Default:     false,
		Description: "Snapshot stores a msgpack encoding of the domain model next to the generated code",
		ModelTemplates: []ModelTemplate{
			{
				Name:   "umlgen/snapshot",
				Format: func(*Context) string { return snapshotFragment },
				Build: func(c *Context) ([]byte, error) {
					return metamodel.EncodeSnapshot(c.Model())
				},
			},
		},
		cleanup: func(r Remover) error {
			return r.Remove(snapshotFragment)
		},
	}

	// FeatureStrict promotes validation warnings, such as attribute name
	// shadowing, to errors that block generation.
	FeatureStrict = Feature{
		Name:        "validate/strict",
		Stage:       Stable,
		Default:     false,
		Description: "Strict treats validation warnings as errors that block generation",
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureSnapshot,
		FeatureStrict,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development, and actively being tested.
	Experimental

	// Alpha features are features whose initial development was finished, but
	// we expect breaking-changes to their APIs.
	Alpha

	// Beta features are Alpha features that were documented, and no
	// breaking-changes are expected for them.
	Beta

	// Stable features are Beta features that were running for a while.
	Stable
)

// String returns the stage name.
func (s FeatureStage) String() string {
	switch s {
	case Experimental:
		return "experimental"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Stable:
		return "stable"
	default:
		return "unknown"
	}
}

// A Feature of the umlgen codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// ModelTemplates defines optional templates executed once per run for
	// every target, their output written as standalone fragments.
	ModelTemplates []ModelTemplate

	// cleanup removes the output of a previous run when the feature is
	// disabled.
	cleanup func(Remover) error
}

// FeatureByName returns the feature with the given name.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// remove file (if exists) and its dir if it's empty.
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return os.Remove(dir)
	}
	return nil
}
