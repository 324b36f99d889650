package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, defaultHeader, c.Header)
	assert.Empty(t, c.TemplateDir)
	assert.Empty(t, c.Features)
	assert.Same(t, DefaultRegistry, c.Registry)
	assert.NotNil(t, c.Logger)
}

func TestConfigFeatureEnabled(t *testing.T) {
	t.Run("enabled feature", func(t *testing.T) {
		c := &Config{Features: []Feature{FeatureSnapshot}}
		enabled, err := c.FeatureEnabled(FeatureSnapshot.Name)
		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("disabled feature", func(t *testing.T) {
		c := &Config{}
		enabled, err := c.FeatureEnabled(FeatureStrict.Name)
		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("unknown feature", func(t *testing.T) {
		c := &Config{}
		enabled, err := c.FeatureEnabled("unknown/feature")
		require.Error(t, err)
		assert.False(t, enabled)
		assert.True(t, IsConfigError(err))
	})
}

func TestConfigFeatureEnabled_AllFeatures(t *testing.T) {
	c := &Config{Features: AllFeatures}
	for _, f := range AllFeatures {
		t.Run(f.Name, func(t *testing.T) {
			enabled, err := c.FeatureEnabled(f.Name)
			require.NoError(t, err)
			assert.True(t, enabled)
		})
	}
}

func TestFeatures(t *testing.T) {
	names := make(map[string]bool)
	for _, f := range AllFeatures {
		assert.False(t, names[f.Name], "duplicate feature %q", f.Name)
		names[f.Name] = true
		assert.NotEmpty(t, f.Description)
		assert.NotEqual(t, "unknown", f.Stage.String())

		got, ok := FeatureByName(f.Name)
		require.True(t, ok)
		assert.Equal(t, f.Name, got.Name)
	}
	_, ok := FeatureByName("model/unknown")
	assert.False(t, ok)

	assert.Equal(t, "experimental", Experimental.String())
	assert.Equal(t, "alpha", Alpha.String())
	assert.Equal(t, "beta", Beta.String())
	assert.Equal(t, "stable", Stable.String())
	assert.Equal(t, "unknown", FeatureStage(0).String())
}
