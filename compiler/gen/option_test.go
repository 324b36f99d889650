package gen

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithHeader(t *testing.T) {
	t.Run("sets header", func(t *testing.T) {
		c := &Config{}
		err := WithHeader("Custom header")(c)

		require.NoError(t, err)
		assert.Equal(t, "Custom header", c.Header)
	})

	t.Run("empty header is allowed", func(t *testing.T) {
		c := &Config{Header: "existing"}
		err := WithHeader("")(c)

		require.NoError(t, err)
		assert.Equal(t, "", c.Header)
	})
}

func TestWithTemplateDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.tmpl")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name    string
		dir     string
		wantErr string
	}{
		{"existing directory", dir, ""},
		{"empty", "", "cannot be empty"},
		{"missing", filepath.Join(dir, "missing"), "no such file"},
		{"file", file, "not a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			err := WithTemplateDir(tt.dir)(c)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, c.TemplateDir)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dir, c.TemplateDir)
		})
	}
}

func TestWithFeatures(t *testing.T) {
	t.Run("appends features", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithFeatures(FeatureSnapshot)(c))
		require.NoError(t, WithFeatures(FeatureStrict)(c))
		assert.Len(t, c.Features, 2)
		assert.True(t, c.HasFeature(FeatureSnapshot.Name))
		assert.True(t, c.HasFeature(FeatureStrict.Name))
	})

	t.Run("by name", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithFeatureNames("validate/strict")(c))
		assert.Equal(t, []Feature{FeatureStrict}, c.Features)

		err := WithFeatureNames("model/unknown")(c)
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Contains(t, err.Error(), "model/unknown")
	})
}

func TestWithRegistry(t *testing.T) {
	c := &Config{}
	r := NewRegistry()
	require.NoError(t, WithRegistry(r)(c))
	assert.Same(t, r, c.Registry)
	assert.Same(t, r, c.registry())

	assert.True(t, IsConfigError(WithRegistry(nil)(c)))
	assert.Same(t, DefaultRegistry, (&Config{}).registry())
}

func TestWithLogger(t *testing.T) {
	c := &Config{}
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, WithLogger(l)(c))
	assert.Same(t, l, c.Logger)
	assert.Same(t, l, c.logger())

	assert.True(t, IsConfigError(WithLogger(nil)(c)))
	assert.NotNil(t, (&Config{}).logger())
}

func TestConfigApply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		c := &Config{}
		err := c.Apply(WithHeader("first"), WithHeader("second"))
		require.NoError(t, err)
		assert.Equal(t, "second", c.Header)
	})

	t.Run("stops at first error", func(t *testing.T) {
		c := &Config{}
		err := c.Apply(WithLogger(nil), WithHeader("never"))
		require.Error(t, err)
		assert.Empty(t, c.Header)
	})
}

func TestConfigApplyAll(t *testing.T) {
	c := &Config{}
	err := c.ApplyAll(WithLogger(nil), WithHeader("applied"), WithRegistry(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Logger")
	assert.Contains(t, err.Error(), "Registry")
	assert.Equal(t, "applied", c.Header)

	assert.NoError(t, c.ApplyAll())
}

func TestNewConfig(t *testing.T) {
	c, err := NewConfig(WithHeader("custom"))
	require.NoError(t, err)
	assert.Equal(t, "custom", c.Header)
	assert.Same(t, DefaultRegistry, c.Registry)

	_, err = NewConfig(WithTemplateDir(""))
	assert.True(t, IsConfigError(err))

	assert.Panics(t, func() { MustNewConfig(WithLogger(nil)) })
	assert.NotPanics(t, func() { MustNewConfig() })
}
