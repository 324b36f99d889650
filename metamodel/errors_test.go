package metamodel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := &ModelError{Kind: ErrInvalidProperty, Element: "property", Name: "Paper.title", Message: "bad default", Cause: cause}

		assert.Contains(t, err.Error(), "umlgen: invalid property")
		assert.Contains(t, err.Error(), "on property Paper.title")
		assert.Contains(t, err.Error(), "bad default")
		assert.Contains(t, err.Error(), "underlying error")
	})

	t.Run("Error message without kind", func(t *testing.T) {
		err := &ModelError{Name: "Paper"}
		assert.Equal(t, "umlgen: model error Paper", err.Error())
	})

	t.Run("Is matches kind only", func(t *testing.T) {
		err := newModelError(ErrDuplicateName, "class", "Paper", "")
		assert.True(t, errors.Is(err, ErrDuplicateName))
		assert.False(t, errors.Is(err, ErrUnknownType))
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := &ModelError{Kind: ErrInvalidProperty, Cause: cause}
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("IsModelError helper", func(t *testing.T) {
		assert.True(t, IsModelError(newModelError(ErrUnknownType, "type", "X", "")))
		assert.False(t, IsModelError(errors.New("other")))
	})
}

func TestValidationFailedError(t *testing.T) {
	err := &ValidationFailedError{
		Model: "Research",
		Findings: []Finding{
			{Severity: SeverityError, Err: newModelError(ErrCyclicGeneralization, "generalization", "A", "cycle")},
			{Severity: SeverityWarning, Err: newModelError(ErrNameShadowing, "property", "B.name", "hides")},
			{Severity: SeverityError, Err: newModelError(ErrMalformedAssociation, "association", "a", "two composite ends")},
		},
	}
	assert.Contains(t, err.Error(), "for model Research: 2 errors")
	assert.NotContains(t, err.Error(), "hides")
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.True(t, errors.Is(err, ErrCyclicGeneralization))
	assert.True(t, errors.Is(err, ErrMalformedAssociation))
	assert.False(t, errors.Is(err, ErrNameShadowing))
	assert.Len(t, err.Unwrap(), 2)
}
