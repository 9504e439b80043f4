package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_ErrorMessage(t *testing.T) {
	err := NewValidationError("autonomy", "level", ErrInvalidValue)
	assert.Contains(t, err.Error(), "autonomy")
	assert.Contains(t, err.Error(), "level")
	assert.True(t, errors.Is(err, ErrInvalidValue))
}

func TestValidationError_NoField(t *testing.T) {
	err := NewValidationError("llm", "", ErrInvalidValue)
	assert.NotContains(t, err.Error(), `field ""`)
}

func TestLoadError_WrapsUnderlying(t *testing.T) {
	err := NewLoadError("anna.yaml", ErrInvalidYAML)
	assert.Contains(t, err.Error(), "anna.yaml")
	assert.True(t, errors.Is(err, ErrInvalidYAML))
}
