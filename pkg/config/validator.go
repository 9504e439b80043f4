package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator runs struct-tag validation plus the cross-field business rules
// that validator tags can't express, in a fixed order so the first failure
// reported is always the most actionable one. Mirrors the teacher's
// Validator.ValidateAll() ordered-validation pattern (pkg/config/validator.go):
// fail-fast, wrapped errors naming the offending component.
type Validator struct {
	cfg *Config
	v   *validator.Validate
}

// NewValidator constructs a Validator for cfg.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg, v: validator.New()}
}

// ValidateAll runs every validation step in order, stopping at the first
// failure.
func (val *Validator) ValidateAll() error {
	steps := []func() error{
		val.validateAutonomy,
		val.validateReliability,
		val.validatePaths,
		val.validateLLM,
		val.validateStructTags,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (val *Validator) validateStructTags() error {
	if err := val.v.Struct(val.cfg); err != nil {
		return fmt.Errorf("struct validation: %w", err)
	}
	return nil
}

func (val *Validator) validateAutonomy() error {
	if !val.cfg.Autonomy.Level.IsValid() {
		return NewValidationError("autonomy", "level", fmt.Errorf("%w: %q", ErrInvalidValue, val.cfg.Autonomy.Level))
	}
	return nil
}

func (val *Validator) validateReliability() error {
	r := val.cfg.Reliability
	if r.Threshold < MinReliabilityThreshold {
		return NewValidationError("reliability", "threshold",
			fmt.Errorf("%w: threshold %d below floor %d", ErrInvalidValue, r.Threshold, MinReliabilityThreshold))
	}
	if r.JuniorRoundsMax == 0 {
		return NewValidationError("reliability", "junior_rounds_max", fmt.Errorf("%w: must be at least 1", ErrInvalidValue))
	}
	return nil
}

func (val *Validator) validatePaths() error {
	if val.cfg.Paths.StateRoot == "" {
		return NewValidationError("paths", "state_root", fmt.Errorf("%w: must not be empty", ErrInvalidValue))
	}
	return nil
}

func (val *Validator) validateLLM() error {
	if !val.cfg.LLM.Enabled {
		return nil
	}
	if val.cfg.LLM.BaseURL == "" {
		return NewValidationError("llm", "base_url", fmt.Errorf("%w: required when llm.enabled is true", ErrInvalidValue))
	}
	if val.cfg.LLM.Model == "" {
		return NewValidationError("llm", "model", fmt.Errorf("%w: required when llm.enabled is true", ErrInvalidValue))
	}
	return nil
}
