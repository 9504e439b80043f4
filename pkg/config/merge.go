package config

import "dario.cat/mergo"

// mergeOverDefaults merges a user-supplied YAML config over the built-in
// defaults, with non-zero user values taking precedence. Mirrors the
// teacher's defaults-then-merge pipeline (pkg/config/loader.go), generalized
// from per-component registry merges to a single whole-Config merge since
// Anna has no plural agent/chain/server registries to combine.
func mergeOverDefaults(user *Config) (*Config, error) {
	base := Defaults()
	if err := mergo.Merge(base, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return base, nil
}
