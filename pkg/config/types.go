package config

import "time"

// AutonomyLevel caps the risk level of actions the pipeline will recommend.
type AutonomyLevel string

const (
	AutonomyOff  AutonomyLevel = "off"
	AutonomyLow  AutonomyLevel = "low"
	AutonomySafe AutonomyLevel = "safe"
)

// IsValid reports whether the autonomy level is one of the recognized values.
func (a AutonomyLevel) IsValid() bool {
	switch a {
	case AutonomyOff, AutonomyLow, AutonomySafe:
		return true
	default:
		return false
	}
}

// DaemonConfig holds the RPC ingress settings.
type DaemonConfig struct {
	SocketPath string `yaml:"socket_path" validate:"required"`
	SocketMode uint32 `yaml:"socket_mode,omitempty"`
}

// AutonomyConfig caps recommended-action risk.
type AutonomyConfig struct {
	Level AutonomyLevel `yaml:"level" validate:"required"`
}

// TelemetryConfig governs persistence of learned recipes and the update ledger.
type TelemetryConfig struct {
	LocalStore bool `yaml:"local_store"`
}

// ShellIntegrationConfig governs optional shell completion emission.
// Has no effect on the core pipeline; carried for parity with spec.md §6.
type ShellIntegrationConfig struct {
	Autocomplete bool `yaml:"autocomplete"`
}

// LoggingConfig controls log verbosity and format.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"required,oneof=debug info warn error"`
}

// LLMConfig points the Translator and Synthesizer at the local model runtime.
type LLMConfig struct {
	Enabled    bool          `yaml:"enabled"`
	BaseURL    string        `yaml:"base_url" validate:"required_if=Enabled true"`
	Model      string        `yaml:"model" validate:"required_if=Enabled true"`
	APIKeyEnv  string        `yaml:"api_key_env,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	RatePerSec float64       `yaml:"rate_per_sec,omitempty" validate:"omitempty,gt=0"`
}

// StageBudgets bounds per-stage wall-clock time, in milliseconds.
type StageBudgets struct {
	TranslateMS       int `yaml:"translate_ms" validate:"required,gt=0"`
	ProbesAggregateMS int `yaml:"probes_aggregate_ms" validate:"required,gt=0"`
	SynthesizeMS      int `yaml:"synthesize_ms" validate:"required,gt=0"`
	VerifyMS          int `yaml:"verify_ms" validate:"required,gt=0"`
}

// Duration helpers convert a StageBudgets field to a time.Duration.
func (b StageBudgets) Translate() time.Duration  { return time.Duration(b.TranslateMS) * time.Millisecond }
func (b StageBudgets) Probes() time.Duration     { return time.Duration(b.ProbesAggregateMS) * time.Millisecond }
func (b StageBudgets) Synthesize() time.Duration { return time.Duration(b.SynthesizeMS) * time.Millisecond }
func (b StageBudgets) Verify() time.Duration     { return time.Duration(b.VerifyMS) * time.Millisecond }

// ReliabilityConfig configures the verification threshold and retry caps.
type ReliabilityConfig struct {
	Threshold       uint8 `yaml:"threshold" validate:"required,gte=60,lte=100"`
	JuniorRoundsMax uint8 `yaml:"junior_rounds_max" validate:"required,gte=1"`
	SeniorRoundsMax uint8 `yaml:"senior_rounds_max" validate:"gte=0"`
}

// ProbeConfig configures probe dispatch concurrency and defaults.
type ProbeConfig struct {
	MaxConcurrent  int `yaml:"max_concurrent" validate:"required,gt=0"`
	DefaultTimeout int `yaml:"default_timeout_ms" validate:"required,gt=0"`
	MaxOutputBytes int `yaml:"max_output_bytes" validate:"required,gt=0"`
}

// PathsConfig resolves the host state root and derived directories.
type PathsConfig struct {
	StateRoot string `yaml:"state_root" validate:"required"`
	LogDir    string `yaml:"log_dir" validate:"required"`
}

// KnowledgeDir returns the state-root-relative knowledge cache directory.
func (p PathsConfig) KnowledgeDir() string { return p.StateRoot + "/knowledge" }

// RecipesDir returns the state-root-relative recipe store directory.
func (p PathsConfig) RecipesDir() string { return p.StateRoot + "/recipes" }

// StateDir returns the state-root-relative ledger/install-state directory.
func (p PathsConfig) StateDir() string { return p.StateRoot + "/state" }

// BenchmarkConfig configures the idle-triggered background benchmark scheduler.
type BenchmarkConfig struct {
	Enabled        bool `yaml:"enabled"`
	MinIdleSeconds int  `yaml:"min_idle_seconds,omitempty" validate:"omitempty,gt=0"`
	MaxRunSeconds  int  `yaml:"max_run_seconds,omitempty" validate:"omitempty,gt=0"`
	CooldownSecs   int  `yaml:"cooldown_seconds,omitempty" validate:"omitempty,gt=0"`
}

// WikiConfig configures the Arch Wiki local mirror client.
type WikiConfig struct {
	Enabled  bool          `yaml:"enabled"`
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty"`
}

// UpdateConfig configures the periodic update checker.
type UpdateConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule,omitempty"` // cron expression
	Repo     string `yaml:"repo,omitempty"`     // "owner/name" on GitHub
}
