// Package config loads, merges, and validates Anna's daemon configuration.
package config

// Config is the fully resolved, validated configuration for annad.
// It is constructed once at startup by Initialize and threaded explicitly
// through component constructors — there is no ambient/global config
// value, per spec.md §9's "Global singletons" REDESIGN FLAG.
type Config struct {
	configDir string

	Daemon      DaemonConfig           `yaml:"daemon"`
	Autonomy    AutonomyConfig         `yaml:"autonomy"`
	Telemetry   TelemetryConfig        `yaml:"telemetry"`
	Shell       ShellIntegrationConfig `yaml:"shell"`
	Logging     LoggingConfig          `yaml:"logging"`
	LLM         LLMConfig              `yaml:"llm"`
	Stages      StageBudgets           `yaml:"stages"`
	Reliability ReliabilityConfig      `yaml:"reliability"`
	Probes      ProbeConfig            `yaml:"probes"`
	Paths       PathsConfig            `yaml:"paths"`
	Benchmark   BenchmarkConfig        `yaml:"benchmark"`
	Wiki        WikiConfig             `yaml:"wiki"`
	Update      UpdateConfig           `yaml:"update"`
}

// ConfigDir returns the directory the configuration was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Stats summarizes the loaded configuration for startup logging.
type Stats struct {
	AutonomyLevel       AutonomyLevel
	ReliabilityThresh   uint8
	LLMEnabled          bool
	MaxConcurrentProbes int
}

// Stats returns a small summary suitable for a startup log line.
func (c *Config) Stats() Stats {
	return Stats{
		AutonomyLevel:       c.Autonomy.Level,
		ReliabilityThresh:   c.Reliability.Threshold,
		LLMEnabled:          c.LLM.Enabled,
		MaxConcurrentProbes: c.Probes.MaxConcurrent,
	}
}
