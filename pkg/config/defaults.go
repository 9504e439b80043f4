package config

import "time"

// DefaultJuniorRoundsMax is the default cap on junior verification rounds.
const DefaultJuniorRoundsMax = 3

// DefaultSeniorRoundsMax is the default cap on senior escalation rounds.
const DefaultSeniorRoundsMax = 1

// DefaultReliabilityThreshold is the default score a drafted answer must
// clear, combined with answer_grounded, to count as verified.
const DefaultReliabilityThreshold = 80

// MinReliabilityThreshold is the floor below which the threshold may never
// be configured, per spec.md §4.9.
const MinReliabilityThreshold = 60

// Defaults returns the built-in configuration applied before any YAML
// override is merged on top. Mirrors the teacher's builtin-then-merge
// pipeline shape (pkg/config/builtin.go), generalized to Anna's config
// surface.
func Defaults() *Config {
	return &Config{
		Daemon: DaemonConfig{
			SocketPath: "/run/anna/annad.sock",
			SocketMode: 0750,
		},
		Autonomy: AutonomyConfig{
			Level: AutonomyLow,
		},
		Telemetry: TelemetryConfig{
			LocalStore: true,
		},
		Shell: ShellIntegrationConfig{
			Autocomplete: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		LLM: LLMConfig{
			Enabled: true,
			BaseURL: "http://127.0.0.1:11535/v1",
			Model:   "anna-local",
			Timeout: 8 * time.Second,
		},
		Stages: StageBudgets{
			TranslateMS:       2000,
			ProbesAggregateMS: 8000,
			SynthesizeMS:      8000,
			VerifyMS:          4000,
		},
		Reliability: ReliabilityConfig{
			Threshold:       DefaultReliabilityThreshold,
			JuniorRoundsMax: DefaultJuniorRoundsMax,
			SeniorRoundsMax: DefaultSeniorRoundsMax,
		},
		Probes: ProbeConfig{
			MaxConcurrent:  4,
			DefaultTimeout: 3000,
			MaxOutputBytes: 64 * 1024,
		},
		Paths: PathsConfig{
			StateRoot: "/var/lib/anna",
			LogDir:    "/var/log/anna",
		},
		Benchmark: BenchmarkConfig{
			Enabled:        true,
			MinIdleSeconds: 30,
			MaxRunSeconds:  60,
			CooldownSecs:   300,
		},
		Wiki: WikiConfig{
			Enabled:  true,
			CacheTTL: 7 * 24 * time.Hour,
		},
		Update: UpdateConfig{
			Enabled:  true,
			Schedule: "0 6 * * *",
			Repo:     "jjgarcianorway/anna-assistant",
		},
	}
}
