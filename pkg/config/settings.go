package config

import (
	"errors"
	"fmt"
)

// Settings is everything a run can be configured with, from flags, the
// COST_* environment or the config file.
type Settings struct {
	Mode        string `mapstructure:"mode"`
	Filename    string `mapstructure:"filename"`
	Nodes       uint32 `mapstructure:"nodes"`
	StartVertex uint32 `mapstructure:"start-vertex"`

	// Trusted skips the validation pass over the input.
	Trusted     bool `mapstructure:"trusted"`
	PrintRounds bool `mapstructure:"print-rounds"`
	Verbose     bool `mapstructure:"verbose"`
	JSONLogs    bool `mapstructure:"json-logs"`

	// Output is a local path or s3://bucket/key; empty means stdout.
	Output        string `mapstructure:"output"`
	OtelEndpoint  string `mapstructure:"otel-endpoint"`
	TraceOut      string `mapstructure:"trace-out"`
	SkipTelemetry bool   `mapstructure:"skip-telemetry"`
	Profile       string `mapstructure:"profile"`

	PageRank PageRankConfig `mapstructure:"pagerank"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Mode:     DefaultMode,
		PageRank: DefaultPageRankConfig(),
	}
}

// Validate checks the fields every command that reads a graph needs.
func (s Settings) Validate() error {
	var errs []error
	if s.Filename == "" {
		errs = append(errs, errors.New("filename is required"))
	}
	if s.PageRank.Alpha < 0 || s.PageRank.Alpha > 1 {
		errs = append(errs, fmt.Errorf("pagerank alpha %v is outside [0, 1]", s.PageRank.Alpha))
	}
	if s.PageRank.Iterations < 0 {
		errs = append(errs, fmt.Errorf("pagerank iterations %d is negative", s.PageRank.Iterations))
	}
	switch s.Profile {
	case "", "cpu", "mem":
	default:
		errs = append(errs, fmt.Errorf("unknown profile %q", s.Profile))
	}
	return errors.Join(errs...)
}
