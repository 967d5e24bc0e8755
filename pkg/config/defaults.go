// Package config defines default settings and the shape of the config file.
package config

// PageRankConfig holds the PageRank parameters.
type PageRankConfig struct {
	// Alpha is the damping factor.
	Alpha float32 `mapstructure:"alpha" yaml:"alpha"`
	// Iterations is the number of full passes after the degree pass.
	Iterations int `mapstructure:"iterations" yaml:"iterations"`
}

// Defaults.
const (
	EnvPrefix   = "COST"
	ConfigName  = ".cost"
	ConfigType  = "yaml"
	DefaultMode = "reader"

	DefaultGenerateNodes = 1 << 10
	DefaultGenerateEdges = 1 << 12
)

// DefaultPageRankConfig returns the standard damping and iteration count.
func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{
		Alpha:      0.85,
		Iterations: 20,
	}
}
