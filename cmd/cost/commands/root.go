package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/utcs-scea/cost/pkg/config"
	"github.com/utcs-scea/cost/pkg/engine"
	"github.com/utcs-scea/cost/pkg/version"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v        *viper.Viper
	cfgFile  string
	settings config.Settings
	logger   *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), settings: config.DefaultSettings()}

	rootCmd := &cobra.Command{
		Use:   "cost",
		Short: "Single-threaded graph analytics over compact edge layouts",
		Long: `cost - Graph analytics without a cluster

Stores edge sets as text, CSR, Hilbert-curve halves or delta-compressed
curve indices, and runs BFS, components and PageRank by repeated passes.`,
		Version:           version.Current,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.preRun,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default $HOME/.cost.yaml)")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.Bool("json-logs", false, "Emit logs as JSON")
	pf.Bool("trusted", false, "Skip the validation pass over the input")
	pf.BoolP("print-rounds", "p", false, "Log every pass at info level")
	pf.String("output", "", "Write results to a file or s3://bucket/key instead of stdout")
	pf.String("otel-endpoint", "", "OTLP HTTP endpoint for traces")
	pf.String("trace-out", "", "Write spans as JSON to this file")
	pf.Bool("skip-telemetry", false, "Disable tracing")
	pf.String("profile", "", "Write a cpu or mem profile to the working directory")

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd)
	})

	rootCmd.AddCommand(
		newBFSCmd(a),
		newCCCmd(a),
		newUnionFindCmd(a),
		newPageRankCmd(a),
		newStatsCmd(a),
		newDumpCmd(a),
		newToVertexCmd(a),
		newToHilbertCmd(a),
		newCompressCmd(a),
		newFetchCmd(a),
		newGenerateCmd(a),
	)
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) preRun(cmd *cobra.Command, args []string) error {
	if err := a.initConfig(); err != nil {
		return err
	}
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	for flag, key := range map[string]string{"alpha": "pagerank.alpha", "iterations": "pagerank.iterations"} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	if err := a.v.Unmarshal(&a.settings); err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	a.logger = engine.NewLogger(cmd.ErrOrStderr(), a.settings.JSONLogs, a.settings.Verbose)
	return nil
}

func (a *app) initConfig() error {
	defaults := config.DefaultSettings()
	a.v.SetDefault("mode", defaults.Mode)
	a.v.SetDefault("pagerank.alpha", defaults.PageRank.Alpha)
	a.v.SetDefault("pagerank.iterations", defaults.PageRank.Iterations)

	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", a.cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	a.v.SetConfigFile(filepath.Join(home, config.ConfigName+"."+config.ConfigType))
	a.v.SetConfigType(config.ConfigType)
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// wrap profiles fn when --profile is set.
func (a *app) wrap(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		switch a.settings.Profile {
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet).Stop()
		}
		return fn(cmd, args)
	}
}

// addGraphFlags registers the flags that select an input graph.
func addGraphFlags(cmd *cobra.Command, withNodes bool) {
	f := cmd.Flags()
	f.StringP("mode", "m", config.DefaultMode, "Backend: reader, hybrid, vertex, hilbert, compressed, compressed-mmap")
	f.StringP("filename", "f", "", "Edge list, delta file, or binary prefix")
	if withNodes {
		f.Uint32P("nodes", "n", 0, "Number of vertices; ids must be below it")
	}
}

func flagUsage(f *pflag.Flag) string {
	name := "--" + f.Name
	if f.Shorthand != "" {
		name = "-" + f.Shorthand + ", " + name
	}
	return name
}
