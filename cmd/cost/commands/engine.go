package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utcs-scea/cost/pkg/engine"
	"github.com/utcs-scea/cost/pkg/graph"
)

var errNoNodes = errors.New("--nodes must be positive")

// runWith builds an engine from the current settings, lets tweak adjust
// its config, and hands it to fn. Telemetry is flushed afterwards.
func (a *app) runWith(cmd *cobra.Command, tweak func(*engine.Config) error, fn func(context.Context, *engine.Engine) error) (err error) {
	cfg, err := engine.ConfigFromSettings(a.settings)
	if err != nil {
		return err
	}
	if tweak != nil {
		if err := tweak(&cfg); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	eng, err := engine.New(ctx, engine.WithLogger(a.logger), engine.WithConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if serr := eng.Shutdown(context.WithoutCancel(ctx)); serr != nil {
			a.logger.Warn("Telemetry shutdown failed", "error", serr)
		}
	}()
	return fn(ctx, eng)
}

// analyze runs fn over the graph named by --mode and --filename.
func (a *app) analyze(cmd *cobra.Command, name string, needNodes bool, fn func(context.Context, *engine.Engine, graph.EdgeMapper) error) error {
	if err := a.settings.Validate(); err != nil {
		return err
	}
	if needNodes && a.settings.Nodes == 0 {
		return errNoNodes
	}
	return a.runWith(cmd, func(cfg *engine.Config) error {
		if !needNodes {
			// Without a node count there is nothing to check against.
			cfg.Trusted = true
		}
		return nil
	}, func(ctx context.Context, eng *engine.Engine) error {
		return eng.Run(ctx, name, func(ctx context.Context, g graph.EdgeMapper) error {
			return fn(ctx, eng, g)
		})
	})
}

// convert opens input with mode, outside the configured --filename.
func (a *app) convert(cmd *cobra.Command, name, mode, input string, fn func(context.Context, *engine.Engine, graph.EdgeMapper) error) error {
	m, err := graph.ParseMode(mode)
	if err != nil {
		return err
	}
	return a.runWith(cmd, func(cfg *engine.Config) error {
		cfg.Mode = m
		cfg.Input = input
		cfg.Trusted = true
		return nil
	}, func(ctx context.Context, eng *engine.Engine) error {
		err := eng.Run(ctx, name, func(ctx context.Context, g graph.EdgeMapper) error {
			return fn(ctx, eng, g)
		})
		if err != nil {
			return fmt.Errorf("%s %s: %w", name, input, err)
		}
		return nil
	})
}
