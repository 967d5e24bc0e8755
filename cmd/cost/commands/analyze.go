package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/utcs-scea/cost/pkg/analytics"
	"github.com/utcs-scea/cost/pkg/engine"
	"github.com/utcs-scea/cost/pkg/graph"
)

func newBFSCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bfs",
		Short: "Breadth-first depths from a start vertex",
		Example: `  cost bfs -m hilbert -f graphs/web -n 875713 -s 0
  cost bfs -f edges.txt -n 1024 --output s3://results/bfs.tsv`,
		Args: cobra.NoArgs,
	}
	addGraphFlags(cmd, true)
	cmd.Flags().Uint32P("start-vertex", "s", 0, "Vertex the search starts from")
	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		return a.analyze(cmd, "bfs", true, func(ctx context.Context, eng *engine.Engine, g graph.EdgeMapper) error {
			cfg := eng.Config()
			labels, err := analytics.BFS(ctx, g, cfg.Nodes, cfg.StartVertex, eng.AnalyticsOptions()...)
			if err != nil {
				return err
			}
			return eng.Emit(ctx, cmd.OutOrStdout(), func(w io.Writer) error {
				return engine.WriteLabels(w, labels)
			})
		})
	})
	return cmd
}

func newCCCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cc",
		Short: "Connected components by label propagation",
		Args:  cobra.NoArgs,
	}
	addGraphFlags(cmd, true)
	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		return a.analyze(cmd, "cc", true, func(ctx context.Context, eng *engine.Engine, g graph.EdgeMapper) error {
			res, err := analytics.ConnectedComponents(ctx, g, eng.Config().Nodes, eng.AnalyticsOptions()...)
			if err != nil {
				return err
			}
			eng.Logger.Info("Components", "count", res.Count, "passes", res.Passes)
			return eng.Emit(ctx, cmd.OutOrStdout(), func(w io.Writer) error {
				return engine.WriteLabels(w, res.Labels)
			})
		})
	})
	return cmd
}

func newUnionFindCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "union-find",
		Short: "Connected components by union-find in one pass",
		Args:  cobra.NoArgs,
	}
	addGraphFlags(cmd, true)
	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		return a.analyze(cmd, "union-find", true, func(ctx context.Context, eng *engine.Engine, g graph.EdgeMapper) error {
			res, err := analytics.UnionFind(ctx, g, eng.Config().Nodes, eng.AnalyticsOptions()...)
			if err != nil {
				return err
			}
			eng.Logger.Info("Components", "count", res.Count, "non_roots", res.Merges)
			return eng.Emit(ctx, cmd.OutOrStdout(), func(w io.Writer) error {
				return engine.WriteLabels(w, res.Roots)
			})
		})
	})
	return cmd
}

func newPageRankCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagerank",
		Short: "PageRank by repeated passes over the edges",
		Args:  cobra.NoArgs,
	}
	addGraphFlags(cmd, true)
	cmd.Flags().Float32("alpha", 0.85, "Damping factor")
	cmd.Flags().Int("iterations", 20, "Number of passes")
	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		return a.analyze(cmd, "pagerank", true, func(ctx context.Context, eng *engine.Engine, g graph.EdgeMapper) error {
			res, err := analytics.PageRank(ctx, g, eng.Config().Nodes, eng.AnalyticsOptions()...)
			if err != nil {
				return err
			}
			eng.Logger.Info("Ranks", "max", res.Max)
			return eng.Emit(ctx, cmd.OutOrStdout(), func(w io.Writer) error {
				return engine.WriteRanks(w, res.Values)
			})
		})
	})
	return cmd
}
