package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/utcs-scea/cost/pkg/analytics"
	"github.com/utcs-scea/cost/pkg/engine"
	"github.com/utcs-scea/cost/pkg/graph"
)

func newStatsCmd(a *app) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Edge count and id range of a stored graph",
		Args:  cobra.NoArgs,
	}
	addGraphFlags(cmd, false)
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the summary as YAML")
	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		return a.analyze(cmd, "stats", false, func(ctx context.Context, eng *engine.Engine, g graph.EdgeMapper) error {
			s, err := analytics.Stats(ctx, g, eng.AnalyticsOptions()...)
			if err != nil {
				return err
			}
			return eng.Emit(ctx, cmd.OutOrStdout(), func(w io.Writer) error {
				if asYAML {
					enc := yaml.NewEncoder(w)
					enc.SetIndent(2)
					if err := enc.Encode(s); err != nil {
						return err
					}
					return enc.Close()
				}
				return writeSummary(w, s)
			})
		})
	})
	return cmd
}

func writeSummary(w io.Writer, s analytics.Summary) error {
	_, err := fmt.Fprintf(w, "max src\t%d\nmax dst\t%d\nedges\t%d\nnodes\t%d\nself loops\t%d\n",
		s.MaxSrc, s.MaxDst, s.Edges, s.Nodes, s.SelfLoops)
	return err
}

func newDumpCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every edge of a stored graph as text",
		Long: `Print every edge of a stored graph as "src dst" lines, in the order the
backend replays them. The output is a valid reader-mode input.`,
		Args: cobra.NoArgs,
	}
	addGraphFlags(cmd, false)
	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		return a.analyze(cmd, "dump", false, func(ctx context.Context, eng *engine.Engine, g graph.EdgeMapper) error {
			return eng.Emit(ctx, cmd.OutOrStdout(), func(w io.Writer) error {
				return dumpEdges(w, g)
			})
		})
	})
	return cmd
}

func dumpEdges(w io.Writer, g graph.EdgeMapper) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	line := make([]byte, 0, 24)
	var werr error
	err := g.MapEdges(func(src, dst uint32) {
		if werr != nil {
			return
		}
		line = strconv.AppendUint(line[:0], uint64(src), 10)
		line = append(line, ' ')
		line = strconv.AppendUint(line, uint64(dst), 10)
		line = append(line, '\n')
		_, werr = bw.Write(line)
	})
	if err != nil {
		return err
	}
	if werr != nil {
		return werr
	}
	return bw.Flush()
}
