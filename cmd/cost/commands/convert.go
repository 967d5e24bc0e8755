package commands

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/utcs-scea/cost/pkg/config"
	"github.com/utcs-scea/cost/pkg/engine"
	"github.com/utcs-scea/cost/pkg/format"
	"github.com/utcs-scea/cost/pkg/graph"
)

func newToVertexCmd(a *app) *cobra.Command {
	var (
		mode      string
		symmetric bool
	)
	cmd := &cobra.Command{
		Use:   "to-vertex <input> <prefix>",
		Short: "Write <prefix>.nodes and <prefix>.edges",
		Example: `  cost to-vertex soc-LiveJournal1.txt graphs/lj
  cost to-vertex graphs/lj -m hilbert graphs/lj-csr --symmetric`,
		Args: cobra.ExactArgs(2),
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", config.DefaultMode, "Backend the input is read with")
	cmd.Flags().BoolVar(&symmetric, "symmetric", false, "Also write <prefix>.binodes and <prefix>.biedges")
	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		prefix := format.Paths(args[1])
		return a.convert(cmd, "to-vertex", mode, args[0], func(ctx context.Context, eng *engine.Engine, g graph.EdgeMapper) error {
			nodes, edges, err := writeCSRPair(prefix.Nodes(), prefix.Edges(), g, graph.WriteCSR)
			if err != nil {
				return err
			}
			eng.Logger.Info("Wrote vertex layout", "prefix", prefix, "nodes", nodes, "edges", edges)
			if !symmetric {
				return nil
			}
			nodes, edges, err = writeCSRPair(prefix.BiNodes(), prefix.BiEdges(), g, graph.WriteSymmetricCSR)
			if err != nil {
				return err
			}
			eng.Logger.Info("Wrote symmetric layout", "prefix", prefix, "nodes", nodes, "edges", edges)
			return nil
		})
	})
	return cmd
}

func writeCSRPair(nodesPath, edgesPath string, g graph.EdgeMapper, write func(graph.EdgeMapper, *format.CSRWriter, int) error) (nodes, edges uint64, err error) {
	pair, err := format.CreatePair(nodesPath, edgesPath)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		err = errors.Join(err, pair.Close())
	}()

	w := format.NewCSRWriter(pair.First, pair.Second)
	if err := write(g, w, 0); err != nil {
		return 0, 0, err
	}
	nodes, edges = w.Counts()
	return nodes, edges, nil
}

func newToHilbertCmd(a *app) *cobra.Command {
	var (
		mode   string
		dense  bool
		rename bool
	)
	cmd := &cobra.Command{
		Use:   "to-hilbert <input> [prefix]",
		Short: "Write <prefix>.upper and <prefix>.lower in curve order",
		Long: `Regroup the edges of a graph along the Hilbert curve into .upper/.lower
halves. The prefix defaults to the input with its extension removed.`,
		Example: `  cost to-hilbert graphs/lj
  cost to-hilbert edges.txt -m reader graphs/web --rename`,
		Args: cobra.RangeArgs(1, 2),
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(graph.ModeVertex), "Backend the input is read with")
	cmd.Flags().BoolVar(&dense, "dense", false, "Emit a group for every block, empty or not")
	cmd.Flags().BoolVar(&rename, "rename", false, "Renumber vertices densely and write <prefix>.names")
	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		prefix := defaultPrefix(args[0])
		if len(args) == 2 {
			prefix = format.Paths(args[1])
		}
		return a.convert(cmd, "to-hilbert", mode, args[0], func(ctx context.Context, eng *engine.Engine, g graph.EdgeMapper) error {
			var names *graph.Renamer
			if rename {
				names = graph.NewRenamer()
				g = graph.Renamed(g, names)
			}
			groups, edges, err := writeCurvePair(prefix, g, dense)
			if err != nil {
				return err
			}
			eng.Logger.Info("Wrote hilbert layout", "prefix", prefix, "groups", groups, "edges", edges, "dense", dense)
			if names != nil {
				if err := writeNames(prefix.Names(), names.Originals()); err != nil {
					return err
				}
				eng.Logger.Info("Wrote vertex names", "path", prefix.Names(), "vertices", names.Len())
			}
			return nil
		})
	})
	return cmd
}

// defaultPrefix drops a binary layout suffix or a text extension.
func defaultPrefix(input string) format.Paths {
	p := format.TrimPrefix(input)
	if string(p) != input {
		return p
	}
	return format.Paths(strings.TrimSuffix(input, filepath.Ext(input)))
}

func writeCurvePair(prefix format.Paths, g graph.EdgeMapper, dense bool) (groups, edges uint64, err error) {
	pair, err := format.CreatePair(prefix.Upper(), prefix.Lower())
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		err = errors.Join(err, pair.Close())
	}()

	w := format.NewCurveWriter(pair.First, pair.Second)
	if err := format.ConvertToCurve(g, 0, dense, w.WriteGroup); err != nil {
		return 0, 0, err
	}
	if err := w.Flush(); err != nil {
		return 0, 0, err
	}
	groups, edges = w.Counts()
	return groups, edges, nil
}

// writeNames stores one little-endian u32 original id per dense id.
func writeNames(path string, originals []uint32) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	bw := bufio.NewWriter(f)
	if err := binary.Write(bw, binary.LittleEndian, originals); err != nil {
		return err
	}
	return bw.Flush()
}

func newCompressCmd(a *app) *cobra.Command {
	var (
		mode  string
		dedup bool
	)
	cmd := &cobra.Command{
		Use:   "compress <input> <output>",
		Short: "Write a delta-compressed curve index file",
		Long: `Sort the curve indices of every edge and write their gaps in delta format.
Repeated edges cannot be represented; --dedup drops them instead of failing.
The edge (0,0) is never representable.`,
		Args: cobra.ExactArgs(2),
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", config.DefaultMode, "Backend the input is read with")
	cmd.Flags().BoolVar(&dedup, "dedup", false, "Drop repeated edges")
	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		output := args[1]
		return a.convert(cmd, "compress", mode, args[0], func(ctx context.Context, eng *engine.Engine, g graph.EdgeMapper) (err error) {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer func() {
				err = errors.Join(err, f.Close())
			}()

			stats, err := format.CompressEdges(g, f, 0, dedup)
			if err != nil {
				return err
			}
			eng.Logger.Info("Wrote delta file", "path", output, "edges", stats.Edges, "written", stats.Written, "dropped", stats.Dropped)
			return nil
		})
	})
	return cmd
}
