package commands

import (
	"bufio"
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"lukechampine.com/frand"

	"github.com/utcs-scea/cost/pkg/config"
	"github.com/utcs-scea/cost/pkg/engine"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		nodes uint32
		edges uint64
		seed  string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random text edge list",
		Long: `Write a random text edge list with endpoints drawn uniformly below
--nodes. The same --seed always produces the same list.`,
		Example: `  cost generate --nodes 1048576 --edges 16777216 --output rand.txt`,
		Args:    cobra.NoArgs,
	}
	cmd.Flags().Uint32Var(&nodes, "nodes", config.DefaultGenerateNodes, "Number of vertices")
	cmd.Flags().Uint64Var(&edges, "edges", config.DefaultGenerateEdges, "Number of edges")
	cmd.Flags().StringVar(&seed, "seed", "", "Seed for a reproducible list")
	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		if nodes == 0 {
			return errors.New("--nodes must be positive")
		}
		rng := newRNG(seed)
		return a.runWith(cmd, nil, func(ctx context.Context, eng *engine.Engine) error {
			return eng.Emit(ctx, cmd.OutOrStdout(), func(w io.Writer) error {
				return writeRandomEdges(w, rng, nodes, edges)
			})
		})
	})
	return cmd
}

func newRNG(seed string) *frand.RNG {
	if seed == "" {
		s := frand.Entropy256()
		return frand.NewCustom(s[:], 1024, 12)
	}
	s := sha256.Sum256([]byte(seed))
	return frand.NewCustom(s[:], 1024, 12)
}

func writeRandomEdges(w io.Writer, rng *frand.RNG, nodes uint32, edges uint64) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	line := make([]byte, 0, 24)
	for range edges {
		src := rng.Uint64n(uint64(nodes))
		dst := rng.Uint64n(uint64(nodes))
		line = strconv.AppendUint(line[:0], src, 10)
		line = append(line, ' ')
		line = strconv.AppendUint(line, dst, 10)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
