package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utcs-scea/cost/pkg/storage"
)

func newFetchCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "fetch <s3://bucket/prefix>",
		Short: "Copy stored graph files from S3 into a local directory",
		Example: `  cost fetch s3://graphs/twitter/rv --dir data
  cost bfs -m hilbert -f data/rv -n 1000 -s 0`,
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Destination directory")
	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		if _, _, ok := storage.SplitS3URL(args[0]); !ok {
			return fmt.Errorf("%w: %q is not an s3:// url", storage.ErrInvalidTarget, args[0])
		}
		ctx := cmd.Context()
		src, prefix, err := storage.Resolve(ctx, args[0])
		if err != nil {
			return err
		}
		copied, err := storage.Mirror(ctx, src, prefix, storage.NewLocalStore(dir))
		if err != nil {
			return err
		}
		if len(copied) == 0 {
			a.logger.Warn("Nothing matched", "source", args[0])
		}
		for _, name := range copied {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		a.logger.Info("Fetched", "source", args[0], "dir", dir, "files", len(copied))
		return nil
	})
	return cmd
}
