package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import expenses from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				res, err := env.Service.ImportFile(ctx, f)
				if err != nil {
					return fmt.Errorf("importing %s: %w", args[0], err)
				}

				out := cmd.OutOrStdout()
				flagged := 0
				for _, e := range res.Saved {
					if e.Anomaly {
						flagged++
					}
				}
				fmt.Fprintf(out, "Imported %d expenses (run %s)\n", res.SavedCount(), res.RunID)
				if flagged > 0 {
					fmt.Fprintf(out, "Flagged %d as anomalies\n", flagged)
				}
				for _, s := range res.Skipped {
					fmt.Fprintf(out, "Skipped line %d: %s\n", s.Line, s.Reason())
				}
				return nil
			})
		},
	}
}
