// clean.go implements the "xpost clean" command for trimming the diagnostics log.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xpost-dev/xpost/internal/cleanup"
	xlog "github.com/xpost-dev/xpost/internal/log"
)

func newCleanCmd() *cobra.Command {
	var (
		keep   int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove old diagnostics log entries",
		Long: `Remove old entries from ~/.xpost/log.jsonl.

By default, removes entries older than the configured log.max_age_days (default 30).
Use --keep to keep only the N most recent entries instead.
Use --dry-run to preview what would be removed.`,
		RunE: withEnv(func(cmd *cobra.Command, e *env) error {
			path := xlog.Path(e.dir)

			var (
				pruned int
				err    error
			)
			if keep > 0 {
				pruned, err = cleanup.PruneKeepRecent(path, keep, dryRun)
			} else {
				maxAge := e.cfg.Log.MaxAgeDays
				if maxAge <= 0 {
					maxAge = 30
				}
				pruned, err = cleanup.PruneByAge(path, maxAge, dryRun)
			}
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if pruned == 0 {
				fmt.Fprintln(out, "No log entries to clean up.")
				return nil
			}

			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			fmt.Fprintf(out, "%s %d log entries.\n", verb, pruned)
			return nil
		}),
	}

	cmd.Flags().IntVar(&keep, "keep", 0, "Keep only the last N entries (0 = use age-based cleanup)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview what would be removed without deleting")

	return cmd
}
