package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driving"
)

// progressInterval is how often a running sync is polled for progress.
const progressInterval = 500 * time.Millisecond

var syncDryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Bring the course in line with the vocabulary database",
	Long: `Reads every row of the Notion database and every entry of the course,
then creates and updates course entries until both agree.

With --dry-run the change-set is computed and recorded but nothing is applied.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "compute and record the change-set without applying it")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	d, err := requireDeps()
	if err != nil {
		return err
	}

	return withSync(d, func(svc driving.SyncService, _ *domain.Settings) error {
		out := cmd.OutOrStdout()
		st := newStyles(out)

		report, err := syncWithProgress(cmd.Context(), cmd.ErrOrStderr(), svc, driving.SyncOptions{DryRun: syncDryRun})
		if report != nil {
			renderReport(out, st, report)
		}
		switch {
		case errors.Is(err, domain.ErrPartialApply):
			return err
		case err != nil:
			return fmt.Errorf("sync failed: %w", err)
		}

		if report != nil && !report.DryRun {
			fmt.Fprintln(out, st.Success("\nCourse is in sync."))
		}
		return nil
	})
}

// syncWithProgress runs a sync while showing apply progress on terminals.
func syncWithProgress(
	ctx context.Context,
	w io.Writer,
	svc driving.SyncService,
	opts driving.SyncOptions,
) (*domain.RunReport, error) {
	type result struct {
		report *domain.RunReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := svc.Sync(ctx, opts)
		done <- result{report, err}
	}()

	show := isTerminal(w)
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case res := <-done:
			if last != "" {
				fmt.Fprintln(w)
			}
			return res.report, res.err
		case <-ticker.C:
			if !show {
				continue
			}
			line := progressLine(svc.Status())
			if line != "" && line != last {
				fmt.Fprintf(w, "\r%s", line)
				last = line
			}
		}
	}
}

func progressLine(status driving.SyncStatus) string {
	if !status.Running {
		return ""
	}
	if status.Total == 0 {
		return status.Phase + "..."
	}
	return fmt.Sprintf("%s %d/%d (%d failed)", status.Phase, status.Applied+status.Failed, status.Total, status.Failed)
}
