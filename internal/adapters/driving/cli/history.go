package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sync runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the full report of a run",
	Long:  `Shows a recorded run. A unique prefix of the run ID is enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func requireHistory() (*Dependencies, error) {
	if deps == nil || deps.History == nil {
		return nil, errors.New("history service not configured")
	}
	return deps, nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	d, err := requireHistory()
	if err != nil {
		return err
	}

	reports, err := d.History.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	st := newStyles(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tCREATE\tUPDATE\tUNCHANGED\tAPPLIED\tFAILED\tSTATUS")
	for i := range reports {
		r := &reports[i]
		sum := r.Summary()
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			sum.Creates, sum.Updates, sum.Unchanged, sum.Applied, sum.Failed,
			runStatus(st, r))
	}
	return tw.Flush()
}

// runStatus summarises a run in one word.
func runStatus(st styles, r *domain.RunReport) string {
	sum := r.Summary()
	switch {
	case r.Aborted():
		return st.Failure("aborted: " + truncate(r.Error, 40))
	case sum.Failed > 0:
		return st.Warning("partial")
	case r.DryRun:
		return st.Muted("dry-run")
	default:
		return st.Success("ok")
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	d, err := requireHistory()
	if err != nil {
		return err
	}

	report, err := d.History.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderReport(out, newStyles(out), report)
	return nil
}
