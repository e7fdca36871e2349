package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driving"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the change-set the next sync would apply",
	Long: `Reads both sides and prints every create and update the next sync
would perform. Nothing is applied and no run is recorded.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	d, err := requireDeps()
	if err != nil {
		return err
	}

	return withSync(d, func(svc driving.SyncService, settings *domain.Settings) error {
		plan, err := svc.Plan(cmd.Context())
		if err != nil {
			return fmt.Errorf("plan failed: %w", err)
		}

		out := cmd.OutOrStdout()
		st := newStyles(out)
		label := settings.Mapping.LabelField()

		if plan.Empty() {
			fmt.Fprintln(out, st.Success("Nothing to do."))
		} else {
			fmt.Fprintln(out, st.Title(fmt.Sprintf("Change-set (%d)", len(plan.Items))))
			for _, item := range plan.Items {
				fmt.Fprintf(out, "  %-6s %s %s\n", item.Action, item.Record.Label(label), st.Muted(item.Record.ID))
				if item.Target != nil {
					for _, field := range item.Record.Fields.Keys() {
						before, after := item.Target.Fields[field], item.Record.Fields[field]
						if before != after {
							fmt.Fprintf(out, "         %s: %q -> %q\n", field, before, after)
						}
					}
				}
			}
		}

		fmt.Fprintf(out, "\n  %-10s %d\n", "unchanged", plan.Unchanged)
		fmt.Fprintf(out, "  %-10s %d\n", "unmanaged", plan.Unmanaged)
		renderWarnings(out, st, plan.Warnings)
		renderOrphans(out, st, plan.Orphans)
		return nil
	})
}
