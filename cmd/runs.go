package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/cevcharge/core/runstore"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Run history commands",
}

var (
	lsScenario string
	lsVehicle  string
	lsSince    string
	lsLimit    int
	lsJSON     bool
)

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored runs",
	RunE:  runRunsLs,
}

func init() {
	runsLsCmd.Flags().StringVar(&lsScenario, "scenario", "", "only runs of this scenario")
	runsLsCmd.Flags().StringVar(&lsVehicle, "vehicle", "", "only runs charging this vehicle")
	runsLsCmd.Flags().StringVar(&lsSince, "since", "", "only runs created after this RFC 3339 time")
	runsLsCmd.Flags().IntVarP(&lsLimit, "limit", "n", 20, "number of most recent runs to show (0 for all)")
	runsLsCmd.Flags().BoolVar(&lsJSON, "json", false, "print runs as JSON")
	runsCmd.AddCommand(runsLsCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsLs(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := setup(cfg)
	if err != nil {
		return err
	}
	defer closeService(svc)

	q := runstore.Query{Scenario: lsScenario, Vehicle: lsVehicle, Limit: lsLimit}
	if lsSince != "" {
		if q.Since, err = time.Parse(time.RFC3339, lsSince); err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
	}
	list, err := svc.Runs(cmd.Context(), q)
	if err != nil {
		return err
	}
	if lsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSCENARIO\tCREATED\tENERGY_KWH\tCOST\tPEAK_KW\tUNMET_KWH")
	for _, r := range list {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\t%.3f\t%.1f\t%.3f\n",
			r.ID, r.Scenario, r.CreatedAt.Format(time.RFC3339),
			r.Totals.EnergyKWh, r.Totals.TotalCost(), r.PeakKW, r.Totals.UnmetKWh)
	}
	return tw.Flush()
}
