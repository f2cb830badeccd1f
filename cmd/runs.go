package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/accident-risk/internal/model"
	"github.com/sells-group/accident-risk/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect derivation run history",
	Long:  "Commands for listing and viewing recorded derivation runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List derivation runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		ds, _ := cmd.Flags().GetString("dataset")
		since, _ := cmd.Flags().GetDuration("since")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.RunFilter{Dataset: ds, Limit: limit}
		if since > 0 {
			filter.StartedAfter = time.Now().Add(-since)
		}

		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		withLocations, _ := cmd.Flags().GetBool("locations")
		if !withLocations {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}

		proneOnly, _ := cmd.Flags().GetBool("prone")
		locs, err := st.RunLocations(ctx, run.ID, proneOnly)
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		formatRunLocations(os.Stdout, locs)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("dataset", "", "filter by dataset file name")
	runsListCmd.Flags().Duration("since", 0, "only runs started within this window (e.g. 24h, 168h)")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsShowCmd.Flags().Bool("locations", false, "print the run's location table instead of the run record")
	runsShowCmd.Flags().Bool("prone", false, "with --locations, only accident-prone locations")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.DerivationRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATASET\tTHRESHOLD\tPRONE\tACCURACY\tSTARTED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t-------\t---------\t-----\t--------\t-------\t--------")

	for _, r := range runs {
		ds := r.Dataset
		if len(ds) > 30 {
			ds = ds[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%.1f%%\t%s\t%s\n",
			truncateID(r.ID),
			ds,
			r.Threshold,
			r.AccidentProneCount,
			r.Locations,
			r.Metadata.Accuracy*100,
			r.StartedAt.Format("2006-01-02 15:04"),
			r.Duration().Round(time.Millisecond).String(),
		)
	}
	_ = w.Flush()
}

// formatRunLocations writes a run's location snapshot to w.
func formatRunLocations(out io.Writer, locs []model.LocationStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "BARANGAY\tSTATION\tTOTAL\tFATAL\tPRONE\tCOMMON OFFENSE")
	for _, l := range locs {
		prone := ""
		if l.IsAccidentProne {
			prone = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			l.Barangay, l.Station, l.TotalAccidents, l.FatalAccidents, prone, l.MostCommonOffense)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
