package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/accident-risk/internal/artifact"
	"github.com/sells-group/accident-risk/internal/dataset"
	"github.com/sells-group/accident-risk/internal/derive"
	"github.com/sells-group/accident-risk/internal/model"
)

var (
	deriveDataset string
	deriveSheet   string
	deriveOut     string
	deriveRecord  bool
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Build the location table and classifier from incident records",
	Long:  "Reads a blotter spreadsheet (xlsx or csv), computes per-location statistics and the accident-prone threshold, trains the offline classifier and writes the artifacts the server loads.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if deriveDataset != "" {
			cfg.Derive.Dataset = deriveDataset
		}
		if deriveSheet != "" {
			cfg.Derive.Sheet = deriveSheet
		}
		if deriveOut != "" {
			cfg.Artifacts.Dir = deriveOut
		}
		if err := cfg.Validate("derive"); err != nil {
			return err
		}

		started := time.Now().UTC()
		res, err := runDerive(ctx)
		if err != nil {
			return err
		}

		bundle := &artifact.Bundle{
			Table:    res.Table,
			Features: res.Features,
			Metadata: res.Metadata,
			Model:    res.Model,
		}
		if err := artifact.Write(ctx, cfg.Artifacts.Dir, bundle); err != nil {
			return err
		}

		run := newDerivationRun(cfg.Derive.Dataset, res, started, time.Now().UTC())
		if deriveRecord {
			if err := recordRun(ctx, &run, res.Table); err != nil {
				return err
			}
		}

		formatDeriveSummary(os.Stdout, run, cfg.Artifacts.Dir)
		return nil
	},
}

func runDerive(ctx context.Context) (*derive.Result, error) {
	incidents, err := dataset.Load(ctx, cfg.Derive.Dataset, dataset.XLSXOptions{SheetName: cfg.Derive.Sheet})
	if err != nil {
		return nil, eris.Wrap(err, "derive: load dataset")
	}

	stations, err := derive.DefaultStations()
	if err != nil {
		return nil, err
	}

	return derive.Run(ctx, incidents, stations, derive.Options{
		Percentile: cfg.Derive.Percentile,
		TestRatio:  cfg.Derive.TestRatio,
		Seed:       cfg.Derive.Seed,
		MaxIter:    cfg.Derive.MaxIter,
		C:          cfg.Derive.Regularization,
	})
}

func recordRun(ctx context.Context, run *model.DerivationRun, table model.LocationTable) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	if err := st.RecordRun(ctx, run, table); err != nil {
		return eris.Wrap(err, "derive: record run")
	}
	zap.L().Info("derivation run recorded", zap.String("run_id", run.ID))
	return nil
}

func newDerivationRun(datasetPath string, res *derive.Result, started, finished time.Time) model.DerivationRun {
	return model.DerivationRun{
		Dataset:            filepath.Base(datasetPath),
		RecordsRead:        res.RecordsRead,
		RecordsUsed:        res.RecordsUsed,
		Locations:          res.Table.Statistics.Len(),
		AccidentProneCount: len(res.Table.Places),
		Threshold:          res.Table.Threshold,
		Metadata:           res.Metadata,
		StartedAt:          started,
		FinishedAt:         finished,
	}
}

// formatDeriveSummary writes a short report of a finished derivation to w.
func formatDeriveSummary(out io.Writer, run model.DerivationRun, dir string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if run.ID != "" {
		_, _ = fmt.Fprintf(w, "Run:\t%s\n", run.ID)
	}
	_, _ = fmt.Fprintf(w, "Dataset:\t%s\n", run.Dataset)
	_, _ = fmt.Fprintf(w, "Records used:\t%d of %d\n", run.RecordsUsed, run.RecordsRead)
	_, _ = fmt.Fprintf(w, "Locations:\t%d\n", run.Locations)
	_, _ = fmt.Fprintf(w, "Threshold:\t%d\n", run.Threshold)
	_, _ = fmt.Fprintf(w, "Accident-prone:\t%d\n", run.AccidentProneCount)
	_, _ = fmt.Fprintf(w, "Model accuracy:\t%.2f%%\n", run.Metadata.Accuracy*100)
	_, _ = fmt.Fprintf(w, "Artifacts:\t%s\n", dir)
	_ = w.Flush()
}

func init() {
	deriveCmd.Flags().StringVar(&deriveDataset, "dataset", "", "path to the incident spreadsheet (.xlsx or .csv)")
	deriveCmd.Flags().StringVar(&deriveSheet, "sheet", "", "worksheet name (default first sheet)")
	deriveCmd.Flags().StringVar(&deriveOut, "out", "", "artifacts output directory")
	deriveCmd.Flags().BoolVar(&deriveRecord, "record", false, "record the run in the configured store")
	rootCmd.AddCommand(deriveCmd)
}
