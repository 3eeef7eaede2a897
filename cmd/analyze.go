package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/copylab/adlens/internal/analyzer"
	"github.com/copylab/adlens/internal/model"
	"github.com/copylab/adlens/internal/records"
	"github.com/copylab/adlens/internal/store"
)

var (
	analyzeCSV           string
	analyzeContext       string
	analyzeOutput        string
	analyzeFormat        string
	analyzePrettyHeaders bool
	analyzeLimit         int
	analyzeWorkers       int
	analyzePacing        string
	analyzeNoStore       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a CSV of ad records",
	Long: `Reads an ad-copy CSV (Title, Snippet, Display URL, optional Extensions),
submits each record to the text-generation service, and writes the unified
result table.

The batch never starts without a known rate allowance, and it always runs to
completion once started: per-record call failures and unparseable responses
are recorded in the output rows, not raised.

Examples:
  # Analyze all records, write CSV
  adlens analyze --csv ads.csv --context "ELISA kits" --output results.csv

  # XLSX output with readable column titles
  adlens analyze --csv ads.csv --output results.xlsx --format xlsx --pretty-headers

  # Strict upstream-rate pacing with 4 concurrent calls
  adlens analyze --csv ads.csv --pacing bucket --workers 4`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		recs, err := records.ParseAdsCSV(analyzeCSV)
		if err != nil {
			return eris.Wrap(err, "analyze: parse csv")
		}
		if analyzeLimit > 0 && analyzeLimit < len(recs) {
			recs = recs[:analyzeLimit]
		}
		zap.L().Info("parsed csv", zap.String("path", analyzeCSV), zap.Int("records", len(recs)))

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		quota, err := analyzer.FetchQuota(ctx, client)
		if err != nil {
			return eris.Wrap(err, "analyze: quota probe")
		}

		pacing := analyzePacing
		if pacing == "" {
			pacing = cfg.Analyze.Pacing
		}
		workers := analyzeWorkers
		if workers == 0 {
			workers = cfg.Analyze.Workers
		}

		runner := analyzer.NewRunner(newCaller(client), analyzer.LogSink{}, analyzer.RunnerConfig{
			Pacing:  pacing,
			Workers: workers,
		})

		var (
			st    store.Store
			runID string
		)
		if !analyzeNoStore {
			st, err = initStore()
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			run, err := st.CreateRun(ctx, analyzeCSV, analyzeContext, len(recs))
			if err != nil {
				return err
			}
			runID = run.ID
		}

		result, err := runner.Run(ctx, recs, analyzeContext, quota)
		if err != nil {
			if st != nil {
				_ = st.FailRun(ctx, runID, err.Error())
			}
			return eris.Wrap(err, "analyze: run batch")
		}
		if st != nil {
			if err := st.CompleteRun(ctx, runID, result); err != nil {
				zap.L().Warn("failed to record run result", zap.String("run_id", runID), zap.Error(err))
			}
		}

		return exportResult(result, runID)
	},
}

func exportResult(result *model.BatchResult, runID string) error {
	opts := records.ExportOptions{PrettyHeaders: analyzePrettyHeaders}

	var err error
	switch strings.ToLower(analyzeFormat) {
	case "xlsx":
		err = records.ExportXLSX(result.Rows, analyzeOutput, opts)
	case "csv", "":
		err = records.ExportCSV(result.Rows, analyzeOutput, opts)
	default:
		return eris.Errorf("analyze: unknown format %q", analyzeFormat)
	}
	if err != nil {
		return err
	}

	zap.L().Info("batch complete",
		zap.String("run_id", runID),
		zap.String("output", analyzeOutput),
		zap.Int("attempted", result.Attempted),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("degraded", result.Degraded),
		zap.Int("failed", result.Failed),
	)
	return nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "", "path to ad-copy CSV file (required)")
	analyzeCmd.Flags().StringVar(&analyzeContext, "context", "the advertised product", "what the ads are selling, interpolated into the prompt")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "results.csv", "output file path")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "csv", "output format: csv (default) or xlsx")
	analyzeCmd.Flags().BoolVar(&analyzePrettyHeaders, "pretty-headers", false, "write human-readable column titles")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 0, "max records to process (0 = all)")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "concurrent calls (default from config)")
	analyzeCmd.Flags().StringVar(&analyzePacing, "pacing", "", "pacing policy: count or bucket (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoStore, "no-store", false, "skip recording the run in the history database")
	_ = analyzeCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(analyzeCmd)
}
