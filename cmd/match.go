package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/match"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/participant"
	"github.com/sells-group/outreach-cli/internal/refindex"
	"github.com/sells-group/outreach-cli/internal/report"
)

var (
	matchCSV     string
	matchLimit   int
	matchDryRun  bool
	matchRebuild bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match campaign participants against the reference collections",
	Long: `Runs one batch matching pass: loads participants from a campaign CSV,
builds the reference index and ZIP-to-county map, resolves every participant
through the email > phone > address priority chain, and writes the matched
and unmatched exports.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		started := time.Now().UTC()

		participants, err := participant.Load(matchCSV, cfg.Participants.Charset)
		if err != nil {
			return err
		}
		if matchLimit > 0 && matchLimit < len(participants) {
			participants = participants[:matchLimit]
		}
		zap.L().Info("participants loaded",
			zap.String("csv", matchCSV),
			zap.Int("participants", len(participants)),
		)

		if matchDryRun {
			return nil
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		// The zip map and index must be fully built before any resolution
		// starts; lookups assume a complete, read-only index.
		zipMap := loadZipMap
		if matchRebuild {
			zipMap = buildZipMap
		}
		zipResolver, err := zipMap(ctx, st)
		if err != nil {
			return err
		}

		index, err := refindex.Build(ctx, st)
		if err != nil {
			return err
		}

		resolver := match.New(index, zipResolver)
		results, err := resolver.ResolveAll(ctx, participants, cfg.Match.Concurrency)
		if err != nil {
			return err
		}

		summary := report.Aggregate(results, index.Collisions())
		logSummary(summary)

		if err := report.WriteMatchedCSV(results, cfg.Report.MatchedPath); err != nil {
			return err
		}
		if err := report.WriteUnmatchedCSV(results, cfg.Report.UnmatchedPath); err != nil {
			return err
		}
		if cfg.Report.SummaryPath != "" {
			if err := report.WriteSummaryXLSX(summary, cfg.Report.SummaryPath); err != nil {
				return err
			}
		}

		run := &model.MatchRun{
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
			Stats:      summary.Stats,
		}
		if err := st.SaveRun(ctx, run); err != nil {
			return err
		}
		zap.L().Info("match run recorded", zap.String("run_id", run.ID))

		return nil
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchCSV, "csv", "", "path to participant CSV (required)")
	matchCmd.Flags().IntVar(&matchLimit, "limit", 0, "max participants to process (0 = all)")
	matchCmd.Flags().BoolVar(&matchDryRun, "dry-run", false, "parse the CSV and exit without matching")
	matchCmd.Flags().BoolVar(&matchRebuild, "rebuild-zipmap", false, "ignore the zip map cache and rebuild from source")
	_ = matchCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(matchCmd)
}

// logSummary emits the audit counters for one run.
func logSummary(summary report.Summary) {
	zap.L().Info("match run complete",
		zap.Int("participants", summary.Stats.Participants),
		zap.Int("matched", summary.Matched()),
		zap.Int("email", summary.Stats.ByQuality[model.QualityEmail]),
		zap.Int("phone", summary.Stats.ByQuality[model.QualityPhone]),
		zap.Int("address", summary.Stats.ByQuality[model.QualityAddress]),
		zap.Int("no_match", summary.Stats.ByQuality[model.QualityNoMatch]),
		zap.Int("no_zipcode", summary.Stats.NoZipcode),
		zap.Int("index_collisions", summary.Stats.Collisions),
	)
	for _, p := range summary.UnmatchedSamples {
		zap.L().Debug("unmatched sample",
			zap.String("name", p.Name),
			zap.String("city", p.City),
			zap.String("zip", p.ZIP),
		)
	}
}
