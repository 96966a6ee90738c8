package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brightdeck/citation-cli/internal/export"
	"github.com/brightdeck/citation-cli/internal/ingest"
	"github.com/brightdeck/citation-cli/internal/model"
)

var (
	aggregateInput  string
	aggregateOutput string
	aggregateFormat string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate a claim file into trust-scored data points",
	Long: `Scores claims, groups them by their "key" column, filters noise, and
aggregates each group into a data point with a composite trust score.
Claims without a key are scored but not aggregated.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := export.ParseFormat(aggregateFormat)
		if err != nil {
			return err
		}
		if format != export.FormatJSON && format != export.FormatYAML {
			return fmt.Errorf("aggregate supports json or yaml output, not %q", aggregateFormat)
		}

		claims, err := ingest.ReadFile(aggregateInput)
		if err != nil {
			return err
		}

		reg, err := newRegistry()
		if err != nil {
			return err
		}

		// Score all claims, grouping citations by key.
		groups := make(map[string][]model.Citation)
		values := make(map[string]string)
		var keys []string
		skipped := 0
		for i, claim := range claims {
			opts, err := claim.Options()
			if err != nil {
				zap.L().Warn("skipping malformed claim", zap.Int("index", i), zap.Error(err))
				skipped++
				continue
			}
			c, err := reg.AddCitation(claim.Source, claim.Content, opts)
			if err != nil {
				zap.L().Warn("skipping invalid claim", zap.Int("index", i), zap.Error(err))
				skipped++
				continue
			}
			if claim.Key == "" {
				continue
			}
			if _, seen := groups[claim.Key]; !seen {
				keys = append(keys, claim.Key)
			}
			groups[claim.Key] = append(groups[claim.Key], c)
			if values[claim.Key] == "" {
				values[claim.Key] = claim.Value
			}
		}

		if skipped > 0 {
			zap.L().Warn("claims skipped", zap.Int("count", skipped))
		}

		points := make([]model.DataPoint, 0, len(keys))
		for _, key := range keys {
			dp := reg.AggregateDataPoint(key, values[key], groups[key])
			points = append(points, dp)
			zap.L().Info("aggregated data point",
				zap.String("key", key),
				zap.Int("citations", len(dp.Citations)),
				zap.Bool("noise_filtered", dp.NoiseFiltered),
				zap.Int("trust_score", reg.TrustScore(key)),
			)
		}

		w, closeFn, err := openOutput(aggregateOutput)
		if err != nil {
			return err
		}
		defer closeFn()

		return export.WriteDataPoints(w, points, format)
	},
}

func init() {
	aggregateCmd.Flags().StringVar(&aggregateInput, "input", "", "claim file (json, csv, or xlsx)")
	aggregateCmd.Flags().StringVar(&aggregateOutput, "output", "", "output file (default stdout)")
	aggregateCmd.Flags().StringVar(&aggregateFormat, "format", "json", "output format (json or yaml)")
	_ = aggregateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(aggregateCmd)
}
