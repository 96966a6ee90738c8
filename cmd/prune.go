package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brightdeck/citation-cli/internal/ingest"
	"github.com/brightdeck/citation-cli/internal/model"
	"github.com/brightdeck/citation-cli/internal/scorer"
)

var pruneInput string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Score a claim file and drop the noise",
	Long:  "Scores all claims, prunes citations below the noise floors (signal < 30 or confidence < 0.3), and prints what survives.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		claims, err := ingest.ReadFile(pruneInput)
		if err != nil {
			return err
		}

		reg, err := newRegistry()
		if err != nil {
			return err
		}

		for i, claim := range claims {
			opts, err := claim.Options()
			if err != nil {
				zap.L().Warn("skipping malformed claim", zap.Int("index", i), zap.Error(err))
				continue
			}
			if _, err := reg.AddCitation(claim.Source, claim.Content, opts); err != nil {
				zap.L().Warn("skipping invalid claim", zap.Int("index", i), zap.Error(err))
			}
		}

		before := reg.Len()
		removed := reg.PruneNoisy()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pruned %d of %d citations\n", removed, before)
		for _, c := range reg.ExportCitations(model.ExportFilter{}) {
			fmt.Fprintln(out, scorer.FormatCitation(c))
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&pruneInput, "input", "", "claim file (json, csv, or xlsx)")
	_ = pruneCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(pruneCmd)
}
