package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brightdeck/citation-cli/internal/ingest"
)

var (
	traceInput  string
	traceStages []string
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Replay citations through a stage pipeline and print their lineage",
	Long: `Scores a claim file, tracks every citation across each consecutive pair
of the given stages, and prints the resulting lineage plus per-boundary
crossing counts.

Example:
  citation-cli trace --input claims.json --stages research,analysis,deck`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if len(traceStages) < 2 {
			return fmt.Errorf("need at least two --stages to form a boundary")
		}

		claims, err := ingest.ReadFile(traceInput)
		if err != nil {
			return err
		}

		reg, err := newRegistry()
		if err != nil {
			return err
		}

		var ids []string
		for i, claim := range claims {
			opts, err := claim.Options()
			if err != nil {
				zap.L().Warn("skipping malformed claim", zap.Int("index", i), zap.Error(err))
				continue
			}
			c, err := reg.AddCitation(claim.Source, claim.Content, opts)
			if err != nil {
				zap.L().Warn("skipping invalid claim", zap.Int("index", i), zap.Error(err))
				continue
			}
			ids = append(ids, c.ID)
		}

		for _, id := range ids {
			for i := 0; i+1 < len(traceStages); i++ {
				reg.TrackAcrossSkillBoundary(id, traceStages[i], traceStages[i+1])
			}
		}

		out := cmd.OutOrStdout()
		for _, id := range ids {
			c, _ := reg.Citation(id)
			fmt.Fprintf(out, "%s (%s)\n", id, c.Source)
			for _, hop := range reg.GetCitationTrace(id) {
				fmt.Fprintf(out, "  %s\n", hop)
			}
		}

		fmt.Fprintln(out, "boundary crossings:")
		for i := 0; i+1 < len(traceStages); i++ {
			crossed := reg.BoundaryCrossings(traceStages[i], traceStages[i+1])
			fmt.Fprintf(out, "  %s -> %s: %d\n", traceStages[i], traceStages[i+1], len(crossed))
		}

		return nil
	},
}

func init() {
	traceCmd.Flags().StringVar(&traceInput, "input", "", "claim file (json, csv, or xlsx)")
	traceCmd.Flags().StringSliceVar(&traceStages, "stages", nil, "comma-separated processing stages, in order")
	_ = traceCmd.MarkFlagRequired("input")
	_ = traceCmd.MarkFlagRequired("stages")
	rootCmd.AddCommand(traceCmd)
}
