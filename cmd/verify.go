package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brightdeck/citation-cli/internal/export"
	"github.com/brightdeck/citation-cli/internal/ingest"
	"github.com/brightdeck/citation-cli/internal/model"
	"github.com/brightdeck/citation-cli/internal/scorer"
)

var (
	verifyInput  string
	verifyOutput string
	verifyFormat string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Cross-corroborate citations within a claim file",
	Long: `Scores all claims, then verifies each citation against every other
citation in the file. Citations confirmed by at least two others are marked
verified; citations contradicted by the rest are marked disputed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := export.ParseFormat(verifyFormat)
		if err != nil {
			return err
		}

		claims, err := ingest.ReadFile(verifyInput)
		if err != nil {
			return err
		}

		reg, err := newRegistry()
		if err != nil {
			return err
		}

		var citations []model.Citation
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
			citations = append(citations, c)
		}

		// Corroborate each citation against all the others.
		changed := 0
		for _, c := range citations {
			additional := make([]model.Citation, 0, len(citations)-1)
			for _, other := range citations {
				if other.ID != c.ID {
					additional = append(additional, other)
				}
			}
			reg.VerifyCitation(c.ID, additional)

			after, ok := reg.Citation(c.ID)
			if ok && after.VerificationStatus != c.VerificationStatus {
				changed++
				zap.L().Info("verification status changed",
					zap.String("id", c.ID),
					zap.String("source", c.Source),
					zap.String("from", string(c.VerificationStatus)),
					zap.String("to", string(after.VerificationStatus)),
				)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "verified %d citations, %d status changes\n", len(citations), changed)
		for _, c := range reg.ExportCitations(model.ExportFilter{}) {
			fmt.Fprintln(cmd.OutOrStdout(), scorer.FormatCitation(c))
		}

		if verifyOutput != "" {
			w, closeFn, err := openOutput(verifyOutput)
			if err != nil {
				return err
			}
			defer closeFn()
			return export.WriteCitations(w, reg.ExportCitations(model.ExportFilter{}), format)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyInput, "input", "", "claim file (json, csv, or xlsx)")
	verifyCmd.Flags().StringVar(&verifyOutput, "output", "", "write corroborated citations to file")
	verifyCmd.Flags().StringVar(&verifyFormat, "format", "json", "output format (json, yaml, csv, xlsx)")
	_ = verifyCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(verifyCmd)
}
