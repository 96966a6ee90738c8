package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brightdeck/citation-cli/internal/export"
	"github.com/brightdeck/citation-cli/internal/ingest"
	"github.com/brightdeck/citation-cli/internal/model"
)

var (
	exportInput         string
	exportOutput        string
	exportFormat        string
	exportMinSignal     int
	exportMinConfidence float64
	exportSourceTypes   []string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Score, filter, and export citations sorted by signal x confidence",
	Long: `Scores a claim file and exports the citations that pass the given
filters, sorted descending by signal strength times confidence.

Examples:
  citation-cli export --input claims.json --min-signal 60 --min-confidence 0.5
  citation-cli export --input claims.csv --source-types web,api --format xlsx --output report.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		claims, err := ingest.ReadFile(exportInput)
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

		filter := model.ExportFilter{
			MinSignal:     exportMinSignal,
			MinConfidence: exportMinConfidence,
		}
		for _, st := range exportSourceTypes {
			filter.SourceTypes = append(filter.SourceTypes, model.SourceType(st))
		}

		citations := reg.ExportCitations(filter)
		zap.L().Info("export complete",
			zap.Int("stored", reg.Len()),
			zap.Int("exported", len(citations)),
		)

		w, closeFn, err := openOutput(exportOutput)
		if err != nil {
			return err
		}
		defer closeFn()

		return export.WriteCitations(w, citations, format)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "claim file (json, csv, or xlsx)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format (json, yaml, csv, xlsx)")
	exportCmd.Flags().IntVar(&exportMinSignal, "min-signal", 0, "minimum signal strength")
	exportCmd.Flags().Float64Var(&exportMinConfidence, "min-confidence", 0, "minimum confidence")
	exportCmd.Flags().StringSliceVar(&exportSourceTypes, "source-types", nil, "allow-list of source types")
	_ = exportCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(exportCmd)
}
