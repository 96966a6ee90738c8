package main

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brightdeck/citation-cli/internal/export"
	"github.com/brightdeck/citation-cli/internal/ingest"
	"github.com/brightdeck/citation-cli/internal/model"
)

var (
	scoreInput       string
	scoreOutput      string
	scoreFormat      string
	scoreConcurrency int
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a claim file into citations",
	Long: `Reads claims from a JSON, CSV, or XLSX file, scores each for source
confidence and content signal, and writes the resulting citations.

Examples:
  citation-cli score --input claims.json
  citation-cli score --input claims.csv --format xlsx --output scored.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := export.ParseFormat(scoreFormat)
		if err != nil {
			return err
		}

		claims, err := ingest.ReadFile(scoreInput)
		if err != nil {
			return err
		}
		if len(claims) == 0 {
			zap.L().Info("no claims found", zap.String("input", scoreInput))
			return nil
		}

		reg, err := newRegistry()
		if err != nil {
			return err
		}

		runID := uuid.NewString()
		zap.L().Info("scoring claims",
			zap.String("run_id", runID),
			zap.String("input", scoreInput),
			zap.Int("claims", len(claims)),
			zap.Int("concurrency", scoreConcurrency),
		)

		citations := make([]model.Citation, len(claims))
		var mu sync.Mutex
		var failed int

		g, _ := errgroup.WithContext(cmd.Context())
		g.SetLimit(scoreConcurrency)
		for i, claim := range claims {
			g.Go(func() error {
				opts, err := claim.Options()
				if err != nil {
					zap.L().Warn("skipping malformed claim",
						zap.String("run_id", runID),
						zap.Int("index", i),
						zap.Error(err),
					)
					mu.Lock()
					failed++
					mu.Unlock()
					return nil
				}
				c, err := reg.AddCitation(claim.Source, claim.Content, opts)
				if err != nil {
					zap.L().Warn("skipping invalid claim",
						zap.String("run_id", runID),
						zap.Int("index", i),
						zap.Error(err),
					)
					mu.Lock()
					failed++
					mu.Unlock()
					return nil
				}
				citations[i] = c
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "score claims")
		}

		// Drop slots left empty by skipped claims.
		scored := citations[:0]
		for _, c := range citations {
			if c.ID != "" {
				scored = append(scored, c)
			}
		}

		zap.L().Info("scoring complete",
			zap.String("run_id", runID),
			zap.Int("scored", len(scored)),
			zap.Int("skipped", failed),
		)

		w, closeFn, err := openOutput(scoreOutput)
		if err != nil {
			return err
		}
		defer closeFn()

		return export.WriteCitations(w, scored, format)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreInput, "input", "", "claim file (json, csv, or xlsx)")
	scoreCmd.Flags().StringVar(&scoreOutput, "output", "", "output file (default stdout)")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "json", "output format (json, yaml, csv, xlsx)")
	scoreCmd.Flags().IntVar(&scoreConcurrency, "concurrency", 4, "max concurrent scoring goroutines")
	_ = scoreCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(scoreCmd)
}
