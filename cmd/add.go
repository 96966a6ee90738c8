package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brightdeck/citation-cli/internal/ingest"
	"github.com/brightdeck/citation-cli/internal/scorer"
)

var (
	addURL         string
	addSourceType  string
	addFreshness   string
	addDataQuality string
	addCompany     string
	addMetric      string
	addJSON        bool
)

var addCmd = &cobra.Command{
	Use:   "add <source> <content>",
	Short: "Score a single claim and print the resulting citation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		claim := ingest.Claim{
			Source:      args[0],
			Content:     args[1],
			URL:         addURL,
			SourceType:  addSourceType,
			Freshness:   addFreshness,
			DataQuality: addDataQuality,
			Company:     addCompany,
			Metric:      addMetric,
		}
		opts, err := claim.Options()
		if err != nil {
			return err
		}

		c, err := reg.AddCitation(claim.Source, claim.Content, opts)
		if err != nil {
			return err
		}

		if addJSON {
			out := cmd.OutOrStdout()
			return writeCitationJSON(out, c)
		}

		fmt.Fprintln(cmd.OutOrStdout(), scorer.FormatCitation(c))
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addURL, "url", "", "link to the source")
	addCmd.Flags().StringVar(&addSourceType, "source-type", "", "source type (web, database, api, calculation, model, scraper)")
	addCmd.Flags().StringVar(&addFreshness, "freshness", "", "data freshness (real-time, recent, historical, stale)")
	addCmd.Flags().StringVar(&addDataQuality, "data-quality", "", "data quality tier (primary, secondary, tertiary)")
	addCmd.Flags().StringVar(&addCompany, "company", "", "company the claim is about")
	addCmd.Flags().StringVar(&addMetric, "metric", "", "metric the claim reports")
	addCmd.Flags().BoolVar(&addJSON, "json", false, "print the full citation as JSON")
	rootCmd.AddCommand(addCmd)
}
