// Package export writes scored citations and data points to JSON, YAML,
// CSV, and XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/brightdeck/citation-cli/internal/model"
)

// Format names a supported output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name from a CLI flag.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", eris.Errorf("export: unknown format %q (want json, yaml, csv, or xlsx)", s)
}

// citationColumns defines the ordered tabular output columns.
var citationColumns = []string{
	"id", "source", "source_type", "content", "url", "timestamp",
	"confidence", "signal_strength", "verification_status", "lineage",
}

// WriteCitations writes citations to w in the given format.
func WriteCitations(w io.Writer, citations []model.Citation, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(citations); err != nil {
			return eris.Wrap(err, "export: encode json")
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if err := enc.Encode(citations); err != nil {
			return eris.Wrap(err, "export: encode yaml")
		}
		return nil
	case FormatCSV:
		return writeCSV(w, citations)
	case FormatXLSX:
		return writeXLSX(w, citations)
	}
	return eris.Errorf("export: unknown format %q", format)
}

func citationRow(c model.Citation) []string {
	return []string{
		c.ID,
		c.Source,
		string(c.SourceType),
		c.Content,
		c.URL,
		c.Timestamp.Format(time.RFC3339),
		strconv.FormatFloat(c.Confidence, 'f', 4, 64),
		strconv.Itoa(c.SignalStrength),
		string(c.VerificationStatus),
		strings.Join(c.Lineage, "; "),
	}
}

func writeCSV(w io.Writer, citations []model.Citation) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(citationColumns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, c := range citations {
		if err := cw.Write(citationRow(c)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	return nil
}

func writeXLSX(w io.Writer, citations []model.Citation) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Citations")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range citationColumns {
		header.AddCell().SetString(col)
	}

	for _, c := range citations {
		row := sheet.AddRow()
		for _, v := range citationRow(c) {
			row.AddCell().SetString(v)
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

// WriteDataPoints writes aggregated data points to w as JSON or YAML.
// Tabular formats are not supported because the value payload is free-form.
func WriteDataPoints(w io.Writer, points []model.DataPoint, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(points); err != nil {
			return eris.Wrap(err, "export: encode json")
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if err := enc.Encode(points); err != nil {
			return eris.Wrap(err, "export: encode yaml")
		}
		return nil
	}
	return eris.Errorf("export: data points support json or yaml, not %q", format)
}
