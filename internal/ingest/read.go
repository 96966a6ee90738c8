package ingest

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadFile loads claims from path, dispatching on extension: .json, .csv,
// or .xlsx.
func ReadFile(path string) ([]Claim, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return readJSONFile(path)
	case ".csv":
		return readCSVFile(path)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return nil, eris.Errorf("ingest: unsupported claim file extension %q", filepath.Ext(path))
	}
}

func readJSONFile(path string) ([]Claim, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open json")
	}
	defer f.Close()
	return ReadJSON(f)
}

// ReadJSON decodes a JSON array of claims.
func ReadJSON(r io.Reader) ([]Claim, error) {
	var claims []Claim
	if err := json.NewDecoder(r).Decode(&claims); err != nil {
		return nil, eris.Wrap(err, "ingest: decode json claims")
	}
	return claims, nil
}

func readCSVFile(path string) ([]Claim, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open csv")
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads claims from a CSV stream. The first row is a header naming
// Claim fields (source, content, url, source_type, key, timestamp,
// verification_status, value, company, metric, timeframe, methodology,
// data_quality, freshness); unknown columns are ignored.
func ReadCSV(r io.Reader) ([]Claim, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return claimsFromRows(rows[0], rows[1:]), nil
}

// ReadXLSX reads claims from the first sheet of an XLSX workbook, with the
// same header convention as CSV.
func ReadXLSX(path string) ([]Claim, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: xlsx has no sheets")
	}

	sheet := f.Sheets[0]
	var rows [][]string
	for _, row := range sheet.Rows {
		var cells []string
		for _, cell := range row.Cells {
			cells = append(cells, cell.String())
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return claimsFromRows(rows[0], rows[1:]), nil
}

func claimsFromRows(header []string, rows [][]string) []Claim {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cell := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var claims []Claim
	for _, row := range rows {
		c := Claim{
			Key:          cell(row, "key"),
			Source:       cell(row, "source"),
			Content:      cell(row, "content"),
			URL:          cell(row, "url"),
			SourceType:   cell(row, "source_type"),
			Timestamp:    cell(row, "timestamp"),
			Verification: cell(row, "verification_status"),
			Value:        cell(row, "value"),
			Company:      cell(row, "company"),
			Metric:       cell(row, "metric"),
			Timeframe:    cell(row, "timeframe"),
			Methodology:  cell(row, "methodology"),
			DataQuality:  cell(row, "data_quality"),
			Freshness:    cell(row, "freshness"),
		}
		if c.Source == "" && c.Content == "" {
			continue // blank padding row
		}
		claims = append(claims, c)
	}
	return claims
}
