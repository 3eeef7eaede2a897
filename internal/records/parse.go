package records

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/copylab/adlens/internal/model"
)

// Input CSV column names, matching the upload format the analysis batches
// are exported from.
const (
	colTitle      = "Title"
	colSnippet    = "Snippet"
	colDisplayURL = "Display URL"
	colExtensions = "Extensions"
)

// ParseAdsCSV reads an ad-copy CSV into records. Title, Snippet and
// Display URL columns are required; a missing column fails the whole file,
// not individual rows. Extensions is optional.
func ParseAdsCSV(csvPath string) ([]model.AdRecord, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, eris.Wrap(err, "records: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	// Spreadsheet exports pad or truncate trailing cells; tolerate ragged rows.
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "records: read csv")
	}

	if len(rows) < 2 {
		return nil, eris.New("records: csv has no data rows")
	}

	header := rows[0]
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.TrimSpace(col)] = i
	}

	for _, col := range []string{colTitle, colSnippet, colDisplayURL} {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Errorf("records: missing required column %q", col)
		}
	}

	var records []model.AdRecord
	for _, row := range rows[1:] {
		rec := model.AdRecord{
			Title:         getCol(row, colIdx, colTitle),
			Snippet:       getCol(row, colIdx, colSnippet),
			DisplayedLink: getCol(row, colIdx, colDisplayURL),
			Extensions:    getCol(row, colIdx, colExtensions),
		}
		// Skip blank padding rows some spreadsheet exports append.
		if rec.Title == "" && rec.Snippet == "" && rec.DisplayedLink == "" {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func getCol(row []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
