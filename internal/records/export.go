package records

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/copylab/adlens/internal/analyzer"
	"github.com/copylab/adlens/internal/model"
)

// ExportOptions configures result export.
type ExportOptions struct {
	// PrettyHeaders rewrites flat keys as human-readable column titles,
	// e.g. details_sentiment_score -> Details Sentiment Score.
	PrettyHeaders bool
}

// ExportCSV writes unified result rows as a CSV file. Columns follow the
// unified key set; rows keep their original order.
func ExportCSV(rows []model.Row, outputPath string, opts ExportOptions) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer f.Close()

	cols := analyzer.Columns(rows)

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(headerRow(cols, opts)); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for _, row := range rows {
		out := make([]string, len(cols))
		for i, col := range cols {
			out[i] = row[col]
		}
		if err := w.Write(out); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "export: flush")
}

// ExportXLSX writes unified result rows as a single-sheet XLSX workbook.
func ExportXLSX(rows []model.Row, outputPath string, opts ExportOptions) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Analysis")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	cols := analyzer.Columns(rows)

	header := sheet.AddRow()
	for _, col := range headerRow(cols, opts) {
		header.AddCell().Value = col
	}

	for _, row := range rows {
		out := sheet.AddRow()
		for _, col := range cols {
			out.AddCell().Value = row[col]
		}
	}

	return eris.Wrap(file.Save(outputPath), "export: save xlsx")
}

func headerRow(cols []string, opts ExportOptions) []string {
	if !opts.PrettyHeaders {
		return cols
	}
	titler := cases.Title(language.AmericanEnglish)
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = titler.String(strings.ReplaceAll(col, "_", " "))
	}
	return out
}
