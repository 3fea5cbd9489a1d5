// Package export renders the persisted rows of an import job as a
// spreadsheet the restaurant can review before loading it into its list.
package export

import (
	"strconv"
	"time"

	"winelist/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat maps a query value to a Format. Empty selects xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", domain.ErrInvalidRequest
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

var columns = []string{
	"Nome",
	"Prezzo",
	"Uvaggio",
	"Confidenza",
	"Riga OCR",
	"Creato il",
}

func itemToRow(it *domain.ImportItem) []string {
	return []string{
		it.NameGuess,
		it.PriceGuess,
		it.GrapesGuess,
		strconv.FormatFloat(it.Confidence, 'f', 2, 64),
		it.RawLine,
		it.CreatedAt.UTC().Format(time.RFC3339),
	}
}
