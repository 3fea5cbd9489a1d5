package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"winelist/internal/domain"
	"winelist/internal/export"
)

func sampleItems() []domain.ImportItem {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []domain.ImportItem{
		{NameGuess: "Chianti Classico Riserva", PriceGuess: "28", RawLine: "Chianti Classico Riserva | 28 | 6", Confidence: 0.85, CreatedAt: at},
		{NameGuess: "Gaja Barbaresco", PriceGuess: "180", GrapesGuess: "Nebbiolo", RawLine: "Gaja | Barbaresco | 180", Confidence: 0.9, CreatedAt: at},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, f)

	f, err = export.ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	_, err = export.ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestCSV(t *testing.T) {
	data, err := export.CSV(sampleItems())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, export.BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Nome", rows[0][0])
	assert.Equal(t, []string{"Gaja Barbaresco", "180", "Nebbiolo", "0.90", "Gaja | Barbaresco | 180", "2026-03-01T12:00:00Z"}, rows[2])
}

func TestXLSX(t *testing.T) {
	data, err := export.XLSX(sampleItems())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Riga OCR", rows[0][4])
	assert.Equal(t, "Chianti Classico Riserva", rows[1][0])
	assert.Equal(t, "28", rows[1][1])

	conf, err := f.GetCellValue(export.SheetName, "D3")
	require.NoError(t, err)
	assert.Equal(t, "0.9", conf)
}

func TestXLSX_Empty(t *testing.T) {
	data, err := export.Render(export.FormatXLSX, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
