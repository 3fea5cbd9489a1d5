package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"winelist/internal/domain"
)

// SheetName is the worksheet holding the exported rows.
const SheetName = "Vini"

// XLSX renders items as a single-sheet workbook. Confidence is written as a
// number, everything else as text.
func XLSX(items []domain.ImportItem) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(SheetName, 1, 1, style)
	}

	for r := range items {
		row := itemToRow(&items[r])
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if c == 3 {
				_ = f.SetCellValue(SheetName, cell, items[r].Confidence)
				continue
			}
			_ = f.SetCellStr(SheetName, cell, v)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 40) // name
	_ = f.SetColWidth(SheetName, "B", "B", 10)
	_ = f.SetColWidth(SheetName, "C", "C", 28)
	_ = f.SetColWidth(SheetName, "D", "D", 12)
	_ = f.SetColWidth(SheetName, "E", "E", 60) // trace
	_ = f.SetColWidth(SheetName, "F", "F", 22)
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Render dispatches on format.
func Render(format Format, items []domain.ImportItem) ([]byte, error) {
	if format == FormatCSV {
		return CSV(items)
	}
	return XLSX(items)
}
