package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"winelist/internal/domain"
)

// BOM is prepended so spreadsheet apps on Windows read the file as UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV renders items as a BOM-prefixed CSV document.
func CSV(items []domain.ImportItem) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	for i := range items {
		if err := w.Write(itemToRow(&items[i])); err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}
	return buf.Bytes(), nil
}
