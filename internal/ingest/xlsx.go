package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads the first worksheet of an .xlsx workbook into the grid
// shape Parse expects. Cell values are taken as displayed, which keeps
// requirement numbers like "1.2.10" textual instead of numeric.
func LoadXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no worksheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}
	return rows, nil
}
