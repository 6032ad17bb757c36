package tabular

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// WorkbookEncoding is reported as Table.Encoding for workbook input.
const WorkbookEncoding = "xlsx"

// readWorkbook reads the first sheet of an Excel workbook. Rows with no
// cells at all are dropped before numbering, like blank lines in CSV.
func readWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheets[0], filepath.Base(path), err)
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		records = append(records, row)
	}

	t, err := NewTable(records)
	if err != nil {
		return nil, err
	}
	t.Encoding = WorkbookEncoding
	return t, nil
}
