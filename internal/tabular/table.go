package tabular

import (
	"errors"
	"strings"
)

// ErrNoHeader is returned when a file has no header row to key the data by.
var ErrNoHeader = errors.New("empty file: no header row found")

// HeaderIndex maps a literal header to its first position in the header row.
// Headers are matched exactly; no case folding or trimming is applied.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a header row.
// When a header appears more than once, the leftmost column wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		if _, seen := idx[h]; seen {
			continue
		}
		idx[h] = i
	}
	return idx
}

// Table is an ordered sequence of rows keyed by the header row.
type Table struct {
	Headers  []string
	Rows     []Row
	Encoding string // encoding the text was decoded with ("xlsx" for workbooks)
	Lossy    bool   // true when undecodable bytes were dropped

	index HeaderIndex
}

// Row is a single data row. Number is the 1-based position of the row
// among the data rows of the file (the header is not counted).
type Row struct {
	Number int

	cells []string
	index HeaderIndex
}

// NewTable builds a Table from parsed records. The first record is the header.
func NewTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	t := &Table{
		Headers: records[0],
		index:   MakeHeaderIndex(records[0]),
	}

	data := records[1:]
	t.Rows = make([]Row, 0, len(data))
	for i, rec := range data {
		t.Rows = append(t.Rows, Row{
			Number: i + 1,
			cells:  rec,
			index:  t.index,
		})
	}

	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// NonEmptyRows returns the rows that have at least one non-blank cell.
func (t *Table) NonEmptyRows() []Row {
	out := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.IsEmpty() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Get returns the raw cell under header. The boolean is false when the
// column does not exist or the row is shorter than the header.
func (r Row) Get(header string) (string, bool) {
	pos, ok := r.index[header]
	if !ok || pos >= len(r.cells) {
		return "", false
	}
	return r.cells[pos], true
}

// IsEmpty reports whether every cell in the row is blank.
func (r Row) IsEmpty() bool {
	for _, v := range r.cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
