package loader

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// FromXLSX reads rows from a named sheet, the same library the teacher's
// parser/xlsx.go uses for spreadsheet parsing, here repurposed for
// tabular record loading: the header row names columns, idCol and
// textCol select the record id/text, and every other column is
// preserved into Extra.
func FromXLSX(path, sheet, idCol, textCol string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: opening XLSX: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("loader: reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("loader: sheet %q is empty", sheet)
	}

	header := rows[0]
	idIdx, textIdx := -1, -1
	for i, h := range header {
		if h == idCol {
			idIdx = i
		}
		if h == textCol {
			textIdx = i
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("loader: sheet %q missing id column %q", sheet, idCol)
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("loader: sheet %q missing text column %q", sheet, textCol)
	}

	var records []Record
	for _, row := range rows[1:] {
		rec := Record{Extra: make(map[string]string, len(row))}
		for i, v := range row {
			switch {
			case i == idIdx:
				rec.ID = v
			case i == textIdx:
				rec.Text = v
			case i < len(header):
				rec.Extra[header[i]] = v
			}
		}
		records = append(records, rec)
	}

	return records, nil
}
