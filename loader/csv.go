package loader

import (
	"encoding/csv"
	"fmt"
	"io"
)

// FromCSV reads records from a header-driven CSV stream; idCol and
// textCol name the header columns holding the record id and text. Every
// other column is preserved into Extra.
func FromCSV(r io.Reader, idCol, textCol string) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("loader: reading CSV header: %w", err)
	}

	idIdx, textIdx := -1, -1
	colNames := make([]string, len(header))
	for i, h := range header {
		colNames[i] = h
		if h == idCol {
			idIdx = i
		}
		if h == textCol {
			textIdx = i
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("loader: CSV missing id column %q", idCol)
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("loader: CSV missing text column %q", textCol)
	}

	var records []Record
	rowNo := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loader: CSV row %d: %w", rowNo, err)
		}
		rowNo++

		rec := Record{Extra: make(map[string]string, len(row))}
		for i, v := range row {
			if i >= len(colNames) {
				continue
			}
			switch i {
			case idIdx:
				rec.ID = v
			case textIdx:
				rec.Text = v
			default:
				rec.Extra[colNames[i]] = v
			}
		}
		records = append(records, rec)
	}

	return records, nil
}
