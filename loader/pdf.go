package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FromPDF reads one record per page, id being the 1-based page number as
// a string. Pages that fail to yield text (scanned images, empty pages)
// are skipped rather than failing the whole document.
func FromPDF(path string) ([]Record, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: opening PDF: %w", err)
	}
	defer f.Close()

	var records []Record
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		records = append(records, Record{ID: strconv.Itoa(i), Text: text})
	}

	return records, nil
}
