package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// CSVConverter renders a CSV file as a ready-made table. The first record
// is the header; short rows are padded to the header width.
type CSVConverter struct{}

func (p *CSVConverter) Convert(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{Title: baseTitle(filename)}
	if len(records) == 0 {
		return doc, nil
	}

	headers := records[0]
	width := len(headers)
	for _, row := range records[1:] {
		width = max(width, len(row))
	}

	var b strings.Builder
	b.WriteString(`<div class="notice-table-wrap"><table class="notice-table"><thead><tr>`)
	for i := range width {
		b.WriteString("<th>")
		if i < len(headers) {
			b.WriteString(html.EscapeString(headers[i]))
		}
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range records[1:] {
		b.WriteString("<tr>")
		for i := range width {
			b.WriteString("<td>")
			if i < len(row) {
				b.WriteString(html.EscapeString(row[i]))
			}
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></div>")

	doc.HTML = b.String()
	return doc, nil
}
