package parser

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFConverter handles PDF attachments. Text comes row by row from the Go
// library; pdftotext is tried when enabled and the library fails or finds
// no text. Each non-blank row becomes one paragraph.
type PDFConverter struct {
	FallbackPdftotext bool
}

func (p *PDFConverter) Convert(r io.Reader, filename string) (*Document, error) {
	f, size, cleanup, err := spool(r, "noticegest-pdf-*.pdf")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	pages, err := pdfPages(f, size)
	if p.FallbackPdftotext && (err != nil || blank(pages)) {
		alt, altErr := pdftotextPages(f.Name())
		switch {
		case altErr == nil:
			pages, err = alt, nil
		case err != nil:
			err = errors.Join(err, altErr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var frag fragment
	for _, page := range pages {
		frag.lines(page)
	}
	return &Document{Title: baseTitle(filename), HTML: frag.String()}, nil
}

// pdfPages returns one string per page with rows separated by newlines.
// Pages whose text cannot be read are skipped.
func pdfPages(f io.ReaderAt, size int64) ([]string, error) {
	reader, err := pdflib.NewReader(f, size)
	if err != nil {
		return nil, err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var sb strings.Builder
		for _, row := range rows {
			words := make([]string, len(row.Content))
			for j, w := range row.Content {
				words[j] = w.S
			}
			sb.WriteString(strings.Join(words, " "))
			sb.WriteByte('\n')
		}
		pages = append(pages, sb.String())
	}
	return pages, nil
}

func pdftotextPages(path string) ([]string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext separates pages with form feeds.
	return strings.Split(string(out), "\f"), nil
}

func blank(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}
