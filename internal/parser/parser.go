package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Document is an uploaded or attached file rendered as a notice body
// fragment, ready for the notice transform.
type Document struct {
	Title string
	HTML  string
}

// Converter turns raw file bytes into a notice HTML fragment.
type Converter interface {
	Convert(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tunes converters that shell out or need limits.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the converter for a filename.
func ForFile(filename string, opts Options) (Converter, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextConverter{}, nil
	case ".md", ".markdown":
		return &MarkdownConverter{}, nil
	case ".csv":
		return &CSVConverter{}, nil
	case ".html", ".htm":
		return &HTMLConverter{}, nil
	case ".pdf":
		return &PDFConverter{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXConverter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// baseTitle strips the directory and extension from filename.
func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// spool copies r to a temp file for libraries that need random access.
// The returned cleanup closes and removes the file.
func spool(r io.Reader, pattern string) (*os.File, int64, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		f.Close()
		os.Remove(f.Name())
	}
	size, err := io.Copy(f, r)
	if err != nil {
		cleanup()
		return nil, 0, nil, fmt.Errorf("write temp file: %w", err)
	}
	return f, size, cleanup, nil
}

// fragment accumulates escaped block elements.
type fragment struct {
	buf strings.Builder
}

func (f *fragment) para(text string) {
	f.block("p", text)
}

func (f *fragment) heading(level int, text string) {
	level = min(max(level, 1), 6)
	f.block("h"+strconv.Itoa(level), text)
}

func (f *fragment) block(tag, text string) {
	f.buf.WriteString("<" + tag + ">")
	f.buf.WriteString(html.EscapeString(text))
	f.buf.WriteString("</" + tag + ">")
}

// lines writes one paragraph per non-blank line.
func (f *fragment) lines(text string) {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			f.para(line)
		}
	}
}

func (f *fragment) String() string {
	return f.buf.String()
}
