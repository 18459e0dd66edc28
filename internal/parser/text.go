package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextConverter handles plain text files. Every non-blank line becomes a
// paragraph so that cell-per-line tables survive for reconstruction.
type TextConverter struct{}

func (p *TextConverter) Convert(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var frag fragment
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimSuffix(scanner.Text(), "\r"))
		if line != "" {
			frag.para(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Document{Title: baseTitle(filename), HTML: frag.String()}, nil
}
