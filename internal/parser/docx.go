package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXConverter handles .docx files: one paragraph per docx paragraph,
// heading styles kept as headings.
type DOCXConverter struct{}

func (p *DOCXConverter) Convert(r io.Reader, filename string) (*Document, error) {
	f, size, cleanup, err := spool(r, "noticegest-docx-*.docx")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	doc, err := docx.Parse(f, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var frag fragment
	title := ""
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if level := docxHeadingLevel(para); level > 0 {
			if title == "" {
				title = text
			}
			frag.heading(level, text)
			continue
		}
		frag.para(text)
	}

	if title == "" {
		title = baseTitle(filename)
	}
	return &Document{Title: title, HTML: frag.String()}, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	return headingLevelFromStyle(para.Properties.Style.Val)
}

// headingLevelFromStyle reads "Heading2" or "heading 2" style names.
func headingLevelFromStyle(style string) int {
	style = strings.ToLower(strings.ReplaceAll(style, " ", ""))
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok || len(rest) != 1 || rest[0] < '1' || rest[0] > '6' {
		return 0
	}
	return int(rest[0] - '0')
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
