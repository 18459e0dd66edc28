package parser

import (
	"strings"
	"testing"
)

func TestMarkdownConverter_TitleFromHeading(t *testing.T) {
	input := `# 수강신청 *안내*

신청 기간을 확인하세요.

## 일정

- 1차: 2월 10일
- 2차: 2월 17일
`
	p := &MarkdownConverter{}
	doc, err := p.Convert(strings.NewReader(input), "guide.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "수강신청 안내" {
		t.Errorf("expected title %q, got %q", "수강신청 안내", doc.Title)
	}
	for _, want := range []string{
		"<h1>수강신청 <em>안내</em></h1>",
		"<p>신청 기간을 확인하세요.</p>",
		"<h2>일정</h2>",
		"<li>1차: 2월 10일</li>",
	} {
		if !strings.Contains(doc.HTML, want) {
			t.Errorf("expected output to contain %q, got %q", want, doc.HTML)
		}
	}
}

func TestMarkdownConverter_NoHeadings(t *testing.T) {
	p := &MarkdownConverter{}
	doc, err := p.Convert(strings.NewReader("Just text.\n\nMore text."), "notes.markdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
	if doc.HTML != "<p>Just text.</p>\n<p>More text.</p>" {
		t.Errorf("unexpected html %q", doc.HTML)
	}
}

func TestMarkdownConverter_RawHTMLOmitted(t *testing.T) {
	p := &MarkdownConverter{}
	doc, err := p.Convert(strings.NewReader("<script>alert(1)</script>\n\ntext"), "x.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(doc.HTML, "<script>") {
		t.Errorf("expected raw html to be dropped, got %q", doc.HTML)
	}
}

func TestMarkdownConverter_Empty(t *testing.T) {
	p := &MarkdownConverter{}
	doc, err := p.Convert(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.HTML != "" {
		t.Errorf("expected empty fragment, got %q", doc.HTML)
	}
}
