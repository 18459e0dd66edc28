package parser

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	cases := map[string]string{
		"a.TXT":      "*parser.TextConverter",
		"a.md":       "*parser.MarkdownConverter",
		"a.markdown": "*parser.MarkdownConverter",
		"a.csv":      "*parser.CSVConverter",
		"a.htm":      "*parser.HTMLConverter",
		"a.pdf":      "*parser.PDFConverter",
		"a.docx":     "*parser.DOCXConverter",
	}
	for name, want := range cases {
		c, err := ForFile(name, Options{})
		if err != nil {
			t.Errorf("ForFile(%q): unexpected error: %v", name, err)
			continue
		}
		if got := typeName(c); got != want {
			t.Errorf("ForFile(%q) = %s, want %s", name, got, want)
		}
	}
	if _, err := ForFile("a.hwp", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestForFile_PDFFallbackOption(t *testing.T) {
	c, err := ForFile("a.pdf", Options{PDFFallbackPdftotext: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.(*PDFConverter).FallbackPdftotext {
		t.Error("expected fallback to be enabled")
	}
}

func TestCSVConverter_Table(t *testing.T) {
	input := "학년,교과목명\n1,자료구조\n2\n"
	doc, err := (&CSVConverter{}).Convert(strings.NewReader(input), "list.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<div class="notice-table-wrap"><table class="notice-table"><thead><tr><th>학년</th><th>교과목명</th></tr></thead>` +
		`<tbody><tr><td>1</td><td>자료구조</td></tr><tr><td>2</td><td></td></tr></tbody></table></div>`
	if doc.HTML != want {
		t.Errorf("expected %q, got %q", want, doc.HTML)
	}
	if doc.Title != "list" {
		t.Errorf("expected title %q, got %q", "list", doc.Title)
	}
}

func TestCSVConverter_Empty(t *testing.T) {
	doc, err := (&CSVConverter{}).Convert(strings.NewReader(""), "e.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.HTML != "" {
		t.Errorf("expected empty fragment, got %q", doc.HTML)
	}
}

func TestHTMLConverter_BodyPassthrough(t *testing.T) {
	input := `<html><head><title>학사 공지</title><style>p{}</style></head>` +
		`<body><nav>menu</nav><p>본문</p><!-- note --><script>x()</script><div><p>둘째</p></div></body></html>`
	doc, err := (&HTMLConverter{}).Convert(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "학사 공지" {
		t.Errorf("expected title %q, got %q", "학사 공지", doc.Title)
	}
	want := "<p>본문</p><div><p>둘째</p></div>"
	if doc.HTML != want {
		t.Errorf("expected %q, got %q", want, doc.HTML)
	}
}

func TestDocxHeadingLevel_StyleNames(t *testing.T) {
	for style, want := range map[string]int{
		"Heading1":  1,
		"heading 3": 3,
		"Heading 6": 6,
		"Heading7":  0,
		"Title":     0,
	} {
		if got := headingLevelFromStyle(style); got != want {
			t.Errorf("headingLevelFromStyle(%q) = %d, want %d", style, got, want)
		}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *TextConverter:
		return "*parser.TextConverter"
	case *MarkdownConverter:
		return "*parser.MarkdownConverter"
	case *CSVConverter:
		return "*parser.CSVConverter"
	case *HTMLConverter:
		return "*parser.HTMLConverter"
	case *PDFConverter:
		return "*parser.PDFConverter"
	case *DOCXConverter:
		return "*parser.DOCXConverter"
	}
	return "unknown"
}

func TestSpool(t *testing.T) {
	f, size, cleanup, err := spool(strings.NewReader("공지 본문"), "spool-test-*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, 0); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(buf) != "공지 본문" {
		t.Errorf("expected spooled content, got %q", buf)
	}
	cleanup()
	if _, err := os.Stat(f.Name()); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected temp file to be removed, got %v", err)
	}
}

func TestPDFConverter_RejectsNonPDF(t *testing.T) {
	_, err := (&PDFConverter{}).Convert(strings.NewReader("plain text"), "notice.pdf")
	if err == nil {
		t.Error("expected error for non-pdf input")
	}
}

func TestBlank(t *testing.T) {
	if !blank(nil) || !blank([]string{" \n", "\f"}) {
		t.Error("expected whitespace pages to be blank")
	}
	if blank([]string{"", "1학기"}) {
		t.Error("expected page with text to be non-blank")
	}
}
