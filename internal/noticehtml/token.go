package noticehtml

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// Token is the normalized text of one source paragraph.
type Token struct {
	Text   string // whitespace collapsed, used for display and classification
	Strict string // whitespace removed, used for matching
	Type   TokenType
	Para   int // index into the paragraph list
}

var zeroWidth = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\ufeff", "",
)

// NormalizeLoose collapses NBSP and whitespace runs to single spaces and
// drops zero-width characters.
func NormalizeLoose(s string) string {
	s = zeroWidth.Replace(s)
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeStrict removes all whitespace.
func NormalizeStrict(s string) string {
	return strings.Join(strings.Fields(NormalizeLoose(s)), "")
}

// collectParagraphs returns every <p> under root that is not inside a table.
func collectParagraphs(root *html.Node) []*html.Node {
	var paras []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Table:
				return
			case atom.P:
				paras = append(paras, n)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return paras
}

// tokenize reduces paragraphs to classified tokens. Empty paragraphs yield
// no token but keep their index.
func tokenize(paras []*html.Node) []Token {
	tokens := make([]Token, 0, len(paras))
	for i, p := range paras {
		loose := NormalizeLoose(paragraphText(p))
		if loose == "" {
			continue
		}
		strict := strings.ReplaceAll(loose, " ", "")
		tokens = append(tokens, Token{
			Text:   loose,
			Strict: strict,
			Type:   classifyStrict(strict),
			Para:   i,
		})
	}
	return tokens
}

// paragraphText is the text content of n with <br> read as a space.
func paragraphText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}
