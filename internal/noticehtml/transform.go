// Package noticehtml turns CMS-authored notice bodies into kiosk markup:
// tables flattened into paragraph runs are rebuilt, media is tagged for
// lazy loading, PDF links become inline previews and an attribution badge
// is appended.
package noticehtml

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Options configures a Transformer. Zero values use the defaults.
type Options struct {
	Heuristics   Heuristics
	BadgeIconURL string
	// DisableLinks strips link targets so a touch kiosk cannot navigate
	// away. PDF links are embedded before this runs.
	DisableLinks bool
}

// Result is the output of one transform.
type Result struct {
	HTML   string
	Tables []Table
}

// Transformer applies the notice transform. It holds no mutable state
// and is safe for concurrent use.
type Transformer struct {
	heuristics   Heuristics
	iconURL      string
	disableLinks bool
}

func New(opts Options) *Transformer {
	t := &Transformer{
		heuristics:   opts.Heuristics.withDefaults(),
		iconURL:      opts.BadgeIconURL,
		disableLinks: opts.DisableLinks,
	}
	if t.iconURL == "" {
		t.iconURL = DefaultBadgeIconURL
	}
	return t
}

// Heuristics returns the effective thresholds.
func (t *Transformer) Heuristics() Heuristics {
	return t.heuristics
}

var defaultTransformer = New(Options{})

// Transform converts raw notice HTML with the default options.
func Transform(raw string) (string, error) {
	res, err := defaultTransformer.Transform(raw)
	if err != nil {
		return "", err
	}
	return res.HTML, nil
}

// Transform parses raw as a fragment, rewrites it and serializes it back.
func (t *Transformer) Transform(raw string) (*Result, error) {
	root := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(raw), root)
	if err != nil {
		return nil, fmt.Errorf("parse notice html: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	tables := reconstructTables(root, t.heuristics)
	tagMedia(root)
	embedPDFLinks(root)
	if t.disableLinks {
		disableLinks(root)
	}
	appendBadge(root, t.iconURL)
	sweepStrayCells(root)

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return nil, fmt.Errorf("render notice html: %w", err)
		}
	}
	return &Result{HTML: buf.String(), Tables: tables}, nil
}

// IsEmptyHTML reports whether raw has no visible text once tags, NBSP
// and whitespace are dropped.
func IsEmptyHTML(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return z.Err() == io.EOF
		case html.TextToken:
			if NormalizeLoose(string(z.Text())) != "" {
				return false
			}
		}
	}
}
