package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/noticegest/internal/board"
	"github.com/dgallion1/noticegest/internal/noticehtml"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

const titleWidth = 48

var (
	titleColor   = color.New(color.FgHiMagenta, color.Bold).SprintFunc()
	headerColor  = color.New(color.FgCyan, color.Bold).SprintFunc()
	summaryColor = color.New(color.FgYellow).SprintFunc()
	pinColor     = color.New(color.FgRed).SprintFunc()
)

// writeTable prints t with cells padded to their display width so that
// Hangul and ASCII columns line up.
func writeTable(w io.Writer, n int, t noticehtml.Table) {
	fmt.Fprintf(w, "%s %d columns, %d rows\n", titleColor(fmt.Sprintf("table %d:", n)), t.Columns, len(t.Rows))

	widths := columnWidths(t)
	writeCells(w, t.Header, widths, headerColor)

	seps := make([]string, len(widths))
	for i, wd := range widths {
		seps[i] = strings.Repeat("─", wd)
	}
	fmt.Fprintln(w, "  "+strings.Join(seps, "─┼─"))

	for _, row := range t.Rows {
		if row.Summary {
			fmt.Fprintln(w, "  "+summaryColor(row.SummaryText()))
			continue
		}
		writeCells(w, row.Cells, widths, fmt.Sprint)
	}
}

// columnWidths ignores summary rows, which span the whole table.
func columnWidths(t noticehtml.Table) []int {
	widths := make([]int, t.Columns)
	measure := func(cells []string) {
		for i, c := range cells {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(c))
			}
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		if !row.Summary {
			measure(row.Cells)
		}
	}
	return widths
}

func writeCells(w io.Writer, cells []string, widths []int, paint func(a ...any) string) {
	parts := make([]string, len(widths))
	for i, wd := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = paint(runewidth.FillRight(cell, wd))
	}
	fmt.Fprintln(w, strings.TrimRight("  "+strings.Join(parts, " │ "), " "))
}

// writeNotices prints one line per notice: post number, pin marker,
// title truncated to titleWidth and the creation date.
func writeNotices(w io.Writer, items []board.Item) {
	for _, it := range items {
		pin := " "
		if it.Pinned {
			pin = pinColor("*")
		}
		title := runewidth.FillRight(runewidth.Truncate(it.Title, titleWidth, "…"), titleWidth)
		fmt.Fprintf(w, "%5d %s %s  %s\n", it.PostNumber, pin, title, it.CreatedAt)
	}
}
