package noticehtml

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	tableWrapClass     = "notice-table-wrap"
	tableClass         = "notice-table"
	fallbackTableClass = "notice-table-fallback"
	summaryRowClass    = "notice-table-summary"
)

// Table is a reconstructed table. Every non-summary row has exactly
// Columns cells.
type Table struct {
	Columns int      `json:"columns"`
	Header  []string `json:"header"`
	Rows    []Row    `json:"rows"`
}

// edit replaces anchor with replacement and removes the listed nodes.
type edit struct {
	anchor      *html.Node
	replacement *html.Node
	remove      []*html.Node
}

// reconstructTables finds tables in the paragraph runs under root and
// splices them in. Edits are planned over the full paragraph list before
// any node moves.
func reconstructTables(root *html.Node, h Heuristics) []Table {
	paras := collectParagraphs(root)
	tokens := tokenize(paras)
	regions := detectRegions(tokens, h)
	if len(regions) == 0 {
		return nil
	}
	edits, tables := planEdits(paras, tokens, regions)
	for _, e := range edits {
		replaceNode(e.anchor, e.replacement)
		for _, n := range e.remove {
			detach(n)
		}
	}
	return tables
}

func planEdits(paras []*html.Node, tokens []Token, regions []Region) ([]edit, []Table) {
	edits := make([]edit, 0, len(regions))
	tables := make([]Table, 0, len(regions))
	for _, r := range regions {
		t := tableFromRegion(tokens, r)
		first := tokens[r.Start-r.Columns].Para
		last := tokens[r.End-1].Para
		anchor := tokens[r.Start].Para

		e := edit{anchor: paras[anchor], replacement: buildTable(t)}
		for i := first; i <= last; i++ {
			if i != anchor {
				e.remove = append(e.remove, paras[i])
			}
		}
		edits = append(edits, e)
		tables = append(tables, t)
	}
	return edits, tables
}

func tableFromRegion(tokens []Token, r Region) Table {
	header := make([]string, r.Columns)
	for i, t := range tokens[r.Start-r.Columns : r.Start] {
		header[i] = t.Text
	}
	rows := make([]Row, len(r.Rows))
	for i, row := range r.Rows {
		if !row.Summary {
			row = padRow(row, r.Columns)
		}
		rows[i] = row
	}
	return Table{Columns: r.Columns, Header: header, Rows: rows}
}

// padRow extends a short row with empty cells.
func padRow(row Row, k int) Row {
	if len(row.Cells) >= k {
		return row
	}
	cells := make([]string, k)
	copy(cells, row.Cells)
	types := make([]TokenType, k)
	copy(types, row.types)
	return Row{Cells: cells, types: types}
}

// SummaryText is the single-cell text of a summary row.
func (r Row) SummaryText() string {
	if len(r.Cells) > 1 && r.Cells[1] != "" {
		return SummaryMarker + " " + r.Cells[1]
	}
	return SummaryMarker
}

func buildTable(t Table) *html.Node {
	wrap := newElement(atom.Div, attr("class", tableWrapClass))
	table := newElement(atom.Table, attr("class", tableClass))
	wrap.AppendChild(table)

	thead := newElement(atom.Thead)
	tr := newElement(atom.Tr)
	for _, h := range t.Header {
		th := newElement(atom.Th)
		th.AppendChild(newText(h))
		tr.AppendChild(th)
	}
	thead.AppendChild(tr)
	table.AppendChild(thead)

	tbody := newElement(atom.Tbody)
	for _, row := range t.Rows {
		tbody.AppendChild(buildRow(row, t.Columns))
	}
	table.AppendChild(tbody)
	return wrap
}

func buildRow(row Row, k int) *html.Node {
	if row.Summary {
		tr := newElement(atom.Tr, attr("class", summaryRowClass))
		td := newElement(atom.Td, attr("colspan", strconv.Itoa(k)))
		td.AppendChild(newText(row.SummaryText()))
		tr.AppendChild(td)
		return tr
	}
	row = padRow(row, k)
	tr := newElement(atom.Tr)
	for _, c := range row.Cells[:k] {
		td := newElement(atom.Td)
		if c != "" {
			td.AppendChild(newText(c))
		}
		tr.AppendChild(td)
	}
	return tr
}

// sweepStrayCells moves <th>/<td> elements found outside any table into
// one fallback single-row table placed where the first stray cell was.
func sweepStrayCells(root *html.Node) {
	var strays []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Table:
				return
			case atom.Th, atom.Td:
				strays = append(strays, n)
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
	if len(strays) == 0 {
		return
	}

	table := newElement(atom.Table, attr("class", tableClass+" "+fallbackTableClass))
	tbody := newElement(atom.Tbody)
	tr := newElement(atom.Tr)
	tbody.AppendChild(tr)
	table.AppendChild(tbody)

	strays[0].Parent.InsertBefore(table, strays[0])
	for _, cell := range strays {
		detach(cell)
		tr.AppendChild(cell)
	}
}
