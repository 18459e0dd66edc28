package noticehtml

// groupedColumns is the column count whose rows may carry a shared group
// label followed by several (time, quantity) pairs.
const groupedColumns = 4

// Row is one physical table row. A summary row holds the marker label
// and, when present, the total.
type Row struct {
	Cells   []string `json:"cells"`
	Summary bool     `json:"summary,omitempty"`

	types []TokenType
}

// Region is a hypothesized table occupying tokens[Start:End] with its
// header in tokens[Start-Columns:Start].
type Region struct {
	Start   int
	End     int
	Columns int
	Score   float64
	Rows    []Row

	data   int // full data rows
	signal int // signal cells across the data rows
}

// dataRows counts the non-summary rows.
func (r Region) dataRows() int {
	n := 0
	for _, row := range r.Rows {
		if !row.Summary {
			n++
		}
	}
	return n
}

// detectRegions scans the token stream and returns accepted regions in
// order. The cursor only moves forward: to a rejected region's start + 1
// or past an accepted region's end. Rows are read only for accepted
// regions.
func detectRegions(tokens []Token, h Heuristics) []Region {
	var regions []Region
	s := newScanner(tokens, h)
	floor := 0
	for c := 0; c < len(tokens); {
		best, ok := s.bestAt(c, floor)
		if !ok {
			c++
			continue
		}
		if !validateRegion(tokens, best, floor, h) {
			c = best.Start + 1
			continue
		}
		best.Rows, _ = consumeRows(tokens, best.Start, best.Columns, h)
		regions = append(regions, best)
		floor = best.End
		c = best.End
	}
	return regions
}

// consumeRows reads rows of k tokens from start until a stop condition
// and returns them with the index just past the last consumed token.
func consumeRows(tokens []Token, start, k int, h Heuristics) ([]Row, int) {
	var rows []Row
	data := 0
	p := start
	for p < len(tokens) {
		if tokens[p].Type == Summary {
			row := Row{Summary: true, Cells: []string{tokens[p].Text}, types: []TokenType{Summary}}
			p++
			if p < len(tokens) && (tokens[p].Type == Number || tokens[p].Type == Quantity) {
				row.Cells = append(row.Cells, tokens[p].Text)
				row.types = append(row.types, tokens[p].Type)
				p++
			}
			rows = append(rows, row)
			break
		}
		if len(tokens)-p < k {
			break
		}
		next := tokens[p : p+k]
		if containsSummary(next[1:]) {
			break
		}
		if data >= 2 && typeRatio(next, Text) > h.TextResumeRatio {
			break
		}
		if k == groupedColumns {
			if group, n := expandGroup(tokens, p); n > 0 {
				rows = append(rows, group...)
				data += len(group)
				p += n
				continue
			}
		}
		rows = append(rows, rowOf(next))
		data++
		p += k
	}
	return rows, p
}

// expandGroup recognizes a group label pair followed by two or more
// (time range, quantity) pairs and returns one row per pair.
func expandGroup(tokens []Token, p int) ([]Row, int) {
	if p+groupedColumns > len(tokens) {
		return nil, 0
	}
	if !groupLabel(tokens[p : p+2]) {
		return nil, 0
	}
	var pairs [][2]Token
	for q := p + 2; q+1 < len(tokens); q += 2 {
		if tokens[q].Type != TimeRange {
			break
		}
		if tokens[q+1].Type != Quantity && tokens[q+1].Type != Number {
			break
		}
		pairs = append(pairs, [2]Token{tokens[q], tokens[q+1]})
	}
	if len(pairs) < 2 {
		return nil, 0
	}
	rows := make([]Row, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, rowOf([]Token{tokens[p], tokens[p+1], pair[0], pair[1]}))
	}
	return rows, 2 + 2*len(pairs)
}

func rowOf(tokens []Token) Row {
	row := Row{Cells: make([]string, len(tokens)), types: make([]TokenType, len(tokens))}
	for i, t := range tokens {
		row.Cells[i] = t.Text
		row.types[i] = t.Type
	}
	return row
}

func containsSummary(tokens []Token) bool {
	for _, t := range tokens {
		if t.Type == Summary {
			return true
		}
	}
	return false
}

func typeRatio(tokens []Token, typ TokenType) float64 {
	if len(tokens) == 0 {
		return 0
	}
	n := 0
	for _, t := range tokens {
		if t.Type == typ {
			n++
		}
	}
	return float64(n) / float64(len(tokens))
}
