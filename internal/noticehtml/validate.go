package noticehtml

import "unicode/utf8"

// validateRegion rejects regions whose header or data does not look like
// a real table.
func validateRegion(tokens []Token, r Region, floor int, h Heuristics) bool {
	return headerLooksReal(tokens, r, floor, h) && dataLooksReal(tokens, r, h)
}

// headerLooksReal checks the k tokens before the region: mostly Text and
// short on average.
func headerLooksReal(tokens []Token, r Region, floor int, h Heuristics) bool {
	k := r.Columns
	if r.Start-k < floor || r.Start > len(tokens) {
		return false
	}
	header := tokens[r.Start-k : r.Start]
	if typeRatio(header, Text) < h.HeaderTextRatio {
		return false
	}
	runes := 0
	for _, t := range header {
		runes += utf8.RuneCountInString(t.Text)
	}
	return float64(runes)/float64(k) <= h.HeaderMaxAvgLen
}

// dataLooksReal requires enough full rows and either a minimum share of
// signal cells or a time/quantity token close to the region start.
func dataLooksReal(tokens []Token, r Region, h Heuristics) bool {
	cells := r.data * r.Columns
	if r.data < h.MinDataRows || cells == 0 {
		return false
	}
	if float64(r.signal)/float64(cells) >= h.MinSignalDensity {
		return true
	}
	end := min(len(tokens), r.Start+h.LookaheadFactor*r.Columns)
	for _, t := range tokens[r.Start:end] {
		if t.Type == TimeRange || t.Type == Quantity {
			return true
		}
	}
	return false
}
