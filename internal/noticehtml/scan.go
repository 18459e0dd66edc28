package noticehtml

// scanner evaluates candidate regions without re-reading the token stream
// for every cursor. Once two data rows have been consumed the remaining
// consumption depends only on the position, so for each column count the
// run from every position is computed once, backwards, and reused.
type scanner struct {
	tokens []Token
	h      Heuristics

	pairs   []int // pairs[q]: consecutive (time range, quantity) pairs from q
	runs    map[int]*runTable
	scratch []int32
}

// runTable holds, per position p, where a steady run of k-token rows
// starting at p ends, how many data rows it has and its per-column type
// counts (k*numTokenTypes entries per position).
type runTable struct {
	k      int
	end    []int
	data   []int32
	counts []int32
}

func (rt *runTable) at(p int) []int32 {
	w := rt.k * int(numTokenTypes)
	return rt.counts[p*w : (p+1)*w]
}

// candidate is the aggregate of the rows consumed from a cursor.
type candidate struct {
	end         int
	data        int
	signal      int
	score       float64
	consistency float64
}

// step is one move of the row reader: either a stop (the run ends at next)
// or rows data rows. A group step spans 2+2*rows tokens.
type step struct {
	next  int
	stop  bool
	rows  int
	group bool
}

func newScanner(tokens []Token, h Heuristics) *scanner {
	s := &scanner{
		tokens:  tokens,
		h:       h,
		pairs:   make([]int, len(tokens)+2),
		runs:    make(map[int]*runTable),
		scratch: make([]int32, h.MaxColumns*int(numTokenTypes)),
	}
	for q := len(tokens) - 2; q >= 0; q-- {
		if tokens[q].Type == TimeRange && (tokens[q+1].Type == Quantity || tokens[q+1].Type == Number) {
			s.pairs[q] = 1 + s.pairs[q+2]
		}
	}
	return s
}

// stepAt mirrors one iteration of consumeRows. steady enables the text
// resumption stop, which applies once two data rows are in.
func (s *scanner) stepAt(p, k int, steady bool) step {
	tokens := s.tokens
	n := len(tokens)
	if p >= n {
		return step{next: p, stop: true}
	}
	if tokens[p].Type == Summary {
		q := p + 1
		if q < n && (tokens[q].Type == Number || tokens[q].Type == Quantity) {
			q++
		}
		return step{next: q, stop: true}
	}
	if n-p < k {
		return step{next: p, stop: true}
	}
	next := tokens[p : p+k]
	if containsSummary(next[1:]) {
		return step{next: p, stop: true}
	}
	if steady && typeRatio(next, Text) > s.h.TextResumeRatio {
		return step{next: p, stop: true}
	}
	if k == groupedColumns && groupLabel(tokens[p:p+2]) {
		if m := s.pairs[p+2]; m >= 2 {
			return step{next: p + 2 + 2*m, rows: m, group: true}
		}
	}
	return step{next: p + k, rows: 1}
}

// addStep adds the column types of the rows produced by st at p.
func (s *scanner) addStep(counts []int32, p, k int, st step) {
	nt := int(numTokenTypes)
	if !st.group {
		for i := 0; i < k; i++ {
			counts[i*nt+int(s.tokens[p+i].Type)]++
		}
		return
	}
	m := int32(st.rows)
	counts[int(s.tokens[p].Type)] += m
	counts[nt+int(s.tokens[p+1].Type)] += m
	for q := p + 2; q < st.next; q += 2 {
		counts[2*nt+int(s.tokens[q].Type)]++
		counts[3*nt+int(s.tokens[q+1].Type)]++
	}
}

func (s *scanner) table(k int) *runTable {
	if rt, ok := s.runs[k]; ok {
		return rt
	}
	n := len(s.tokens)
	rt := &runTable{
		k:      k,
		end:    make([]int, n+1),
		data:   make([]int32, n+1),
		counts: make([]int32, (n+1)*k*int(numTokenTypes)),
	}
	for p := n; p >= 0; p-- {
		st := s.stepAt(p, k, true)
		if st.stop {
			rt.end[p] = st.next
			continue
		}
		rt.end[p] = rt.end[st.next]
		rt.data[p] = rt.data[st.next] + int32(st.rows)
		cur := rt.at(p)
		copy(cur, rt.at(st.next))
		s.addStep(cur, p, k, st)
	}
	s.runs[k] = rt
	return rt
}

// candidateAt returns the same aggregate as scoring consumeRows(c, k).
func (s *scanner) candidateAt(c, k int) candidate {
	nt := int(numTokenTypes)
	counts := s.scratch[:k*nt]
	clear(counts)

	p, data, end := c, 0, -1
	for data < 2 {
		st := s.stepAt(p, k, false)
		if st.stop {
			end = st.next
			break
		}
		s.addStep(counts, p, k, st)
		data += st.rows
		p = st.next
	}
	if end < 0 {
		rt := s.table(k)
		end = rt.end[p]
		data += int(rt.data[p])
		for i, v := range rt.at(p) {
			counts[i] += v
		}
	}

	cand := candidate{end: end, data: data}
	if data == 0 {
		return cand
	}
	var sum float64
	for i := 0; i < k; i++ {
		col := counts[i*nt : (i+1)*nt]
		most := int32(0)
		for t, v := range col {
			most = max(most, v)
			if TokenType(t).signal() {
				cand.signal += int(v)
			}
		}
		sum += float64(most) / float64(data)
	}
	cand.score = float64(data)*2 + sum
	cand.consistency = sum / float64(k)
	return cand
}

// bestAt tries every column count at cursor c and keeps the highest-scoring
// candidate. Header tokens must lie at or after floor. Rows are not
// materialized.
func (s *scanner) bestAt(c, floor int) (Region, bool) {
	h := s.h
	var best Region
	found := false
	for k := h.MinColumns; k <= h.MaxColumns; k++ {
		if c-k < floor {
			break
		}
		cand := s.candidateAt(c, k)
		if cand.data < h.MinDataRows || cand.consistency < h.MinColumnConsistency || cand.score < h.MinScore {
			continue
		}
		if !found || cand.score > best.Score {
			best = Region{Start: c, End: cand.end, Columns: k, Score: cand.score, data: cand.data, signal: cand.signal}
			found = true
		}
	}
	return best, found
}

func groupLabel(label []Token) bool {
	for _, t := range label {
		if t.Type == TimeRange || t.Type == Quantity || t.Type == Summary {
			return false
		}
	}
	return true
}
