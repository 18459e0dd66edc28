package noticehtml

// Heuristics holds the thresholds used to infer tables from flat
// paragraph runs. The defaults were tuned against one CMS; content from
// another source may need different values.
type Heuristics struct {
	MinColumns int `toml:"min_columns"`
	MaxColumns int `toml:"max_columns"`

	// MinScore is the lowest region score that can start a table.
	MinScore float64 `toml:"min_score"`
	// MinColumnConsistency is the lowest mean per-column type agreement.
	MinColumnConsistency float64 `toml:"min_column_consistency"`
	// TextResumeRatio ends a region when a row is more Text than this.
	TextResumeRatio float64 `toml:"text_resume_ratio"`

	HeaderTextRatio float64 `toml:"header_text_ratio"`
	HeaderMaxAvgLen float64 `toml:"header_max_avg_len"`

	MinDataRows      int     `toml:"min_data_rows"`
	MinSignalDensity float64 `toml:"min_signal_density"`
	// LookaheadFactor sizes the sparse-signal window as a multiple of k.
	LookaheadFactor int `toml:"lookahead_factor"`
}

// DefaultHeuristics returns the calibrated thresholds.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		MinColumns:           2,
		MaxColumns:           14,
		MinScore:             5,
		MinColumnConsistency: 0.8,
		TextResumeRatio:      0.85,
		HeaderTextRatio:      0.6,
		HeaderMaxAvgLen:      12,
		MinDataRows:          2,
		MinSignalDensity:     0.15,
		LookaheadFactor:      3,
	}
}

// withDefaults fills unset fields and clamps the column range to [2, 14].
func (h Heuristics) withDefaults() Heuristics {
	d := DefaultHeuristics()
	if h.MinColumns < d.MinColumns || h.MinColumns > d.MaxColumns {
		h.MinColumns = d.MinColumns
	}
	if h.MaxColumns <= 0 || h.MaxColumns > d.MaxColumns {
		h.MaxColumns = d.MaxColumns
	}
	if h.MaxColumns < h.MinColumns {
		h.MaxColumns = h.MinColumns
	}
	if h.MinScore <= 0 {
		h.MinScore = d.MinScore
	}
	if h.MinColumnConsistency <= 0 {
		h.MinColumnConsistency = d.MinColumnConsistency
	}
	if h.TextResumeRatio <= 0 {
		h.TextResumeRatio = d.TextResumeRatio
	}
	if h.HeaderTextRatio <= 0 {
		h.HeaderTextRatio = d.HeaderTextRatio
	}
	if h.HeaderMaxAvgLen <= 0 {
		h.HeaderMaxAvgLen = d.HeaderMaxAvgLen
	}
	if h.MinDataRows < 2 {
		h.MinDataRows = d.MinDataRows
	}
	if h.MinSignalDensity <= 0 {
		h.MinSignalDensity = d.MinSignalDensity
	}
	if h.LookaheadFactor <= 0 {
		h.LookaheadFactor = d.LookaheadFactor
	}
	return h
}
