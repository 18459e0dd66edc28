package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/dgallion1/noticegest/internal/noticehtml"
)

// heuristicRules bound the values a file may set. Values outside them
// would otherwise be swapped for the defaults without notice.
var heuristicRules = []struct {
	key   string
	want  string
	check func(h noticehtml.Heuristics) (any, bool)
}{
	{"min_columns", "between 2 and 14", func(h noticehtml.Heuristics) (any, bool) { return h.MinColumns, h.MinColumns >= 2 && h.MinColumns <= 14 }},
	{"max_columns", "between 2 and 14", func(h noticehtml.Heuristics) (any, bool) { return h.MaxColumns, h.MaxColumns >= 2 && h.MaxColumns <= 14 }},
	{"min_score", "greater than 0", func(h noticehtml.Heuristics) (any, bool) { return h.MinScore, h.MinScore > 0 }},
	{"min_column_consistency", "greater than 0", func(h noticehtml.Heuristics) (any, bool) { return h.MinColumnConsistency, h.MinColumnConsistency > 0 }},
	{"text_resume_ratio", "greater than 0", func(h noticehtml.Heuristics) (any, bool) { return h.TextResumeRatio, h.TextResumeRatio > 0 }},
	{"header_text_ratio", "greater than 0", func(h noticehtml.Heuristics) (any, bool) { return h.HeaderTextRatio, h.HeaderTextRatio > 0 }},
	{"header_max_avg_len", "greater than 0", func(h noticehtml.Heuristics) (any, bool) { return h.HeaderMaxAvgLen, h.HeaderMaxAvgLen > 0 }},
	{"min_data_rows", "at least 2", func(h noticehtml.Heuristics) (any, bool) { return h.MinDataRows, h.MinDataRows >= 2 }},
	{"min_signal_density", "greater than 0", func(h noticehtml.Heuristics) (any, bool) { return h.MinSignalDensity, h.MinSignalDensity > 0 }},
	{"lookahead_factor", "greater than 0", func(h noticehtml.Heuristics) (any, bool) { return h.LookaheadFactor, h.LookaheadFactor > 0 }},
}

// LoadHeuristics reads table detection thresholds from a TOML file.
// An empty path or a missing file yields the defaults; keys absent from
// the file keep their default values. Keys that are set must hold usable
// values.
func LoadHeuristics(path string) (noticehtml.Heuristics, error) {
	h := noticehtml.DefaultHeuristics()
	if path == "" {
		return h, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return h, nil
	}
	md, err := toml.DecodeFile(path, &h)
	if err != nil {
		return h, fmt.Errorf("decode heuristics %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return h, fmt.Errorf("decode heuristics %s: unknown key %q", path, undecoded[0].String())
	}
	for _, rule := range heuristicRules {
		if !md.IsDefined(rule.key) {
			continue
		}
		if v, ok := rule.check(h); !ok {
			return h, fmt.Errorf("heuristics %s: %s must be %s, got %v", path, rule.key, rule.want, v)
		}
	}
	if h.MinColumns > h.MaxColumns {
		return h, fmt.Errorf("heuristics %s: min_columns %d exceeds max_columns %d", path, h.MinColumns, h.MaxColumns)
	}
	return h, nil
}
