package render

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at       time.Time
	micros   int64
	tables   int
	skipped  bool
	failures int
}

// StatsSnapshot aggregates the render samples inside the window.
type StatsSnapshot struct {
	Count   int     `json:"count"`
	Failed  int     `json:"failed"`
	Skipped int     `json:"skipped_empty"`
	Tables  int     `json:"tables_reconstructed"`
	MinUs   int64   `json:"min_us"`
	MaxUs   int64   `json:"max_us"`
	AvgUs   float64 `json:"avg_us"`
	P50Us   float64 `json:"p50_us"`
	P95Us   float64 `json:"p95_us"`
	P99Us   float64 `json:"p99_us"`
	Window  string  `json:"window"`
}

// Stats keeps render samples for a rolling window.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
	now     func() time.Time
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

func (s *Stats) record(sm sample) {
	if sm.micros < 0 {
		sm.micros = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sm.at = s.now()
	s.pruneLocked(sm.at)
	s.samples = append(s.samples, sm)
}

// Record adds a successful transform.
func (s *Stats) Record(d time.Duration, tables int) {
	s.record(sample{micros: d.Microseconds(), tables: tables})
}

// RecordSkipped adds a notice whose body was empty beside an attachment.
func (s *Stats) RecordSkipped() {
	s.record(sample{skipped: true})
}

// RecordFailure adds a transform that returned an error.
func (s *Stats) RecordFailure(d time.Duration) {
	s.record(sample{micros: d.Microseconds(), failures: 1})
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	snap := StatsSnapshot{Window: s.window.String()}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		snap.Count++
		snap.Tables += sm.tables
		snap.Failed += sm.failures
		if sm.skipped {
			snap.Skipped++
			continue
		}
		values = append(values, sm.micros)
		sum += sm.micros
	}
	if len(values) == 0 {
		return snap
	}
	slices.Sort(values)

	snap.MinUs = values[0]
	snap.MaxUs = values[len(values)-1]
	snap.AvgUs = float64(sum) / float64(len(values))
	snap.P50Us = percentile(values, 50)
	snap.P95Us = percentile(values, 95)
	snap.P99Us = percentile(values, 99)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.samples = slices.DeleteFunc(s.samples, func(sm sample) bool {
		return sm.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	idx := float64(len(sorted)-1) * pct / 100
	lo := int(idx)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := idx - float64(lo)
	return float64(sorted[lo]) + (float64(sorted[lo+1])-float64(sorted[lo]))*frac
}
