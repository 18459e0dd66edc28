// Package render applies the notice transform to backend notices and
// keeps latency statistics.
package render

import (
	"time"

	"github.com/dgallion1/noticegest/internal/backend"
	"github.com/dgallion1/noticegest/internal/noticehtml"
)

// Output is a rendered notice body.
type Output struct {
	HTML   string             `json:"html"`
	Tables []noticehtml.Table `json:"-"`
	// Skipped is set when the body was empty next to an attachment.
	Skipped bool `json:"skipped_empty,omitempty"`
}

// TableCount is the number of reconstructed tables.
func (o *Output) TableCount() int {
	return len(o.Tables)
}

type Renderer struct {
	transformer *noticehtml.Transformer
	stats       *Stats
}

func New(t *noticehtml.Transformer, stats *Stats) *Renderer {
	if t == nil {
		t = noticehtml.New(noticehtml.Options{})
	}
	if stats == nil {
		stats = NewStats(time.Hour)
	}
	return &Renderer{transformer: t, stats: stats}
}

// Render transforms content. A notice that carries an attachment and has
// no visible text renders to the empty string so the viewer shows the
// attachment alone.
func (r *Renderer) Render(content string, hasAttachment bool) (*Output, error) {
	if hasAttachment && noticehtml.IsEmptyHTML(content) {
		r.stats.RecordSkipped()
		return &Output{Skipped: true}, nil
	}

	start := time.Now()
	res, err := r.transformer.Transform(content)
	if err != nil {
		r.stats.RecordFailure(time.Since(start))
		return nil, err
	}
	r.stats.Record(time.Since(start), len(res.Tables))
	return &Output{HTML: res.HTML, Tables: res.Tables}, nil
}

// RenderNotice renders a backend notice body.
func (r *Renderer) RenderNotice(n *backend.Notice) (*Output, error) {
	return r.Render(n.Content, n.HasAttachment)
}

func (r *Renderer) Stats() *Stats {
	return r.stats
}

func (r *Renderer) Transformer() *noticehtml.Transformer {
	return r.transformer
}
