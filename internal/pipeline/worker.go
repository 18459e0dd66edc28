package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dgallion1/noticegest/internal/backend"
	"github.com/dgallion1/noticegest/internal/cache"
	"github.com/dgallion1/noticegest/internal/render"
)

// NoticeSource is the part of the backend client the pipeline uses.
type NoticeSource interface {
	ListNotices(ctx context.Context, board string) ([]backend.Notice, error)
	GetNotice(ctx context.Context, board, id string) (*backend.Notice, error)
}

// RenderCache is the part of the cache store the pipeline uses.
type RenderCache interface {
	Get(ctx context.Context, key string) (*cache.Entry, error)
	Put(ctx context.Context, e cache.Entry) error
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Worker processes prerender jobs.
type Worker struct {
	source   NoticeSource
	cache    RenderCache
	renderer *render.Renderer
	log      *slog.Logger
	backoff  func(int) time.Duration
	baseURL  string

	maxConcurrentRender int
}

func NewWorker(source NoticeSource, rc RenderCache, renderer *render.Renderer, log *slog.Logger, maxRender int) *Worker {
	if maxRender <= 0 {
		maxRender = 1
	}
	return &Worker{
		source:              source,
		cache:               rc,
		renderer:            renderer,
		log:                 log,
		backoff:             Backoff,
		maxConcurrentRender: maxRender,
	}
}

// Process runs a prerender job to completion.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "board", job.Board, "trigger", job.Trigger)

	if _, ok := backend.LookupBoard(job.Board); !ok {
		job.AddError(fmt.Sprintf("unknown board %q", job.Board))
		job.SetStatus(StatusFailed, "listing")
		return
	}

	// Phase 1: resolve the notice ids.
	ids := job.NoticeIDs
	if len(ids) == 0 {
		job.SetStatus(StatusListing, "listing")
		list, err := retry(ctx, log, w.backoff, "list", func() ([]backend.Notice, error) {
			return w.source.ListNotices(ctx, job.Board)
		})
		if err != nil {
			log.Error("list failed", "error", err)
			job.AddError(fmt.Sprintf("list: %s", err))
			job.SetStatus(StatusFailed, "listing")
			return
		}
		ids = make([]string, 0, len(list))
		for _, n := range list {
			if n.ID != "" {
				ids = append(ids, n.ID.String())
			}
		}
	}
	job.SetTotal(len(ids))
	log.Info("prerendering", "notices", len(ids))

	// Phase 2: fetch and render with bounded concurrency.
	job.SetStatus(StatusRendering, "rendering")
	type result struct {
		id      string
		outcome Outcome
		tables  int
		err     error
	}
	results := make(chan result, len(ids))
	sem := make(chan struct{}, w.maxConcurrentRender)

	for _, id := range ids {
		sem <- struct{}{}
		go func(id string) {
			defer func() { <-sem }()
			outcome, tables, err := w.renderOne(ctx, log, job, id)
			results <- result{id: id, outcome: outcome, tables: tables, err: err}
		}(id)
	}

	for range ids {
		r := <-results
		job.Record(r.outcome, r.tables)
		if r.err != nil {
			log.Error("notice failed", "notice_id", r.id, "error", r.err)
			job.AddError(fmt.Sprintf("notice %s: %s", r.id, r.err))
		}
	}

	status := job.finish()
	snap := job.Snapshot()
	log.Info("prerender complete",
		"status", status,
		"rendered", snap.Progress.Rendered,
		"unchanged", snap.Progress.Unchanged,
		"skipped_empty", snap.Progress.Skipped,
		"failed", snap.Progress.Failed,
	)
}

// renderOne fetches a notice, renders it unless the cached hash matches,
// and stores the result.
func (w *Worker) renderOne(ctx context.Context, log *slog.Logger, job *Job, id string) (Outcome, int, error) {
	n, err := retry(ctx, log, w.backoff, "get", func() (*backend.Notice, error) {
		return w.source.GetNotice(ctx, job.Board, id)
	})
	if err != nil {
		return OutcomeFailed, 0, err
	}

	key := cache.Key(job.Board, id)
	hash := NoticeHash(n)
	if !job.Force {
		prev, err := w.cache.Get(ctx, key)
		if err != nil {
			log.Warn("cache lookup failed, rendering", "notice_id", id, "error", err)
		} else if prev != nil && prev.ContentHash == hash {
			return OutcomeUnchanged, 0, nil
		}
	}

	out, err := w.renderer.RenderNotice(n)
	if err != nil {
		return OutcomeFailed, 0, fmt.Errorf("render: %w", err)
	}
	if err := w.cache.Put(ctx, NoticeEntry(key, n, out, w.baseURL)); err != nil {
		return OutcomeFailed, 0, fmt.Errorf("store: %w", err)
	}
	if out.Skipped {
		return OutcomeSkippedEmpty, 0, nil
	}
	return OutcomeRendered, out.TableCount(), nil
}

// NoticeEntry is the cache entry for a rendered notice, carrying the
// list metadata needed to answer from cache alone.
func NoticeEntry(key string, n *backend.Notice, out *render.Output, baseURL string) cache.Entry {
	return cache.Entry{
		Key:           key,
		ContentHash:   NoticeHash(n),
		Title:         n.Title,
		CreatedAt:     n.CreatedAt,
		HasAttachment: n.HasAttachment,
		Link:          NoticeLink(baseURL, n),
		HTML:          out.HTML,
		Tables:        out.TableCount(),
	}
}

// NoticeLink resolves the notice's page URL against baseURL. Empty when
// the notice has none or it does not parse.
func NoticeLink(baseURL string, n *backend.Notice) string {
	if n.URL == "" {
		return ""
	}
	link, err := backend.ResolveURL(baseURL, n.URL)
	if err != nil {
		return ""
	}
	return link
}

// NoticeHash identifies the inputs of a render: the body and the
// attachment flag, which decides the empty-body rule.
func NoticeHash(n *backend.Notice) string {
	return ContentHashHex([]byte(strconv.FormatBool(n.HasAttachment) + "\x00" + n.Content))
}
