package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/noticegest/internal/config"
	"github.com/dgallion1/noticegest/internal/render"
)

// Orchestrator runs prerender jobs on a worker pool.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	source   NoticeSource
	cache    RenderCache
	renderer *render.Renderer
	log      *slog.Logger
	cfg      config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(cfg config.Config, source NoticeSource, rc RenderCache, renderer *render.Renderer, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		source:   source,
		cache:    rc,
		renderer: renderer,
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines, housekeeping and the optional
// periodic refresh.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.source, o.cache, o.renderer, o.log, o.cfg.MaxConcurrentRender)
			w.baseURL = o.cfg.NoticeAPIBaseURL
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.housekeep(workerCtx)
			}
		}
	}()

	if o.cfg.RefreshInterval > 0 {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.refreshAll()
			ticker := time.NewTicker(o.cfg.RefreshInterval)
			defer ticker.Stop()
			for {
				select {
				case <-workerCtx.Done():
					return
				case <-ticker.C:
					o.refreshAll()
				}
			}
		}()
	}
}

func (o *Orchestrator) housekeep(ctx context.Context) {
	o.jobs.Cleanup()
	if o.cache == nil {
		return
	}
	n, err := o.cache.Cleanup(ctx, o.cfg.CacheTTL)
	if err != nil {
		o.log.Warn("cache cleanup failed", "error", err)
		return
	}
	if n > 0 {
		o.log.Info("cache cleanup", "removed", n)
	}
}

// refreshAll queues one whole-board job per configured board.
func (o *Orchestrator) refreshAll() {
	for _, board := range o.cfg.RefreshBoards {
		job := NewJob(board, nil, false, "refresh")
		if err := o.Submit(job); err != nil {
			o.log.Warn("refresh not queued", "board", board, "error", err)
		}
	}
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
