package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a prerender job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusListing   JobStatus = "listing"
	StatusRendering JobStatus = "rendering"
	StatusCompleted JobStatus = "completed"
	StatusPartial   JobStatus = "partial"
	StatusFailed    JobStatus = "failed"
)

// Outcome is what happened to one notice in a job.
type Outcome int

const (
	OutcomeRendered Outcome = iota
	OutcomeUnchanged
	OutcomeSkippedEmpty
	OutcomeFailed
)

// Job renders a board's notices into the cache.
type Job struct {
	mu sync.Mutex

	ID        string   `json:"job_id"`
	Board     string   `json:"board"`
	NoticeIDs []string `json:"notice_ids,omitempty"`
	// Force re-renders notices whose content hash is unchanged.
	Force   bool   `json:"force"`
	Trigger string `json:"trigger"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress counts processed notices.
type Progress struct {
	Total     int      `json:"total"`
	Rendered  int      `json:"rendered"`
	Unchanged int      `json:"unchanged"`
	Skipped   int      `json:"skipped_empty"`
	Failed    int      `json:"failed"`
	Tables    int      `json:"tables"`
	Errors    []string `json:"errors"`
}

// Done is the number of notices with a final outcome.
func (p Progress) Done() int {
	return p.Rendered + p.Unchanged + p.Skipped + p.Failed
}

// NewJob creates a queued job. Empty ids means the whole board.
func NewJob(board string, ids []string, force bool, trigger string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Board:     board,
		NoticeIDs: ids,
		Force:     force,
		Trigger:   trigger,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes jobs idle for longer than the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		idle := now.Sub(job.UpdatedAt)
		job.mu.Unlock()
		if idle > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotal records how many notices the job covers.
func (j *Job) SetTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Total = n
	j.UpdatedAt = time.Now()
}

// Record counts one notice outcome.
func (j *Job) Record(o Outcome, tables int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch o {
	case OutcomeRendered:
		j.Progress.Rendered++
	case OutcomeUnchanged:
		j.Progress.Unchanged++
	case OutcomeSkippedEmpty:
		j.Progress.Skipped++
	case OutcomeFailed:
		j.Progress.Failed++
	}
	j.Progress.Tables += tables
	j.UpdatedAt = time.Now()
}

// finish sets the terminal status from the recorded outcomes.
func (j *Job) finish() JobStatus {
	j.mu.Lock()
	p := j.Progress
	j.mu.Unlock()

	status := StatusCompleted
	switch {
	case p.Failed > 0 && p.Failed == p.Total:
		status = StatusFailed
	case p.Failed > 0:
		status = StatusPartial
	}
	j.SetStatus(status, "done")
	return status
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Board     string    `json:"board"`
	NoticeIDs []string  `json:"notice_ids,omitempty"`
	Force     bool      `json:"force"`
	Trigger   string    `json:"trigger"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	p := j.Progress
	p.Errors = append([]string{}, j.errors...)
	return JobSnapshot{
		ID:        j.ID,
		Board:     j.Board,
		NoticeIDs: append([]string(nil), j.NoticeIDs...),
		Force:     j.Force,
		Trigger:   j.Trigger,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
