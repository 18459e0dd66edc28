package pipeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("notice", nil, false, "api")
	if _, err := uuid.Parse(job.ID); err != nil {
		t.Errorf("expected uuid job id, got %q: %v", job.ID, err)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if other := NewJob("notice", nil, false, "api"); other.ID == job.ID {
		t.Error("expected distinct job ids")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("sojoong", nil, false, "api")

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusListing, "listing"},
		{StatusRendering, "rendering"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("notice 3 failed")
	job.AddError("notice 7 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "notice 3 failed" {
		t.Errorf("expected first error %q, got %q", "notice 3 failed", snap.Progress.Errors[0])
	}
}

func TestJob_RecordOutcomes(t *testing.T) {
	job := &Job{ID: "rec", UpdatedAt: time.Now()}
	job.SetTotal(4)
	job.Record(OutcomeRendered, 2)
	job.Record(OutcomeUnchanged, 0)
	job.Record(OutcomeSkippedEmpty, 0)
	job.Record(OutcomeFailed, 0)

	p := job.Snapshot().Progress
	if p.Rendered != 1 || p.Unchanged != 1 || p.Skipped != 1 || p.Failed != 1 {
		t.Errorf("unexpected counts: %+v", p)
	}
	if p.Tables != 2 {
		t.Errorf("expected 2 tables, got %d", p.Tables)
	}
	if p.Done() != p.Total {
		t.Errorf("expected done == total, got %d/%d", p.Done(), p.Total)
	}
}

func TestJob_Finish(t *testing.T) {
	cases := []struct {
		name     string
		outcomes []Outcome
		want     JobStatus
	}{
		{"empty", nil, StatusCompleted},
		{"all ok", []Outcome{OutcomeRendered, OutcomeUnchanged}, StatusCompleted},
		{"some failed", []Outcome{OutcomeRendered, OutcomeFailed}, StatusPartial},
		{"all failed", []Outcome{OutcomeFailed, OutcomeFailed}, StatusFailed},
	}
	for _, tc := range cases {
		job := &Job{ID: tc.name}
		job.SetTotal(len(tc.outcomes))
		for _, o := range tc.outcomes {
			job.Record(o, 0)
		}
		if got := job.finish(); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("notice", nil, false, "api")
	store.Put(job)

	got := store.Get(job.ID)
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job left, got %d", store.Len())
	}
}
