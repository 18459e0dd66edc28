package render

import (
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/noticegest/internal/backend"
)

func TestRender_AttachmentWithEmptyBodyIsSkipped(t *testing.T) {
	r := New(nil, nil)
	out, err := r.RenderNotice(&backend.Notice{Content: "<p>&nbsp;</p><br>", HasAttachment: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.HTML != "" || !out.Skipped {
		t.Errorf("expected skipped empty output, got %+v", out)
	}
	if snap := r.Stats().Snapshot(); snap.Skipped != 1 || snap.Count != 1 {
		t.Errorf("expected one skipped sample, got %+v", snap)
	}
}

func TestRender_EmptyBodyWithoutAttachmentStillRenders(t *testing.T) {
	r := New(nil, nil)
	out, err := r.Render("", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Skipped || !strings.Contains(out.HTML, "kogl-badge") {
		t.Errorf("expected badge-only output, got %+v", out)
	}
}

func TestRender_AttachmentWithTextRenders(t *testing.T) {
	r := New(nil, nil)
	out, err := r.Render("<p>첨부 파일을 확인하세요.</p>", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.HTML, "<p>첨부 파일을 확인하세요.</p>") {
		t.Errorf("expected body kept, got %q", out.HTML)
	}
}

func TestRender_RecordsTables(t *testing.T) {
	r := New(nil, nil)
	body := "<p>학년</p><p>학기</p><p>교과코드</p><p>교과목명</p>" +
		"<p>1</p><p>1</p><p>CS101</p><p>자료구조</p>" +
		"<p>1</p><p>2</p><p>CS102</p><p>알고리즘</p>" +
		"<p>2</p><p>1</p><p>CS201</p><p>운영체제</p>"
	out, err := r.Render(body, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.TableCount() != 1 {
		t.Fatalf("expected 1 table, got %d", out.TableCount())
	}
	if snap := r.Stats().Snapshot(); snap.Tables != 1 {
		t.Errorf("expected 1 table in stats, got %d", snap.Tables)
	}
}

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	for _, us := range []int64{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(us)*time.Microsecond, 0)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinUs != 100 || snap.MaxUs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinUs, snap.MaxUs)
	}
	if snap.AvgUs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgUs)
	}
	if snap.P50Us != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Us)
	}
	if snap.P95Us != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Us)
	}
	if snap.P99Us != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Us)
	}
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewStats(time.Minute)
	now := time.Unix(1_700_000_000, 0)
	stats.now = func() time.Time { return now }

	stats.Record(100*time.Microsecond, 0)
	now = now.Add(2 * time.Minute)

	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200*time.Microsecond, 2)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinUs != 200 || snap.Tables != 2 {
		t.Fatalf("expected one fresh sample, got %+v", snap)
	}
}

func TestStatsFailuresAndNegativeDurations(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.RecordFailure(-time.Second)
	snap := stats.Snapshot()
	if snap.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", snap.Failed)
	}
	if snap.MinUs != 0 || snap.MaxUs != 0 {
		t.Errorf("expected clamped duration=0, got min=%d max=%d", snap.MinUs, snap.MaxUs)
	}
}
