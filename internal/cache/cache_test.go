package cache

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	at := time.Unix(1_700_000_000, 0)
	err := s.Put(ctx, Entry{Key: Key("notice", "7"), ContentHash: "abc", Title: "휴강", HTML: "<p>x</p>", Tables: 1, RenderedAt: at})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	e, err := s.Get(ctx, "notice/7")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil {
		t.Fatal("expected entry")
	}
	if e.ContentHash != "abc" || e.Title != "휴강" || e.HTML != "<p>x</p>" || e.Tables != 1 {
		t.Errorf("unexpected entry: %+v", e)
	}
	if !e.RenderedAt.Equal(at) {
		t.Errorf("expected rendered_at %v, got %v", at, e.RenderedAt)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := openTestStore(t)
	e, err := s.Get(context.Background(), "notice/none")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e != nil {
		t.Errorf("expected nil for missing entry, got %+v", e)
	}
}

func TestStore_PutReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, Entry{Key: "sojoong/1", ContentHash: "h1", HTML: "old"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, Entry{Key: "sojoong/1", ContentHash: "h2", HTML: "new"}); err != nil {
		t.Fatal(err)
	}

	e, err := s.Get(ctx, "sojoong/1")
	if err != nil {
		t.Fatal(err)
	}
	if e.ContentHash != "h2" || e.HTML != "new" {
		t.Errorf("expected replaced entry, got %+v", e)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}

func TestStore_Cleanup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	old := Entry{Key: "notice/old", ContentHash: "a", HTML: "a", RenderedAt: time.Now().Add(-48 * time.Hour)}
	fresh := Entry{Key: "notice/fresh", ContentHash: "b", HTML: "b"}
	for _, e := range []Entry{old, fresh} {
		if err := s.Put(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.Cleanup(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 removed, got %d", n)
	}
	if e, _ := s.Get(ctx, "notice/old"); e != nil {
		t.Error("expected old entry removed")
	}
	if e, _ := s.Get(ctx, "notice/fresh"); e == nil {
		t.Error("expected fresh entry kept")
	}
}

func TestStore_NoticeMetadata(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := Entry{
		Key:           "notice/9",
		ContentHash:   "h",
		Title:         "장학 안내",
		CreatedAt:     "2025-03-02",
		HasAttachment: true,
		Link:          "https://api.example.com/notice/9",
		HTML:          "<p>x</p>",
	}
	if err := s.Put(ctx, in); err != nil {
		t.Fatalf("put: %v", err)
	}
	e, err := s.Get(ctx, "notice/9")
	if err != nil || e == nil {
		t.Fatalf("get: %v %v", e, err)
	}
	if e.CreatedAt != in.CreatedAt || !e.HasAttachment || e.Link != in.Link {
		t.Errorf("expected metadata to round trip, got %+v", e)
	}
}

func TestOpen_AddsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`
CREATE TABLE rendered (
	key          TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	html         TEXT NOT NULL,
	tables       INTEGER NOT NULL DEFAULT 0,
	rendered_at  INTEGER NOT NULL
);
INSERT INTO rendered (key, content_hash, title, html, tables, rendered_at) VALUES ('notice/1', 'h', 'old', '<p>old</p>', 0, 1700000000);`)
	if err != nil {
		t.Fatalf("create old schema: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	e, err := s.Get(ctx, "notice/1")
	if err != nil || e == nil {
		t.Fatalf("get old entry: %v %v", e, err)
	}
	if e.Title != "old" || e.CreatedAt != "" || e.HasAttachment || e.Link != "" {
		t.Errorf("expected old entry with empty metadata, got %+v", e)
	}
	if err := s.Put(ctx, Entry{Key: "notice/1", ContentHash: "h2", HTML: "new", CreatedAt: "2025-01-01"}); err != nil {
		t.Fatalf("put after migration: %v", err)
	}
}
