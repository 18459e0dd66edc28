package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

type hitLog struct {
	mu    sync.Mutex
	paths []string
}

func (h *hitLog) add(p string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paths = append(h.paths, p)
}

func (h *hitLog) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.paths)
}

func newTestServer(t *testing.T, routes map[string]func(http.ResponseWriter, *http.Request)) (*Client, *hitLog) {
	t.Helper()
	hits := &hitLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		if h, ok := routes[r.URL.Path]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "secret")
	t.Cleanup(c.Close)
	return c, hits
}

func writeJSON(body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestListNotices_NoticeBoardUsesMobilesKey(t *testing.T) {
	c, _ := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/notice/mobile": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("expected bearer auth, got %q", got)
			}
			writeJSON(`{"mobiles":[{"id":"7","title":"휴강 안내","createdAt":"2025-03-02","is_pin":true}]}`)(w, r)
		},
	})

	list, err := c.ListNotices(context.Background(), "notice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 notice, got %d", len(list))
	}
	n := list[0]
	if n.ID != "7" || n.Title != "휴강 안내" || !n.Pinned || n.CreatedAt != "2025-03-02" {
		t.Errorf("unexpected notice: %+v", n)
	}
}

func TestListNotices_SojoongShapes(t *testing.T) {
	cases := map[string]string{
		"bare":    `[{"id":1,"title":"a"},{"id":2,"title":"b"}]`,
		"notices": `{"notices":[{"id":1,"title":"a"},{"id":2,"title":"b"}]}`,
		"items":   `{"items":[{"id":1,"title":"a"},{"id":2,"title":"b"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
				"/notice/sojoong": writeJSON(body),
			})
			list, err := c.ListNotices(context.Background(), "sojoong")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(list) != 2 || list[0].ID != "1" || list[1].ID != "2" {
				t.Errorf("unexpected list: %+v", list)
			}
		})
	}
}

func TestListNotices_UnknownShapeIsEmpty(t *testing.T) {
	c, _ := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/notice/sojoong": writeJSON(`{"data":{"rows":[]}}`),
	})
	list, err := c.ListNotices(context.Background(), "sojoong")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", list)
	}
}

func TestListNotices_UnknownBoard(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "")
	_, err := c.ListNotices(context.Background(), "events")
	if !errors.Is(err, ErrUnknownBoard) {
		t.Errorf("expected ErrUnknownBoard, got %v", err)
	}
}

func TestListNotices_ServerErrorIsRetryable(t *testing.T) {
	c, _ := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/notice/mobile": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "busy", http.StatusServiceUnavailable)
		},
	})
	_, err := c.ListNotices(context.Background(), "notice")
	var retryErr *RetryableError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected RetryableError, got %v", err)
	}
	if retryErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", retryErr.StatusCode)
	}
}

func TestGetNotice_CreatedAtFallback(t *testing.T) {
	c, _ := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/notice/mobile/12": writeJSON(`{"id":12,"title":"t","content":"<p>x</p>","created_at":"2025-01-05","has_attachment":true}`),
	})
	n, err := c.GetNotice(context.Background(), "notice", "12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.CreatedAt != "2025-01-05" {
		t.Errorf("expected created_at fallback, got %q", n.CreatedAt)
	}
	if n.ID != "12" || !n.HasAttachment || n.Content != "<p>x</p>" {
		t.Errorf("unexpected notice: %+v", n)
	}
}

func TestGetNotice_SojoongFallsBackOnNoContent(t *testing.T) {
	c, hits := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/notice/sojoong/5": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		},
		"/notice/api/sojoong/5": writeJSON(`{"id":"5","title":"fallback","createdAt":"2025-02-01"}`),
	})
	n, err := c.GetNotice(context.Background(), "sojoong", "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Title != "fallback" {
		t.Errorf("expected fallback notice, got %q", n.Title)
	}
	if hits.count() != 2 {
		t.Errorf("expected 2 requests, got %v", hits.paths)
	}
}

func TestGetNotice_AllPathsFail(t *testing.T) {
	c, hits := newTestServer(t, nil)
	_, err := c.GetNotice(context.Background(), "sojoong", "9")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if hits.count() != 2 {
		t.Errorf("expected both paths tried, got %v", hits.paths)
	}
}

func TestGetNotice_NoticeBoardHasNoFallback(t *testing.T) {
	c, hits := newTestServer(t, nil)
	if _, err := c.GetNotice(context.Background(), "notice", "1"); err == nil {
		t.Fatal("expected error")
	}
	if hits.count() != 1 {
		t.Errorf("expected a single request, got %v", hits.paths)
	}
}

func TestFetchAttachment_RelativeURLAndLimit(t *testing.T) {
	c, _ := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/files/a.txt": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("hello"))
		},
	})
	data, err := c.FetchAttachment(context.Background(), "/files/a.txt", 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected %q, got %q", "hello", data)
	}

	_, err = c.FetchAttachment(context.Background(), "files/a.txt", 3)
	if err == nil || !strings.Contains(err.Error(), "larger than") {
		t.Errorf("expected size limit error, got %v", err)
	}
}

func TestFetchAttachment_CredentialsStayOnBackend(t *testing.T) {
	var foreignAuth, foreignAccept string
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignAuth = r.Header.Get("Authorization")
		foreignAccept = r.Header.Get("Accept")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer foreign.Close()

	var ownAuth, ownAccept string
	c, _ := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/files/a.pdf": func(w http.ResponseWriter, r *http.Request) {
			ownAuth = r.Header.Get("Authorization")
			ownAccept = r.Header.Get("Accept")
			w.Write([]byte("%PDF-1.4"))
		},
	})

	if _, err := c.FetchAttachment(context.Background(), foreign.URL+"/files/a.pdf", 64); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if foreignAuth != "" {
		t.Errorf("expected no Authorization header on a foreign host, got %q", foreignAuth)
	}
	if foreignAccept == "application/json" {
		t.Error("expected attachment requests not to ask for JSON")
	}

	if _, err := c.FetchAttachment(context.Background(), "/files/a.pdf", 64); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ownAuth != "Bearer secret" {
		t.Errorf("expected bearer auth on the backend host, got %q", ownAuth)
	}
	if ownAccept == "application/json" {
		t.Error("expected attachment requests not to ask for JSON")
	}
}

func TestSameOrigin(t *testing.T) {
	c := NewClient("https://api.example.com/v1", "k")
	cases := map[string]bool{
		"https://api.example.com/files/a.pdf":     true,
		"https://API.example.com/x":               true,
		"http://api.example.com/files/a.pdf":      false,
		"https://api.example.com:8443/a.pdf":      false,
		"https://cdn.example.com/files/a.pdf":     false,
		"https://api.example.com.evil.test/a.pdf": false,
	}
	for raw, want := range cases {
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatal(err)
		}
		if got := c.sameOrigin(u); got != want {
			t.Errorf("sameOrigin(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestResolveURL(t *testing.T) {
	cases := map[string]string{
		"/files/a.pdf":              "https://api.example.com/files/a.pdf",
		"files/a.pdf":               "https://api.example.com/v1/files/a.pdf",
		"https://cdn.example.com/x": "https://cdn.example.com/x",
		" notice/3 ":                "https://api.example.com/v1/notice/3",
	}
	for ref, want := range cases {
		got, err := ResolveURL("https://api.example.com/v1/", ref)
		if err != nil {
			t.Errorf("ResolveURL(%q): %v", ref, err)
			continue
		}
		if got != want {
			t.Errorf("ResolveURL(%q) = %q, want %q", ref, got, want)
		}
	}
}
