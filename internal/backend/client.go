package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Board describes where a notice board lives on the backend.
type Board struct {
	Name     string
	ListPath string
	// ListKeys are the object keys that may hold the list. A bare array
	// is always accepted.
	ListKeys []string
	// DetailPaths are tried in order; %s is the escaped notice id.
	DetailPaths []string
	// PostBase offsets the displayed post numbers.
	PostBase int
}

var boards = map[string]Board{
	"notice": {
		Name:        "notice",
		ListPath:    "notice/mobile",
		ListKeys:    []string{"mobiles"},
		DetailPaths: []string{"notice/mobile/%s"},
		PostBase:    631,
	},
	"sojoong": {
		Name:        "sojoong",
		ListPath:    "notice/sojoong",
		ListKeys:    []string{"notices", "items"},
		DetailPaths: []string{"notice/sojoong/%s", "notice/api/sojoong/%s"},
		PostBase:    0,
	},
}

// LookupBoard returns the board registered under name.
func LookupBoard(name string) (Board, bool) {
	b, ok := boards[name]
	return b, ok
}

// BoardNames lists the known boards.
func BoardNames() []string {
	return []string{"notice", "sojoong"}
}

// ErrUnknownBoard is returned for board names with no registration.
var ErrUnknownBoard = errors.New("unknown board")

// ErrNotFound is returned when no detail path yields the notice.
var ErrNotFound = errors.New("notice not found")

// RetryableError indicates a transient backend failure.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	msg := e.Message
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, msg)
}

// Client talks to the notice REST backend.
type Client struct {
	baseURL    string
	base       *url.URL
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, _ := url.Parse(baseURL)
	return &Client{
		baseURL: baseURL,
		base:    base,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListNotices returns the board's notices in backend order.
func (c *Client) ListNotices(ctx context.Context, board string) ([]Notice, error) {
	b, ok := LookupBoard(board)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBoard, board)
	}
	body, status, err := c.get(ctx, c.baseURL+b.ListPath, jsonAccept, 8<<20)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", board, err)
	}
	if err := statusError(status, body); err != nil {
		return nil, fmt.Errorf("list %s: %w", board, err)
	}
	return decodeList(body, b.ListKeys)
}

// GetNotice fetches one notice, trying each detail path of the board in
// order. A 204 or any non-2xx answer moves on to the next path; the last
// failure is returned when none succeed.
func (c *Client) GetNotice(ctx context.Context, board string, id string) (*Notice, error) {
	b, ok := LookupBoard(board)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBoard, board)
	}
	var lastErr error
	for _, p := range b.DetailPaths {
		u := c.baseURL + fmt.Sprintf(p, url.PathEscape(id))
		n, err := c.getNotice(ctx, u)
		if err == nil {
			return n, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("get %s/%s: %w", board, id, lastErr)
}

func (c *Client) getNotice(ctx context.Context, u string) (*Notice, error) {
	body, status, err := c.get(ctx, u, jsonAccept, 8<<20)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNoContent:
		return nil, fmt.Errorf("%w: no content", ErrNotFound)
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	}
	if err := statusError(status, body); err != nil {
		return nil, err
	}
	var n Notice
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("decode notice: %w", err)
	}
	return &n, nil
}

// FetchAttachment downloads a file linked from a notice. Relative URLs
// resolve against the backend base URL. The API key is only sent when the
// file lives on the backend's own scheme and host. Bodies larger than
// limit fail.
func (c *Client) FetchAttachment(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	u, err := c.ResolveURL(rawURL)
	if err != nil {
		return nil, err
	}
	body, status, err := c.get(ctx, u, "", limit+1)
	if err != nil {
		return nil, fmt.Errorf("fetch attachment: %w", err)
	}
	if err := statusError(status, body); err != nil {
		return nil, fmt.Errorf("fetch attachment: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("fetch attachment: larger than %d bytes", limit)
	}
	return body, nil
}

// ResolveURL resolves ref against the backend base URL.
func (c *Client) ResolveURL(ref string) (string, error) {
	return ResolveURL(c.baseURL, ref)
}

// ResolveURL resolves ref against base. Absolute refs are returned as is.
func ResolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

const jsonAccept = "application/json"

// get issues a GET to u. An empty accept leaves the header unset.
func (c *Client) get(ctx context.Context, u, accept string, limit int64) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.apiKey != "" && c.sameOrigin(req.URL) {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// sameOrigin reports whether u shares the base URL's scheme and host.
func (c *Client) sameOrigin(u *url.URL) bool {
	if c.base == nil {
		return false
	}
	return strings.EqualFold(u.Scheme, c.base.Scheme) && strings.EqualFold(u.Host, c.base.Host)
}

func statusError(status int, body []byte) error {
	if status == http.StatusTooManyRequests || status >= 500 {
		return &RetryableError{StatusCode: status, Message: string(body)}
	}
	if status < 200 || status > 299 {
		if len(body) > 1024 {
			body = body[:1024]
		}
		return fmt.Errorf("status %d: %s", status, string(body))
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
