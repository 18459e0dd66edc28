package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Notice backend
	NoticeAPIBaseURL string
	NoticeAPIKey     string

	// Auth
	NoticegestAPIKey string

	// Transform
	HeuristicsFile string
	BadgeIconURL   string
	// DisableLinks makes anchors in rendered notices inert.
	DisableLinks bool

	// Render cache
	CachePath string
	CacheTTL  time.Duration

	// Worker pool
	WorkerCount         int
	MaxQueueSize        int
	MaxConcurrentRender int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Boards prerendered on a timer; zero interval disables the refresh.
	RefreshInterval time.Duration
	RefreshBoards   []string

	// PDF
	PDFFallbackPdftotext bool

	// Room bookings are forwarded only when enabled.
	ReservationsEnabled bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		NoticeAPIBaseURL: envOr("NOTICE_API_BASE_URL", "http://localhost:8080/"),
		NoticeAPIKey:     os.Getenv("NOTICE_API_KEY"),

		NoticegestAPIKey: os.Getenv("NOTICEGEST_API_KEY"),

		HeuristicsFile: os.Getenv("HEURISTICS_FILE"),
		BadgeIconURL:   os.Getenv("BADGE_ICON_URL"),
		DisableLinks:   envBool("DISABLE_NOTICE_LINKS", false),

		CachePath: envOr("CACHE_PATH", "noticegest.db"),
		CacheTTL:  envDuration("CACHE_TTL", 7*24*time.Hour),

		WorkerCount:         envInt("WORKER_COUNT", 2),
		MaxQueueSize:        envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentRender: envInt("MAX_CONCURRENT_RENDER", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		RefreshInterval: envDuration("REFRESH_INTERVAL", 0),
		RefreshBoards:   envList("REFRESH_BOARDS", []string{"notice", "sojoong"}),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		ReservationsEnabled: envBool("RESERVATIONS_ENABLED", false),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentRender <= 0 {
		cfg.MaxConcurrentRender = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 7 * 24 * time.Hour
	}
	if cfg.RefreshInterval < 0 {
		cfg.RefreshInterval = 0
	}
	if !strings.HasSuffix(cfg.NoticeAPIBaseURL, "/") {
		cfg.NoticeAPIBaseURL += "/"
	}

	return cfg
}

func (c Config) Validate() error {
	if c.NoticegestAPIKey == "" {
		return fmt.Errorf("NOTICEGEST_API_KEY is required")
	}
	if c.NoticeAPIBaseURL == "" || c.NoticeAPIBaseURL == "/" {
		return fmt.Errorf("NOTICE_API_BASE_URL is required")
	}
	if c.CachePath == "" {
		return fmt.Errorf("CACHE_PATH is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma separated value, dropping blanks.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
