package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/dgallion1/noticegest/internal/backend"
	"github.com/dgallion1/noticegest/internal/parser"
)

// readSource reads a notice body or attachment from a file path, an
// http(s) URL or stdin ("-" or empty). It returns the bytes and the name
// used to pick a converter.
func readSource(ctx context.Context, src string, o *options) ([]byte, string, error) {
	limit := o.cfg.MaxUploadBytes
	switch {
	case src == "" || src == "-":
		data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		if int64(len(data)) > limit {
			return nil, "", fmt.Errorf("stdin larger than %d bytes", limit)
		}
		return data, "stdin.html", nil

	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		client := backend.NewClient(o.cfg.NoticeAPIBaseURL, o.cfg.NoticeAPIKey)
		defer client.Close()
		data, err := client.FetchAttachment(ctx, src, limit)
		if err != nil {
			return nil, "", err
		}
		name := "download.html"
		if u, err := url.Parse(src); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
			name = path.Base(u.Path)
		}
		return data, name, nil

	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, "", err
		}
		return data, src, nil
	}
}

// loadDocument converts src into a notice HTML fragment. Unknown
// extensions are read as HTML.
func loadDocument(ctx context.Context, src string, o *options) (*parser.Document, error) {
	data, name, err := readSource(ctx, src, o)
	if err != nil {
		return nil, err
	}
	convName := name
	if !parser.IsSupportedExtension(name) {
		slog.Debug("unknown extension, reading as html", "source", name)
		convName = name + ".html"
	}
	conv, err := parser.ForFile(convName, o.parserOptions())
	if err != nil {
		return nil, err
	}
	doc, err := conv.Convert(bytes.NewReader(data), name)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", name, err)
	}
	slog.Debug("document loaded", "source", name, "bytes", len(data), "title", doc.Title)
	return doc, nil
}
