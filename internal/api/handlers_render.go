package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/dgallion1/noticegest/internal/noticehtml"
	"github.com/dgallion1/noticegest/internal/parser"
	"github.com/dgallion1/noticegest/internal/render"
)

type renderRequest struct {
	Content       string `json:"content"`
	HasAttachment bool   `json:"has_attachment"`
}

type renderResponse struct {
	Filename     string             `json:"filename,omitempty"`
	Title        string             `json:"title,omitempty"`
	HTML         string             `json:"html"`
	Tables       []noticehtml.Table `json:"tables"`
	SkippedEmpty bool               `json:"skipped_empty"`
}

func newRenderResponse(out *render.Output) renderResponse {
	tables := out.Tables
	if tables == nil {
		tables = []noticehtml.Table{}
	}
	return renderResponse{HTML: out.HTML, Tables: tables, SkippedEmpty: out.Skipped}
}

// handleRender transforms a notice body posted as JSON.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.renderer.Render(req.Content, req.HasAttachment)
	if err != nil {
		s.log.Error("render failed", "error", err)
		jsonError(w, "render failed", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, newRenderResponse(out))
}

// handleRenderFile converts an uploaded file to a notice body and
// transforms it.
func (s *Server) handleRenderFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	conv, err := parser.ForFile(filename, s.parserOptions())
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := conv.Convert(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("convert failed", "filename", filename, "error", err)
		jsonError(w, "failed to convert file: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	out, err := s.renderer.Render(doc.HTML, false)
	if err != nil {
		s.log.Error("render failed", "filename", filename, "error", err)
		jsonError(w, "render failed", http.StatusUnprocessableEntity)
		return
	}
	resp := newRenderResponse(out)
	resp.Filename = filename
	resp.Title = doc.Title
	writeJSON(w, http.StatusOK, resp)
}
