package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/pipeline"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

// multipartOverhead is the allowance for form fields and boundaries on top
// of the file size limit.
const multipartOverhead = 1 << 20

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 2 << 20

// HealthResponse is the body of GET / and GET /health.
type HealthResponse struct {
	Message        string `json:"message"`
	Version        string `json:"version"`
	AIEnabled      bool   `json:"ai_enabled"`
	MetricsEnabled bool   `json:"metrics_enabled"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{
		Message:        ServiceName,
		Version:        ServiceVersion,
		AIEnabled:      s.pipeline.AIEnabled(),
		MetricsEnabled: s.cfg.MetricsEnabled,
	})
}

func (s *Server) handleReasonCodes(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, types.AllReasons())
}

// handleUpload accepts a multipart "file" and optional "session_id".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.pipeline.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, errorMessage(&pipeline.TooLargeError{Limit: limit}))
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "failed to read upload")
		return
	}

	result, err := s.pipeline.Upload(r.Context(), pipeline.Document{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SessionID:   strings.TrimSpace(r.FormValue("session_id")),
	})
	if err != nil {
		status := HTTPStatus(err)
		message := errorMessage(err)
		if status == http.StatusInternalServerError {
			message = fmt.Sprintf("Error processing file: %v", err)
		}
		s.errorResponse(w, status, message)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), errorMessage(err))
		return
	}
	if req.SessionID == "" {
		req.SessionID = pipeline.NewSessionID()
	}

	s.jsonResponse(w, http.StatusOK, s.pipeline.Analyze(r.Context(), req))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), errorMessage(err))
		return
	}
	if req.SessionID == "" {
		req.SessionID = pipeline.NewSessionID()
	}

	output := s.pipeline.Generate(r.Context(), req)
	if err := r.Context().Err(); err != nil {
		s.logger.Info("http.generate.canceled", zap.Error(err))
		return
	}
	s.jsonResponse(w, http.StatusOK, output)
}

// handleExport renders the decision packet as an HTML page.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req types.ExportRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), errorMessage(err))
		return
	}

	page, err := s.pipeline.Export(req)
	if err != nil {
		s.logger.Error("http.export.failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to render decision packet")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, page)
}

// decodeJSON reads a bounded JSON body into v, writing a 400 on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.errorResponse(w, http.StatusBadRequest, (&ErrValidation{Field: "body", Message: "invalid JSON"}).Error())
		return false
	}
	return true
}
