// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gopkg.in/yaml.v3"

	"reportcheck/internal/core"
	"reportcheck/internal/document"
	"reportcheck/internal/formatters"
	"reportcheck/internal/formatters/shared"
	"reportcheck/internal/observability"
	"reportcheck/internal/rules"
	"reportcheck/internal/version"

	// Import formatters to register them
	_ "reportcheck/internal/formatters/csv"
	_ "reportcheck/internal/formatters/json"
	_ "reportcheck/internal/formatters/text"
	_ "reportcheck/internal/formatters/yaml"
)

const (
	maxUploadBytes = 64 << 20
	maxFiles       = 20
)

// WebServer represents the web server instance.
type WebServer struct {
	port      int
	processor *core.Processor
	observer  *observability.StandardObserver
	router    chi.Router

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// ValidateResponse is the JSON body returned by POST /validate.
type ValidateResponse struct {
	Success bool                   `json:"success"`
	Summary *document.BatchSummary `json:"summary,omitempty"`
	Reports []shared.ExportReport  `json:"reports,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// ExportRequest is the JSON body accepted by POST /export. Reports are
// the ones returned by /validate.
type ExportRequest struct {
	Format  string                `json:"format"`
	Verbose bool                  `json:"verbose"`
	Summary document.BatchSummary `json:"summary"`
	Reports []shared.ExportReport `json:"reports"`
}

// NewWebServer creates a new web server instance.
func NewWebServer(port int, processor *core.Processor, observer *observability.StandardObserver) *WebServer {
	ws := &WebServer{
		port:      port,
		processor: processor,
		observer:  observer,
	}
	ws.router = ws.setupRoutes()
	return ws
}

// Handler returns the HTTP handler, for tests and embedding.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

func (ws *WebServer) setupRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(ws.requestLogger)

	r.Get("/health", ws.handleHealth)
	r.Post("/validate", ws.handleValidate)
	r.Get("/rules", ws.handleRules)
	r.Post("/export", ws.handleExport)
	r.Get("/formats", ws.handleFormats)
	return r
}

// requestLogger logs each request through the observer.
func (ws *WebServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		ws.observer.LogOperation(observability.StandardObservabilityData{
			Component:  "web",
			Operation:  r.Method + " " + r.URL.Path,
			RequestID:  middleware.GetReqID(r.Context()),
			DurationMs: time.Since(start).Milliseconds(),
			Success:    ww.Status() < http.StatusInternalServerError,
			Metadata:   map[string]interface{}{"status": ww.Status(), "bytes": ww.BytesWritten()},
		})
	})
}

// Start listens on the configured port and serves until Shutdown. When
// the port is busy the next nine ports are tried.
func (ws *WebServer) Start() error {
	listener, err := ws.listen()
	if err != nil {
		return err
	}

	ws.mu.Lock()
	if ws.closed {
		ws.mu.Unlock()
		return listener.Close()
	}
	server := ws.createSecureServer()
	ws.server = server
	ws.mu.Unlock()

	ws.observer.Logger().Info().Str("addr", listener.Addr().String()).Msg("reportcheck API listening")
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving on %s: %w", listener.Addr(), err)
	}
	return nil
}

func (ws *WebServer) listen() (net.Listener, error) {
	var lastError error
	for i := 0; i < 10; i++ {
		listener, err := net.Listen("tcp", ":"+strconv.Itoa(ws.port+i))
		if err == nil {
			return listener, nil
		}
		lastError = err
		ws.observer.Logger().Warn().Int("port", ws.port+i).Err(err).Msg("port unavailable, trying next")
	}
	return nil, fmt.Errorf("could not find an available port in range %d-%d: %w", ws.port, ws.port+9, lastError)
}

// Shutdown stops the server, waiting for in-flight requests. A server
// shut down before Start never serves.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	ws.mu.Lock()
	ws.closed = true
	server := ws.server
	ws.mu.Unlock()

	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}

// createSecureServer creates an HTTP server with security timeouts.
// Validation of large batches can take a while, so the write timeout is
// longer than the read timeout.
func (ws *WebServer) createSecureServer() *http.Server {
	return &http.Server{
		Handler:           ws.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}

// handleHealth reports liveness and build information.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "reportcheck",
		"version":    version.Short(),
		"build_info": version.Get(),
	})
}

// handleValidate validates uploaded documents. The multipart field
// "files" carries the documents; "format" selects an export format
// instead of the JSON envelope and "verbose" adds per-page detail.
func (ws *WebServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		ws.sendError(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		ws.sendError(w, "No files uploaded", http.StatusBadRequest)
		return
	}
	if len(files) > maxFiles {
		ws.sendError(w, fmt.Sprintf("Too many files: %d uploaded, at most %d per request", len(files), maxFiles), http.StatusBadRequest)
		return
	}

	format := r.FormValue("format")
	if format != "" {
		if _, ok := formatters.Get(format); !ok {
			ws.sendError(w, fmt.Sprintf("Unsupported format '%s'. Available formats: %s", format, strings.Join(formatters.List(), ", ")), http.StatusBadRequest)
			return
		}
	}
	verbose := r.FormValue("verbose") == "true"

	tempDir, err := os.MkdirTemp("", "reportcheck-upload-")
	if err != nil {
		ws.sendError(w, "Failed to create upload directory", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tempDir)

	paths := make([]string, 0, len(files))
	for i, fh := range files {
		path, err := saveUpload(tempDir, i, fh)
		if err != nil {
			ws.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		paths = append(paths, path)
	}

	reports, summary := ws.processor.ProcessFiles(r.Context(), paths)
	// Temp paths mean nothing to the client.
	for i := range reports {
		reports[i].Path = reports[i].FileName
	}

	if format != "" && format != "json" {
		ws.sendExport(w, format, reports, summary, verbose)
		return
	}

	export := shared.ConvertReports(reports, summary, verbose)
	writeJSON(w, http.StatusOK, ValidateResponse{
		Success: true,
		Summary: &export.Summary,
		Reports: export.Reports,
	})
}

// saveUpload stores one uploaded file under its own subdirectory so
// uploads with the same name do not collide.
func saveUpload(tempDir string, index int, fh *multipart.FileHeader) (string, error) {
	name := sanitizeFilename(fh.Filename)
	if name == "" {
		return "", fmt.Errorf("file %d has no usable name", index+1)
	}

	dir := filepath.Join(tempDir, strconv.Itoa(index))
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", name, err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", name, err)
	}
	defer src.Close()

	path := filepath.Join(dir, name)
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to store %s: %w", name, err)
	}
	return path, dst.Close()
}

// handleRules returns the effective rule set, YAML by default or JSON
// with ?format=json.
func (ws *WebServer) handleRules(w http.ResponseWriter, r *http.Request) {
	data, err := rules.Marshal(ws.processor.Rules())
	if err != nil {
		ws.sendError(w, fmt.Sprintf("Failed to render rules: %v", err), http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		var generic map[string]interface{}
		if err := yaml.Unmarshal(data, &generic); err != nil {
			ws.sendError(w, fmt.Sprintf("Failed to render rules: %v", err), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, generic)
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleExport re-renders reports from a previous /validate call.
func (ws *WebServer) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		ws.sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if req.Format == "" {
		ws.sendError(w, "Format is required", http.StatusBadRequest)
		return
	}
	if _, ok := formatters.Get(req.Format); !ok {
		ws.sendError(w, fmt.Sprintf("Unsupported format '%s'. Available formats: %s", req.Format, strings.Join(formatters.List(), ", ")), http.StatusBadRequest)
		return
	}

	reports := make([]document.DocumentReport, 0, len(req.Reports))
	for _, er := range req.Reports {
		reports = append(reports, document.DocumentReport{
			FileName: er.FileName,
			Path:     er.Path,
			Status:   er.Status,
			Result:   er.Result,
			Error:    er.Error,
			Duration: time.Duration(er.ProcessingMs) * time.Millisecond,
		})
	}
	summary := document.Summarize(reports)
	summary.BatchID = req.Summary.BatchID

	ws.sendExport(w, req.Format, reports, summary, req.Verbose)
}

// handleFormats lists the export formats.
func (ws *WebServer) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, formatters.GetSupportedFormats())
}

// sendExport writes a formatted report as a download.
func (ws *WebServer) sendExport(w http.ResponseWriter, format string, reports []document.DocumentReport, summary document.BatchSummary, verbose bool) {
	content, mimeType, filename, err := formatters.ExportForWeb(format, reports, summary, formatters.FormatterOptions{
		Verbose: verbose,
		NoColor: true,
	})
	if err != nil {
		ws.sendError(w, fmt.Sprintf("Failed to format results: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, content)
}

// sendError sends a JSON error response.
func (ws *WebServer) sendError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ValidateResponse{
		Success: false,
		Error:   enhanceErrorMessage(message, statusCode),
	})
}

// enhanceErrorMessage adds troubleshooting information to error messages.
func enhanceErrorMessage(message string, statusCode int) string {
	switch {
	case strings.Contains(message, "Failed to parse form data"):
		return message + "\nTroubleshooting: Upload documents as multipart/form-data using the 'files' field name"
	case strings.Contains(message, "No files uploaded"):
		return message + "\nTroubleshooting: Attach one or more .pdf, .docx or .pages.json documents"
	case statusCode == http.StatusInternalServerError:
		return message + "\nTroubleshooting: Check server logs for detailed error information"
	default:
		return message
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const maxFilenameLen = 200

// sanitizeFilename keeps the base name of an upload and drops control and
// path characters.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		switch r {
		case '<', '>', '"', '\'', '&', ':', '|', '?', '*':
			return -1
		}
		return r
	}, name)
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	if len(name) > maxFilenameLen {
		ext := filepath.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		stem := name[:maxFilenameLen-len(ext)]
		for !utf8.ValidString(stem) {
			stem = stem[:len(stem)-1]
		}
		name = stem + ext
	}
	return name
}
