package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"scribe/internal/api"
	"scribe/internal/config"
	"scribe/internal/jobs"
	"scribe/internal/logging"
	"scribe/internal/ocr"
)

// maxUploadBytes bounds a single multipart document upload.
const maxUploadBytes = 64 << 20

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	// Health stays unauthenticated so liveness probes work without the token.
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/ocr/process", authMiddleware(srv.token, srv.handleProcess))
	mux.HandleFunc("/api/ocr/batch", authMiddleware(srv.token, srv.handleBatch))
	mux.HandleFunc("/api/ocr/jobs", authMiddleware(srv.token, srv.handleJobs))
	mux.HandleFunc("/api/ocr/jobs/", authMiddleware(srv.token, srv.handleJob))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listen address, empty before start.
func (s *apiServer) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", Version: api.Version})
}

// handleProcess runs a single document synchronously. The document arrives
// either as JSON carrying a URL or as a multipart upload under the "file"
// field.
func (s *apiServer) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	params := api.BatchParams{SkipArtifact: true}
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		path, includeImages, cleanup, err := s.receiveUpload(r)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer cleanup()
		params.Input = path
		params.IncludeImages = includeImages
	} else {
		var req api.ProcessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.URL) == "" {
			s.writeError(w, http.StatusBadRequest, "url is required")
			return
		}
		params.Input = req.URL
		params.IncludeImages = req.IncludeImages
	}

	s.runBatch(w, r, params)
}

func (s *apiServer) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.URLs) == 0 {
		s.writeError(w, http.StatusBadRequest, "urls is required")
		return
	}

	s.runBatch(w, r, api.BatchParams{
		URLs:          req.URLs,
		IncludeImages: req.IncludeImages,
		SkipArtifact:  true,
	})
}

func (s *apiServer) runBatch(w http.ResponseWriter, r *http.Request, params api.BatchParams) {
	response, err := s.daemon.service.RunBatch(r.Context(), params)
	if err != nil {
		s.writeError(w, statusForError(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req api.JobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Input) == "" {
			s.writeError(w, http.StatusBadRequest, "input is required")
			return
		}
		job, err := s.daemon.submitJob(r.Context(), req)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusAccepted, api.JobResponse{Job: api.FromJob(job)})
	case http.MethodGet:
		var states []jobs.State
		for _, value := range r.URL.Query()["state"] {
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				continue
			}
			states = append(states, jobs.State(trimmed))
		}
		records, err := s.daemon.store.List(r.Context(), states...)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: api.FromJobs(records)})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/ocr/jobs/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	job, err := s.daemon.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobResponse{Job: api.FromJob(job)})
}

// receiveUpload stores a multipart document upload under a temporary directory
// that keeps the original file name, so titles and type detection see it.
func (s *apiServer) receiveUpload(r *http.Request) (string, *bool, func(), error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, nil, fmt.Errorf("parse upload: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, nil, errors.New("file field is required")
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || !ocr.SupportedFile(name) {
		return "", nil, nil, fmt.Errorf("unsupported file type: %s", header.Filename)
	}

	dir, err := os.MkdirTemp("", "scribe-upload-")
	if err != nil {
		return "", nil, nil, fmt.Errorf("stage upload: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, nil, fmt.Errorf("stage upload: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		cleanup()
		return "", nil, nil, fmt.Errorf("stage upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", nil, nil, fmt.Errorf("stage upload: %w", err)
	}

	var includeImages *bool
	if value := r.FormValue("includeImages"); value != "" {
		flag := value == "1" || strings.EqualFold(value, "true")
		includeImages = &flag
	}
	return path, includeImages, cleanup, nil
}

// statusForError maps resolution failures to 400 and everything else to 500.
// Item-level backend failures never reach here; they ride inside a successful
// batch response.
func statusForError(err error) int {
	if classified, ok := ocr.AsError(err); ok {
		switch classified.Kind {
		case ocr.KindInvalidInput, ocr.KindUnsupportedFileType, ocr.KindInvalidRequest:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
