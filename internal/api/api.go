// Package api implements the HTTP annotation service.
//
// The service exposes the same pipeline the CLI drives:
//
//	GET  /healthz        - liveness probe
//	GET  /v1/extensions  - registered extensions with their contracts
//	POST /v1/annotate    - run the pipeline over a JSON document
//
// Annotation requests carry the document tree and run options; the
// response carries the annotated tree and the run report. Every request
// gets a uuid request id, echoed back in the X-Request-ID header and
// attached to log lines.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/extension"
	glosterrors "github.com/fustilio/glost/pkg/errors"
	"github.com/fustilio/glost/pkg/pipeline"
)

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// NewServer builds the service around a pipeline runner.
// If logger is nil, the default logger is used.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root http.Handler for mounting or testing.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe runs the service on addr until ctx is cancelled, then
// shuts down gracefully with a 10 second drain window.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("annotation service listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/extensions", s.handleListExtensions)
		r.Post("/annotate", s.handleAnnotate)
	})
	return r
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// requestID assigns a uuid to each request, stores it in the request
// context, and logs the request's outcome.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.logger.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path,
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

// RequestIDFromContext returns the request id the middleware assigned,
// or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extensionInfo is the listing shape for one registered extension.
type extensionInfo struct {
	ID           string              `json:"id"`
	Name         string              `json:"name,omitempty"`
	Dependencies []string            `json:"dependencies,omitempty"`
	Conflicts    []string            `json:"conflicts,omitempty"`
	Requires     *extension.Contract `json:"requires,omitempty"`
	Provides     *extension.Contract `json:"provides,omitempty"`
}

func (s *Server) handleListExtensions(w http.ResponseWriter, r *http.Request) {
	exts := s.runner.Registry.All()
	infos := make([]extensionInfo, len(exts))
	for i, e := range exts {
		infos[i] = extensionInfo{
			ID:           e.ID,
			Name:         e.Name,
			Dependencies: e.Dependencies,
			Conflicts:    e.Conflicts,
			Requires:     e.Requires,
			Provides:     e.Provides,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"extensions": infos})
}

// annotateRequest is the request body for POST /v1/annotate.
type annotateRequest struct {
	Document json.RawMessage  `json:"document"`
	Options  pipeline.Options `json:"options"`
}

// annotateResponse is the response body for POST /v1/annotate.
type annotateResponse struct {
	Document *doctree.Node    `json:"document"`
	Report   *pipeline.Report `json:"report"`
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req annotateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest,
			glosterrors.Wrap(glosterrors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if len(req.Document) == 0 {
		writeError(w, http.StatusBadRequest,
			glosterrors.New(glosterrors.ErrCodeInvalidDocument, "document is required"))
		return
	}

	tree, err := doctree.ReadDocument(bytes.NewReader(req.Document))
	if err != nil {
		writeError(w, http.StatusBadRequest,
			glosterrors.Wrap(glosterrors.ErrCodeInvalidDocument, err, "invalid document"))
		return
	}

	tree, report, err := s.runner.Execute(r.Context(), tree, req.Options)
	if report != nil {
		s.logger.Debug("annotate run",
			"id", RequestIDFromContext(r.Context()), "run", report.RunID,
			"applied", len(report.Applied), "errors", len(report.Errors))
	}
	if err != nil {
		// Resolution and policy failures still carry a report; surface
		// both so clients can distinguish abort reasons.
		writeJSON(w, statusFor(err), map[string]any{
			"error":  glosterrors.UserMessage(err),
			"code":   glosterrors.GetCode(err),
			"report": report,
		})
		return
	}
	writeJSON(w, http.StatusOK, annotateResponse{Document: tree, Report: report})
}

// =============================================================================
// Helpers
// =============================================================================

// statusFor maps engine error codes onto HTTP statuses.
func statusFor(err error) int {
	switch glosterrors.GetCode(err) {
	case glosterrors.ErrCodeInvalidInput, glosterrors.ErrCodeInvalidPolicy,
		glosterrors.ErrCodeInvalidDocument, glosterrors.ErrCodeInvalidExtension:
		return http.StatusBadRequest
	case glosterrors.ErrCodeCycle, glosterrors.ErrCodeMissingExtension:
		return http.StatusUnprocessableEntity
	case glosterrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{
		"error": glosterrors.UserMessage(err),
		"code":  glosterrors.GetCode(err),
	})
}

