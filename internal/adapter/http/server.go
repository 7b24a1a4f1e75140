// Package http exposes the kiosk/diagnostics HTTP facade: a thin JSON
// layer over the session, cascade, and submission components for
// station kiosks, plus health and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viperioribus/shorewatch/internal/adapter/api"
	"github.com/viperioribus/shorewatch/internal/cascade"
	"github.com/viperioribus/shorewatch/internal/domain"
	"github.com/viperioribus/shorewatch/internal/session"
	"github.com/viperioribus/shorewatch/internal/submit"
)

// ReadinessChecker reports whether the client is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReadinessFunc adapts a function to ReadinessChecker.
type ReadinessFunc func(ctx context.Context) error

func (f ReadinessFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

// Server is the kiosk HTTP server.
type Server struct {
	httpServer *http.Server
	client     *api.Client
	directory  *api.Authed
	session    *session.Session
	cascade    *cascade.Controller
	pipeline   *submit.Pipeline
	ready      ReadinessChecker
	logger     *slog.Logger
}

// NewServer wires the kiosk routes. The server holds no logic of its
// own; every handler delegates to the injected components.
func NewServer(addr string, client *api.Client, directory *api.Authed, sess *session.Session,
	ctrl *cascade.Controller, pipe *submit.Pipeline, ready ReadinessChecker, logger *slog.Logger) *Server {

	s := &Server{
		client:    client,
		directory: directory,
		session:   sess,
		cascade:   ctrl,
		pipeline:  pipe,
		ready:     ready,
		logger:    logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/session/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/session/logout", s.handleLogout).Methods(http.MethodPost)

	r.HandleFunc("/beaches", s.handleBeaches).Methods(http.MethodGet)
	r.HandleFunc("/selection", s.handleSelection).Methods(http.MethodGet)
	r.HandleFunc("/selection/beach", s.handleChooseBeach).Methods(http.MethodPut)
	r.HandleFunc("/selection/post", s.handleChoosePost).Methods(http.MethodPut)
	r.HandleFunc("/selection/retry", s.handleRetry).Methods(http.MethodPost)

	r.HandleFunc("/reports/incident", s.handleIncident).Methods(http.MethodPost)
	r.HandleFunc("/reports/environment", s.handleEnvironment).Methods(http.MethodPost)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("kiosk server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := s.client.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.session.SetToken(r.Context(), token); err != nil {
		s.logger.Error("persist credential failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("could not persist credential"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Clear(r.Context()); err != nil {
		s.logger.Error("clear session failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("could not clear session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBeaches(w http.ResponseWriter, r *http.Request) {
	beaches, err := s.directory.Beaches(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, beaches)
}

func (s *Server) handleSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, snapshotBody(s.cascade.Snapshot()))
}

func (s *Server) handleChooseBeach(w http.ResponseWriter, r *http.Request) {
	var beach domain.Beach
	if !decodeBody(w, r, &beach) {
		return
	}
	if beach.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("beach id is required"))
		return
	}

	// The post fetch outlives the request; kiosks poll GET /selection.
	if err := s.cascade.ChooseBeach(context.WithoutCancel(r.Context()), beach); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, snapshotBody(s.cascade.Snapshot()))
}

func (s *Server) handleChoosePost(w http.ResponseWriter, r *http.Request) {
	var post domain.BeachPost
	if !decodeBody(w, r, &post) {
		return
	}

	if err := s.cascade.ChoosePost(r.Context(), post); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotBody(s.cascade.Snapshot()))
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	if err := s.cascade.Retry(context.WithoutCancel(r.Context())); err != nil {
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusAccepted, snapshotBody(s.cascade.Snapshot()))
}

func (s *Server) handleIncident(w http.ResponseWriter, r *http.Request) {
	var req incidentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	form, err := req.toReport(s.resolvedName(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	s.writeResult(w, s.pipeline.Submit(r.Context(), form))
}

func (s *Server) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	var req environmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	form, err := req.toReport(s.resolvedName(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	s.writeResult(w, s.pipeline.Submit(r.Context(), form))
}

// resolvedName snapshots the "{beach} - {post}" label for a submission.
func (s *Server) resolvedName(ctx context.Context) string {
	return s.session.LoadSelection(ctx).ResolvedName()
}

// writeError maps component errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody("not authenticated"))
	case errors.Is(err, cascade.ErrPostMismatch), errors.Is(err, cascade.ErrNotReady):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		var rejection *domain.RejectionError
		if errors.As(err, &rejection) {
			writeJSON(w, http.StatusBadGateway, errorBody(rejection.Message))
			return
		}
		s.logger.Error("kiosk request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// writeResult maps a submission outcome onto an HTTP response.
func (s *Server) writeResult(w http.ResponseWriter, result domain.SubmissionResult) {
	body := map[string]any{"status": result.Status.String()}
	if len(result.FieldErrors) > 0 {
		body["field_errors"] = result.FieldErrors
	}
	if result.Message != "" {
		body["message"] = result.Message
	}

	var status int
	switch result.Status {
	case domain.StatusSuccess:
		status = http.StatusOK
	case domain.StatusValidationFailed:
		status = http.StatusUnprocessableEntity
	case domain.StatusAuthFailed:
		status = http.StatusUnauthorized
	case domain.StatusRejected:
		status = http.StatusConflict
	default:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func snapshotBody(snap cascade.Snapshot) map[string]any {
	body := map[string]any{"state": snap.State.String()}
	if snap.Beach != nil {
		body["beach"] = snap.Beach
	}
	if snap.Posts != nil {
		body["posts"] = snap.Posts
	}
	if snap.Post != nil {
		body["post"] = snap.Post
	}
	if snap.Err != nil {
		body["error"] = snap.Err.Error()
	}
	return body
}
