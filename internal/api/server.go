// Package api exposes the module cache and resolver results over HTTP for a
// host UI or external tooling.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/modstack/modstack/pkg/errors"
	"github.com/modstack/modstack/pkg/refresh"
	"github.com/modstack/modstack/pkg/render"
	"github.com/modstack/modstack/pkg/resolve"
)

// Server serves read-only JSON views of the resolver state.
type Server struct {
	Runner *refresh.Runner
	Logger *log.Logger
}

// NewServer creates an API server backed by a refresh runner.
func NewServer(runner *refresh.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{Runner: runner, Logger: logger}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/modules", s.handleModules)
		r.Get("/modules/{externalID}", s.handleModule)
		r.Get("/modules/{externalID}/validation", s.handleValidation)
		r.Get("/order", s.handleOrder)
		r.Get("/params", s.handleParams)
		r.Get("/graph.dot", s.handleGraphDOT)
		r.Get("/graph.svg", s.handleGraphSVG)
	})
	r.Get("/healthz", s.handleHealth)

	return r
}

// logRequests logs each request with its duration and status.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"modules": s.Runner.Modules.All(),
	})
}

func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	externalID := chi.URLParam(r, "externalID")
	if err := apperrors.ValidateModuleID(externalID); err != nil {
		writeError(w, err)
		return
	}

	rec, ok := s.Runner.Modules.LookupExternal(externalID)
	if !ok {
		writeError(w, apperrors.New(apperrors.ErrCodeNotFound, "module not found: %s", externalID))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	externalID := chi.URLParam(r, "externalID")
	if err := apperrors.ValidateModuleID(externalID); err != nil {
		writeError(w, err)
		return
	}

	// Validation lookups never fail: unknown modules report empty findings.
	v := resolve.ValidationFor(s.Runner.Modules, externalID)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	profile := s.Runner.ActiveProfile()
	hint, err := s.Runner.Store.Get(r.Context(), profile.ID)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "load order for profile %s", profile.ID))
		return
	}

	res := resolve.Resolve(s.Runner.Modules, hint)
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":    profile,
		"ordered":    res.Ordered,
		"validation": res.Validation,
	})
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	gameMode := r.URL.Query().Get("mode")
	if gameMode == "" {
		gameMode = "singleplayer"
	}

	profile := s.Runner.ActiveProfile()
	params, err := s.Runner.LaunchParams(r.Context(), profile.ID, gameMode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"params": params})
}

func (s *Server) handleGraphDOT(w http.ResponseWriter, r *http.Request) {
	dot := render.ToDOT(s.Runner.Modules, render.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	dot := render.ToDOT(s.Runner.Modules, render.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
	svg, err := render.RenderSVG(dot)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "render graph"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string         `json:"error"`
	Code  apperrors.Code `json:"code"`
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{
		Error: apperrors.UserMessage(err),
		Code:  code,
	})
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeNotFoundProfile, apperrors.ErrCodeNotFoundPreferences:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidPath, apperrors.ErrCodeInvalidGameMode:
		return http.StatusBadRequest
	case apperrors.ErrCodeDiscoveryIncomplete:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
