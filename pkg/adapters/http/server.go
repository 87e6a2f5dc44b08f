package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/aretw0/screengraph"
	"github.com/aretw0/screengraph/internal/logging"
	graphviz "github.com/aretw0/screengraph/internal/presentation/graph"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes read-only inspection of a screen graph over HTTP.
type Server struct {
	Graph   *graph.Graph
	Metrics http.Handler
	Logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics serves h on /metrics, typically promhttp.HandlerFor(registry).
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the logger for request errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for g.
func NewHandler(g *graph.Graph, opts ...Option) http.Handler {
	s := &Server{Graph: g, Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Get("/graph/mermaid", s.GetMermaid)
	r.Get("/path", s.GetPath)
	r.Get("/actions", s.GetActions)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PathResponse is the body of GET /path.
type PathResponse struct {
	From  string           `json:"from"`
	To    string           `json:"to"`
	Edges []graph.EdgeView `json:"edges"`
}

// ActionsResponse is the body of GET /actions.
type ActionsResponse struct {
	From    string   `json:"from"`
	Actions []string `json:"actions"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "screengraph-http",
		"version": strings.TrimSpace(screengraph.Version),
	})
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Graph.View())
}

// GetMermaid handles the GET /graph/mermaid request. The optional current and
// visited (comma separated) parameters highlight nodes.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	overlay := graphviz.Overlay{Current: r.URL.Query().Get("current")}
	if v := r.URL.Query().Get("visited"); v != "" {
		overlay.Visited = strings.Split(v, ",")
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graphviz.GenerateMermaid(s.Graph, &overlay))
}

// GetPath handles the GET /path request. Query parameters other than from and
// to override user state fields.
func (s *Server) GetPath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" {
		from = s.Graph.InitialScreen()
	}
	if to == "" {
		s.fail(w, http.StatusBadRequest, errors.New("missing 'to' parameter"))
		return
	}

	state, err := s.Graph.StateWith(overrides(q, "from", "to"))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	path, err := s.Graph.FindPath(from, to, state)
	if err != nil {
		s.fail(w, status(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, PathResponse{From: from, To: to, Edges: graph.EdgeViews(path)})
}

// GetActions handles the GET /actions request.
func (s *Server) GetActions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := q.Get("from")
	if from == "" {
		from = s.Graph.InitialScreen()
	}

	state, err := s.Graph.StateWith(overrides(q, "from"))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	actions, err := s.Graph.ReachableActions(from, state)
	if err != nil {
		s.fail(w, status(err), err)
		return
	}
	if actions == nil {
		actions = []string{}
	}
	s.writeJSON(w, http.StatusOK, ActionsResponse{From: from, Actions: actions})
}

func overrides(q map[string][]string, reserved ...string) map[string]string {
	out := make(map[string]string)
	for k, v := range q {
		if len(v) == 0 || slices.Contains(reserved, k) {
			continue
		}
		out[k] = v[0]
	}
	return out
}

func status(err error) int {
	switch {
	case errors.Is(err, domain.ErrPathNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownScreen), errors.Is(err, domain.ErrUndeclaredField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}
