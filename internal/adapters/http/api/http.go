// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/decoy/internal/app"
	"github.com/okian/decoy/internal/catalog"
	"github.com/okian/decoy/internal/domain/model"
	"github.com/okian/decoy/internal/session"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	ListLabs(ctx context.Context) []catalog.Summary
	GetLab(ctx context.Context, labID string) (model.LabDefinition, error)

	StartSession(ctx context.Context, labID string) (app.StartResult, error)
	AppendEvents(ctx context.Context, sessionID string, raw []map[string]any) error
	CompleteSession(ctx context.Context, sessionID string) (app.Completion, error)
	GetSession(ctx context.Context, sessionID string) (session.Snapshot, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	labsHandler     *LabsHandler
	sessionsHandler *SessionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		labsHandler:     NewLabsHandler(deps),
		sessionsHandler: NewSessionsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /labs", MetricsMiddleware(s.labsHandler.HandleList, "labs"))
	mux.HandleFunc("GET /labs/{labID}", MetricsMiddleware(s.labsHandler.HandleGet, "lab"))
	mux.HandleFunc("POST /labs/{labID}/sessions", MetricsMiddleware(s.sessionsHandler.HandleStart, "session_start"))
	mux.HandleFunc("GET /sessions/{sessionID}", MetricsMiddleware(s.sessionsHandler.HandleGet, "session_get"))
	mux.HandleFunc("POST /sessions/{sessionID}/events", MetricsMiddleware(s.sessionsHandler.HandleEvents, "session_events"))
	mux.HandleFunc("POST /sessions/{sessionID}/complete", MetricsMiddleware(s.sessionsHandler.HandleComplete, "session_complete"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
