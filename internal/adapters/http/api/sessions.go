// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/decoy/internal/app"
	"github.com/okian/decoy/internal/catalog"
	"github.com/okian/decoy/internal/session"
)

// SessionDependencies defines the interface for session lifecycle operations.
type SessionDependencies interface {
	StartSession(ctx context.Context, labID string) (app.StartResult, error)
	AppendEvents(ctx context.Context, sessionID string, raw []map[string]any) error
	CompleteSession(ctx context.Context, sessionID string) (app.Completion, error)
	GetSession(ctx context.Context, sessionID string) (session.Snapshot, error)
}

// SessionsHandler handles session lifecycle requests.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// eventsRequest mirrors the ingestion contract: a batch of loosely-typed
// events. Entries are kept as raw maps so the store can apply its lenient
// per-entry normalization instead of failing the whole batch on one bad
// field.
type eventsRequest struct {
	Events []map[string]any `json:"events"`
}

// HandleStart handles POST /labs/{labID}/sessions requests.
func (h *SessionsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_session"
	labID := r.PathValue("labID")

	res, err := h.deps.StartSession(r.Context(), labID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandleEvents handles POST /sessions/{sessionID}/events requests.
func (h *SessionsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.append_events"
	sessionID := r.PathValue("sessionID")

	var req eventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Events == nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	if err := h.deps.AppendEvents(r.Context(), sessionID, req.Events); err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		case errors.Is(err, session.ErrInvalidBatch):
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleComplete handles POST /sessions/{sessionID}/complete requests.
func (h *SessionsHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	const op = "api.complete_session"
	sessionID := r.PathValue("sessionID")

	res, err := h.deps.CompleteSession(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		case errors.Is(err, app.ErrLabGone):
			writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleGet handles GET /sessions/{sessionID} requests (diagnostics).
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	sessionID := r.PathValue("sessionID")

	snap, err := h.deps.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
