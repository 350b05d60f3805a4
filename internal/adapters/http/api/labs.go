// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/decoy/internal/catalog"
	"github.com/okian/decoy/internal/domain/model"
)

// LabDependencies defines the interface for catalog read operations.
type LabDependencies interface {
	ListLabs(ctx context.Context) []catalog.Summary
	GetLab(ctx context.Context, labID string) (model.LabDefinition, error)
}

// LabsHandler handles catalog browsing requests.
type LabsHandler struct {
	deps LabDependencies
}

// NewLabsHandler creates a new labs handler.
func NewLabsHandler(deps LabDependencies) *LabsHandler {
	return &LabsHandler{deps: deps}
}

// HandleList handles GET /labs requests.
func (h *LabsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.ListLabs(r.Context()))
}

// HandleGet handles GET /labs/{labID} requests.
func (h *LabsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_lab"
	labID := r.PathValue("labID")

	lab, err := h.deps.GetLab(r.Context(), labID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, lab)
}
