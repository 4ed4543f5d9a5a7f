package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/trustmind/internal/service"
)

type EpisodicHandler struct {
	svc *service.TrustService
}

func NewEpisodicHandler(svc *service.TrustService) *EpisodicHandler {
	return &EpisodicHandler{svc: svc}
}

// Full pools every known episode into an unregistered network.
func (h *EpisodicHandler) Full(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ConsolidateFull(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to consolidate episodes")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *EpisodicHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Save(r.Context()); err != nil {
		writeServiceError(w, err, "failed to save beliefs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": len(h.svc.Informants())})
}
