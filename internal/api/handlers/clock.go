package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/trustmind/internal/service"
)

type ClockHandler struct {
	svc *service.TrustService
}

func NewClockHandler(svc *service.TrustService) *ClockHandler {
	return &ClockHandler{svc: svc}
}

type clockResponse struct {
	Time int `json:"time"`
}

func (h *ClockHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, clockResponse{Time: h.svc.Now()})
}

func (h *ClockHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetClock(r.Context()); err != nil {
		writeServiceError(w, err, "failed to reset clock")
		return
	}
	writeJSON(w, http.StatusOK, clockResponse{Time: 0})
}
