package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Harshitk-cp/trustmind/internal/domain"
	"github.com/Harshitk-cp/trustmind/internal/service"
	"go.uber.org/zap"
)

const defaultSimilarLimit = 3

type InformantHandler struct {
	svc    *service.TrustService
	logger *zap.Logger
}

func NewInformantHandler(svc *service.TrustService, logger *zap.Logger) *InformantHandler {
	return &InformantHandler{svc: svc, logger: logger}
}

type familiarizeRequest struct {
	Trials []service.Trial `json:"trials"`
}

type informantResponse struct {
	Index     int                   `json:"index"`
	Informant service.InformantView `json:"informant"`
}

func (h *InformantHandler) Familiarize(w http.ResponseWriter, r *http.Request) {
	var req familiarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	idx, err := h.svc.Familiarize(r.Context(), req.Trials)
	if err != nil {
		writeServiceError(w, err, "failed to familiarize informant")
		return
	}
	h.writeCreated(w, idx)
}

func (h *InformantHandler) RegisterUnknown(w http.ResponseWriter, r *http.Request) {
	idx, err := h.svc.RegisterUnknown(r.Context())
	if err != nil {
		h.logger.Warn("episodic memory not created", zap.Error(err))
		writeServiceError(w, err, "failed to create episodic memory")
		return
	}
	h.writeCreated(w, idx)
}

func (h *InformantHandler) writeCreated(w http.ResponseWriter, idx int) {
	view, err := h.svc.Informant(idx)
	if err != nil {
		writeServiceError(w, err, "failed to read informant")
		return
	}
	writeJSON(w, http.StatusCreated, informantResponse{Index: idx, Informant: view})
}

type listInformantsResponse struct {
	Informants []service.InformantView `json:"informants"`
	Count      int                     `json:"count"`
	Time       int                     `json:"time"`
}

func (h *InformantHandler) List(w http.ResponseWriter, r *http.Request) {
	views := h.svc.Informants()
	writeJSON(w, http.StatusOK, listInformantsResponse{Informants: views, Count: len(views), Time: h.svc.Now()})
}

func (h *InformantHandler) Get(w http.ResponseWriter, r *http.Request) {
	idx, ok := informantIndex(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid informant index")
		return
	}
	view, err := h.svc.Informant(idx)
	if err != nil {
		writeServiceError(w, err, "failed to read informant")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type decideRequest struct {
	Hint string `json:"hint"`
}

type decideResponse struct {
	Choice       domain.Side `json:"choice"`
	ProbabilityA float64     `json:"probability_a"`
	ProbabilityB float64     `json:"probability_b"`
}

func (h *InformantHandler) Decide(w http.ResponseWriter, r *http.Request) {
	idx, ok := informantIndex(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid informant index")
		return
	}
	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hint, err := domain.ParseSide(req.Hint)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	d, err := h.svc.Decide(r.Context(), idx, hint)
	if err != nil {
		writeServiceError(w, err, "failed to decide")
		return
	}
	writeJSON(w, http.StatusOK, decideResponse{Choice: d.Action, ProbabilityA: d.Posterior.A, ProbabilityB: d.Posterior.B})
}

type outcomeRequest struct {
	Hint   string `json:"hint"`
	Choice string `json:"choice"`
	Found  bool   `json:"found"`
}

func (h *InformantHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	idx, ok := informantIndex(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid informant index")
		return
	}
	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.RecordOutcome(r.Context(), service.OutcomeInput{
		Informant: idx,
		Hint:      domain.Side(req.Hint),
		Choice:    domain.Side(req.Choice),
		Found:     req.Found,
	})
	if err != nil {
		writeServiceError(w, err, "failed to record outcome")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type estimateRequest struct {
	Sticker string `json:"sticker"`
}

type estimateResponse struct {
	InformantBelief domain.Side `json:"informant_belief"`
	InformantAction domain.Side `json:"informant_action"`
}

func (h *InformantHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	idx, ok := informantIndex(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid informant index")
		return
	}
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sticker, err := domain.ParseSide(req.Sticker)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	est, err := h.svc.Estimate(r.Context(), idx, sticker)
	if err != nil {
		writeServiceError(w, err, "failed to estimate belief")
		return
	}
	writeJSON(w, http.StatusOK, estimateResponse{InformantBelief: est.InformantBelief, InformantAction: est.InformantAction})
}

type similarResponse struct {
	Similar []domain.ProfileWithDistance `json:"similar"`
	Count   int                          `json:"count"`
}

func (h *InformantHandler) Similar(w http.ResponseWriter, r *http.Request) {
	idx, ok := informantIndex(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid informant index")
		return
	}

	k := defaultSimilarLimit
	if kStr := r.URL.Query().Get("k"); kStr != "" {
		n, err := strconv.Atoi(kStr)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid k")
			return
		}
		k = n
	}

	similar, err := h.svc.SimilarInformants(r.Context(), idx, k)
	if err != nil {
		writeServiceError(w, err, "failed to find similar informants")
		return
	}
	if similar == nil {
		similar = []domain.ProfileWithDistance{}
	}
	writeJSON(w, http.StatusOK, similarResponse{Similar: similar, Count: len(similar)})
}
