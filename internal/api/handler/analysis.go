package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/skinsight/internal/api/request"
	"github.com/edvin/skinsight/internal/api/response"
	"github.com/edvin/skinsight/internal/core"
)

// Analysis handles skin analysis endpoints.
type Analysis struct {
	svc *core.AnalysisService
}

func NewAnalysis(svc *core.AnalysisService) *Analysis {
	return &Analysis{svc: svc}
}

// Create runs an analysis for the image in the path and persists the result.
func (h *Analysis) Create(w http.ResponseWriter, r *http.Request) {
	imageID, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := h.svc.Analyze(r.Context(), imageID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, analysis)
}

// GetLatest returns the most recent analysis recorded for an image.
func (h *Analysis) GetLatest(w http.ResponseWriter, r *http.Request) {
	imageID, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := h.svc.LatestByImage(r.Context(), imageID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, analysis)
}
