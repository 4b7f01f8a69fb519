// Reverse-estimator endpoint: an unordered list of observed ppm peaks in,
// ranked candidate structures out.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nmrhose/nmrhose/internal/estimate"
	"github.com/nmrhose/nmrhose/pkg/errors"
)

// EstimateHandler serves the reverse-estimation operation.
type EstimateHandler struct {
	estimator *estimate.Estimator
}

// NewEstimateHandler builds an EstimateHandler over estimator.
func NewEstimateHandler(estimator *estimate.Estimator) *EstimateHandler {
	return &EstimateHandler{estimator: estimator}
}

// RegisterRoutes registers estimate routes.
func (h *EstimateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/estimate", h.Estimate)
}

type estimateRequest struct {
	Peaks     []float64 `json:"peaks"`
	Nucleus   string    `json:"nucleus"`
	Tolerance float64   `json:"tolerance"`
	MinMatch  int       `json:"min_match"`
	Cap       int       `json:"cap"`
}

type estimateCandidate struct {
	SMILES       string  `json:"smiles"`
	HOSE         string  `json:"hose"`
	MatchedPeaks int     `json:"matched_peaks"`
	Score        float64 `json:"score"`
}

type estimateResponse struct {
	Nucleus    string              `json:"nucleus"`
	Candidates []estimateCandidate `json:"candidates"`
}

// Estimate handles POST /v1/estimate.
func (h *EstimateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, errors.InvalidParam("malformed request body"))
		return
	}
	if len(req.Peaks) == 0 {
		writeAppError(w, errors.New(errors.CodeEmptyPeakList, "peaks is required"))
		return
	}
	if req.Nucleus == "" {
		req.Nucleus = "13C"
	}

	candidates, err := h.estimator.Estimate(r.Context(), req.Peaks, req.Nucleus, estimate.Options{
		Tolerance: req.Tolerance,
		MinMatch:  req.MinMatch,
		Cap:       req.Cap,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	out := make([]estimateCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, estimateCandidate{
			SMILES:       c.SMILES,
			HOSE:         c.HOSE,
			MatchedPeaks: c.MatchedPeaks,
			Score:        c.Score,
		})
	}

	writeJSON(w, http.StatusOK, estimateResponse{
		Nucleus:    req.Nucleus,
		Candidates: out,
	})
}
