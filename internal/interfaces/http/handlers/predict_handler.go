// Forward-lookup endpoint: SMILES plus nucleus in, per-atom predicted
// shifts out.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nmrhose/nmrhose/internal/lookup"
	"github.com/nmrhose/nmrhose/pkg/errors"
)

// PredictHandler serves the forward-lookup operation.
type PredictHandler struct {
	lookuper *lookup.Lookuper
}

// NewPredictHandler builds a PredictHandler over lookuper.
func NewPredictHandler(lookuper *lookup.Lookuper) *PredictHandler {
	return &PredictHandler{lookuper: lookuper}
}

// RegisterRoutes registers predict routes.
func (h *PredictHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/predict", h.Predict)
}

type predictRequest struct {
	SMILES  string `json:"smiles"`
	Nucleus string `json:"nucleus"`
}

type predictedShift struct {
	AtomIndex     int     `json:"atom_index"`
	Element       string  `json:"element"`
	Shift         float64 `json:"shift"`
	HOSE          string  `json:"hose"`
	SourceSMILES  string  `json:"source_smiles"`
	FallbackRound int     `json:"fallback_round"`
}

type predictResponse struct {
	SMILES  string           `json:"smiles"`
	Nucleus string           `json:"nucleus"`
	Shifts  []predictedShift `json:"shifts"`
}

// Predict handles POST /v1/predict.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, errors.InvalidParam("malformed request body"))
		return
	}
	if req.SMILES == "" {
		writeAppError(w, errors.InvalidParam("smiles is required"))
		return
	}
	if req.Nucleus == "" {
		req.Nucleus = "13C"
	}

	results, err := h.lookuper.Lookup(r.Context(), req.SMILES, req.Nucleus)
	if err != nil {
		writeAppError(w, err)
		return
	}

	shifts := make([]predictedShift, 0, len(results))
	for _, res := range results {
		shifts = append(shifts, predictedShift{
			AtomIndex:     res.AtomIndex,
			Element:       res.Element,
			Shift:         res.Shift,
			HOSE:          res.HOSE,
			SourceSMILES:  res.SourceSMILES,
			FallbackRound: res.FallbackRound,
		})
	}

	writeJSON(w, http.StatusOK, predictResponse{
		SMILES:  req.SMILES,
		Nucleus: req.Nucleus,
		Shifts:  shifts,
	})
}
