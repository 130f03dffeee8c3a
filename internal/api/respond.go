package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yegors/gateops/internal/core"
)

// errorResponse is the JSON envelope for failed requests.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// respondJSON writes a JSON response with the given status.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

// respondError maps an engine error to an HTTP status plus its taxonomy kind,
// so every error kind surfaces as a distinct, actionable message.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := ""
	switch {
	case errors.Is(err, core.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrDuplicateKey):
		status, kind = http.StatusConflict, "duplicate_key"
	case errors.Is(err, core.ErrAlreadyAssigned):
		status, kind = http.StatusConflict, "already_assigned"
	case errors.Is(err, core.ErrIncompatibleGate):
		status, kind = http.StatusUnprocessableEntity, "incompatible_gate"
	case errors.Is(err, core.ErrMissingFeeRule):
		status, kind = http.StatusUnprocessableEntity, "missing_fee_rule"
	case errors.Is(err, core.ErrValidation):
		status, kind = http.StatusBadRequest, "validation"
	}
	h.respondJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
