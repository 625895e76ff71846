package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"bidding-service/internal/domain/shared"

	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error kind onto an HTTP status
func statusFor(kind shared.Kind) int {
	switch kind {
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindPermission:
		return http.StatusForbidden
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindInvalidTransition, shared.KindDuplicate, shared.KindState, shared.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var domainErr *shared.Error
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	status := statusFor(domainErr.Kind)
	logger.Debug().Err(err).Int("status", status).Str("kind", string(domainErr.Kind)).Msg("Request rejected")
	writeJSON(w, status, ErrorResponse{
		Error: domainErr.Message,
		Kind:  string(domainErr.Kind),
		Code:  domainErr.Code,
	})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return shared.Validation("invalid json: %v", err)
	}
	return nil
}
