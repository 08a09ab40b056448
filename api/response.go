package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

const (
	KindValidation = "validation"
	KindNotFound   = "not_found"
	KindForbidden  = "forbidden"
	KindInternal   = "internal"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError maps contract sentinels to status classes. Internal errors are
// logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contractx.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Kind: KindValidation, Message: err.Error()})
	case errors.Is(err, contractx.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Kind: KindNotFound, Message: err.Error()})
	case errors.Is(err, contractx.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Kind: KindForbidden, Message: err.Error()})
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Kind: KindInternal, Message: "internal error"})
	}
}
