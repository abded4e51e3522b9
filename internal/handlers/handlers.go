// Package handlers contains the HTTP layer: thin adapters that decode
// requests, call services and write JSON.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/services"
)

// decodeJSON decodes the body into dst, rejecting unknown junk sizes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}

// pathID parses the {id} path value as a uint.
func pathID(r *http.Request) (uint, bool) {
	id64, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// writeContractError maps contract lifecycle errors onto statuses. Any
// unknown token yields the same 404 body as a malformed one.
func writeContractError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", ve.Violations)
	case errors.Is(err, services.ErrContractNotFound):
		httpx.JSONError(w, http.StatusNotFound, "contract_not_found", nil)
	case errors.Is(err, services.ErrContractExpired):
		httpx.JSONError(w, http.StatusGone, "contract_expired", nil)
	case errors.Is(err, services.ErrAlreadySigned):
		httpx.JSONError(w, http.StatusConflict, "contract_already_signed", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
