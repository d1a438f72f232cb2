package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/courier-chat/courier/pkg/api"
	"github.com/courier-chat/courier/pkg/observability"
	"github.com/courier-chat/courier/pkg/storage"
)

// WriteError writes a JSON error response using the ErrorResponse envelope.
// It sets the Content-Type header and writes the HTTP status carried by the
// APIError.
func WriteError(w http.ResponseWriter, apiErr *api.APIError) {
	if apiErr.Status == http.StatusUnauthorized {
		observability.UnauthorizedTotal.Inc()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}

// WriteErrorFrom maps an arbitrary error to the envelope and writes it.
//
// Typed *api.APIError values (including guard failures) pass through as-is.
// Store sentinels map to 404/409. Anything else is an infrastructure fault
// and becomes a 500 with a generic message: an unreachable database is never
// reported as Unauthorized, and internals never leak to the client.
func WriteErrorFrom(w http.ResponseWriter, err error) {
	WriteError(w, errorFor(err))
}

func errorFor(err error) *api.APIError {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, storage.ErrNotFound):
		return api.NewNotFoundError("Not Found")
	case errors.Is(err, storage.ErrConflict):
		return api.NewConflictError("Already exists")
	default:
		return api.NewServerError("Internal Server Error")
	}
}
