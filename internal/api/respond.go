package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/finsoc/splitledger/internal/errs"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	// Existing names the conflicting entity on conflict responses, e.g. the
	// friend already associated with a transaction.
	Existing string `json:"existing,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the errs taxonomy onto HTTP status codes:
// authorization 403, not-found 404, conflict and validation 400,
// anything else 500.
func writeError(w http.ResponseWriter, err error) {
	var (
		authErr     *errs.AuthorizationError
		notFoundErr *errs.NotFoundError
		conflictErr *errs.ConflictError
		invalidErr  *errs.ValidationError
	)
	switch {
	case errors.As(err, &authErr):
		writeJSON(w, http.StatusForbidden, errorBody{Error: authErr.Error()})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorBody{Error: notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: conflictErr.Error(), Existing: conflictErr.ExistingID})
	case errors.As(err, &invalidErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: invalidErr.Error()})
	default:
		slog.Error("Internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
