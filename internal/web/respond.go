package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/evcraddock/field-visits/internal/customer"
	"github.com/evcraddock/field-visits/internal/logging"
	"github.com/evcraddock/field-visits/internal/plan"
	"github.com/evcraddock/field-visits/internal/visit"
)

// userHeader names the acting user when no user_id query parameter is given.
const userHeader = "X-User-ID"

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// apiFail maps a domain error onto a status code. Unrecognized errors are
// logged and reported as 500 without detail.
func apiFail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, visit.ErrInvalid),
		errors.Is(err, plan.ErrInvalid),
		errors.Is(err, customer.ErrInvalid):
		apiError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, plan.ErrNotFound),
		errors.Is(err, customer.ErrNotFound):
		apiError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, customer.ErrDuplicateCode):
		apiError(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("request failed",
			"request_id", logging.GetRequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		apiError(w, "internal error", http.StatusInternalServerError)
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// actingUser resolves the user a request acts for: the user_id query
// parameter, then the X-User-ID header, then the configured default.
func (s *Server) actingUser(r *http.Request) string {
	if u := strings.TrimSpace(r.URL.Query().Get("user_id")); u != "" {
		return u
	}
	if u := strings.TrimSpace(r.Header.Get(userHeader)); u != "" {
		return u
	}
	return s.defaultUser
}

// intParam parses an optional non-negative integer query parameter.
func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}
