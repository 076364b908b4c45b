package web

import (
	"net/http"
)

// apiHistory returns the acting user's reconciled visit history.
func (s *Server) apiHistory(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days")
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	user := s.actingUser(r)
	if user == "" {
		apiError(w, "user is required", http.StatusBadRequest)
		return
	}

	apiJSON(w, s.history.Load(r.Context(), user, days), http.StatusOK)
}
