package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/evcraddock/field-visits/internal/dashboard"
	"github.com/evcraddock/field-visits/internal/visit"
)

// visitList is the dashboard listing response.
type visitList struct {
	Visits []*visit.Visit   `json:"visits"`
	Stats  dashboard.Stats `json:"stats"`
}

func (s *Server) apiAddVisit(w http.ResponseWriter, r *http.Request) {
	var v visit.Visit
	if !decodeJSON(w, r, &v) {
		return
	}
	if v.UserID == "" {
		v.UserID = s.actingUser(r)
	}

	created, err := s.visits.Add(r.Context(), &v)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, created, http.StatusCreated)
}

func (s *Server) apiListVisits(w http.ResponseWriter, r *http.Request) {
	visits, ok := s.filteredVisits(w, r)
	if !ok {
		return
	}
	apiJSON(w, visitList{Visits: visits, Stats: dashboard.Summarize(visits)}, http.StatusOK)
}

func (s *Server) apiExportCSV(w http.ResponseWriter, r *http.Request) {
	visits, ok := s.filteredVisits(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dashboard.CSVFilename))
	if err := dashboard.WriteCSV(w, visits); err != nil {
		slog.Error("writing csv export", "error", err)
	}
}

func (s *Server) apiExportXLSX(w http.ResponseWriter, r *http.Request) {
	visits, ok := s.filteredVisits(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dashboard.XLSXFilename))
	if err := dashboard.WriteXLSX(w, visits); err != nil {
		slog.Error("writing xlsx export", "error", err)
	}
}

func (s *Server) apiVisitMap(w http.ResponseWriter, r *http.Request) {
	visits, ok := s.filteredVisits(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	data, err := dashboard.FeatureCollection(visits).MarshalJSON()
	if err != nil {
		apiFail(w, r, fmt.Errorf("encoding geojson: %w", err))
		return
	}
	if _, err := w.Write(data); err != nil {
		slog.Error("writing geojson", "error", err)
	}
}

// filteredVisits loads the dashboard list and applies the query filters.
// The user filter is pushed down to the store.
func (s *Server) filteredVisits(w http.ResponseWriter, r *http.Request) ([]*visit.Visit, bool) {
	q := r.URL.Query()
	limit, err := intParam(r, "limit")
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	f := dashboard.Filter{
		Search:      q.Get("q"),
		Temperature: q.Get("temperature"),
		From:        q.Get("from"),
		To:          q.Get("to"),
		UserID:      q.Get("user"),
	}

	visits, err := s.visits.List(r.Context(), visit.ListOptions{UserID: f.UserID, Limit: limit})
	if err != nil {
		apiFail(w, r, err)
		return nil, false
	}
	return f.Apply(visits), true
}
