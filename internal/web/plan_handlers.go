package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evcraddock/field-visits/internal/plan"
)

const dateLayout = "2006-01-02"

func (s *Server) today() string {
	return s.now().Format(dateLayout)
}

func (s *Server) apiAddPlan(w http.ResponseWriter, r *http.Request) {
	var p plan.Plan
	if !decodeJSON(w, r, &p) {
		return
	}
	if p.UserID == "" {
		p.UserID = s.actingUser(r)
	}
	if p.Date == "" {
		p.Date = s.today()
	}

	created, err := s.plans.Repository().Add(r.Context(), &p)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, created, http.StatusCreated)
}

// apiListPlans lists stored plans for ?date= or the inclusive ?from=&to=
// range. With neither, today is used.
func (s *Server) apiListPlans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	user := s.actingUser(r)
	from, to := q.Get("from"), q.Get("to")

	var (
		plans []*plan.Plan
		err   error
	)
	switch {
	case from != "" || to != "":
		if from == "" {
			from = to
		}
		if to == "" {
			to = from
		}
		var dates []string
		dates, err = plan.DateRange(from, to)
		if err == nil {
			plans, err = s.plans.Repository().ListByRange(r.Context(), user, dates)
		}
	default:
		date := q.Get("date")
		if date == "" {
			date = s.today()
		}
		plans, err = s.plans.Repository().ListByDate(r.Context(), user, date)
	}
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, plans, http.StatusOK)
}

// apiTodayPlans returns stored plans for the date (default today) with the
// day's ad-hoc entries appended.
func (s *Server) apiTodayPlans(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.today()
	}
	plans, err := s.plans.Today(r.Context(), s.actingUser(r), date)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, plans, http.StatusOK)
}

type adHocRequest struct {
	Date         string `json:"date"`
	CustomerName string `json:"customerName"`
}

type adHocResponse struct {
	Date  string   `json:"date"`
	Names []string `json:"names"`
}

func (s *Server) apiAddAdHoc(w http.ResponseWriter, r *http.Request) {
	var req adHocRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date == "" {
		req.Date = s.today()
	}

	names, err := s.plans.Sessions().Add(r.Context(), s.actingUser(r), req.Date, req.CustomerName)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, adHocResponse{Date: req.Date, Names: names}, http.StatusCreated)
}

type statusRequest struct {
	Status plan.Status `json:"status"`
}

func (s *Server) apiUpdatePlanStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := s.plans.Repository().UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, p, http.StatusOK)
}
