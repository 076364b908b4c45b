package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evcraddock/field-visits/internal/customer"
)

func (s *Server) apiListCustomers(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	customers, err := s.customers.List(r.Context(), s.actingUser(r), limit)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, customers, http.StatusOK)
}

func (s *Server) apiListCustomersLite(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	lite, err := s.customers.ListLite(r.Context(), s.actingUser(r), limit)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, lite, http.StatusOK)
}

func (s *Server) apiGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.customers.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, c, http.StatusOK)
}

// apiAddCustomer stores a customer. mode=strict rejects existing codes,
// mode=minimal keeps only code and name, and the default merges into any
// existing record.
func (s *Server) apiAddCustomer(w http.ResponseWriter, r *http.Request) {
	var c customer.Customer
	if !decodeJSON(w, r, &c) {
		return
	}
	if c.UserID == "" {
		c.UserID = s.actingUser(r)
	}

	var (
		out *customer.Customer
		err error
	)
	switch mode := r.URL.Query().Get("mode"); mode {
	case "strict":
		out, err = s.customers.Add(r.Context(), &c)
	case "minimal":
		out, err = s.customers.AddMinimal(r.Context(), c.UserID, c.Code, c.Name)
	case "", "upsert":
		out, err = s.customers.Upsert(r.Context(), &c)
	default:
		apiError(w, "mode must be strict, minimal or upsert", http.StatusBadRequest)
		return
	}
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, out, http.StatusCreated)
}
