package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evcraddock/field-visits/internal/customer"
	"github.com/evcraddock/field-visits/internal/dashboard"
	"github.com/evcraddock/field-visits/internal/history"
	"github.com/evcraddock/field-visits/internal/plan"
	"github.com/evcraddock/field-visits/internal/visit"
)

func jsonHandler(t *testing.T, check func(r *http.Request), resp any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode: %v", err)
		}
	}
}

func TestHistory(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.URL.Path != "/api/history" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("days") != "7" {
			t.Errorf("days = %q, want 7", r.URL.Query().Get("days"))
		}
		if r.Header.Get(UserHeader) != "U1" {
			t.Errorf("user header = %q, want U1", r.Header.Get(UserHeader))
		}
	}, history.Result{
		Visits: []*visit.Visit{{ID: "a", CustomerName: "Toko"}},
		Days:   []visit.DayBucket{{Date: "2024-01-01"}},
	}))
	defer srv.Close()

	res, err := New(srv.URL, "U1").History(7)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(res.Visits) != 1 || res.Visits[0].CustomerName != "Toko" {
		t.Errorf("visits = %+v", res.Visits)
	}
}

func TestNoUserHeaderWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if _, ok := r.Header[UserHeader]; ok {
			t.Error("expected no user header")
		}
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want none", r.URL.RawQuery)
		}
	}, history.Result{}))
	defer srv.Close()

	if _, err := New(srv.URL, "").History(0); err != nil {
		t.Fatalf("history: %v", err)
	}
}

func TestAddVisit(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/visits" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var v visit.Visit
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if v.CustomerName != "Toko A" {
			t.Errorf("customerName = %q", v.CustomerName)
		}
	}, visit.Visit{ID: "new", CustomerName: "Toko A"}))
	defer srv.Close()

	v, err := New(srv.URL, "U1").AddVisit(&visit.Visit{CustomerName: "Toko A", Temperature: visit.Hot})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if v.ID != "new" {
		t.Errorf("id = %q", v.ID)
	}
}

func TestListVisitsQuery(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "toko" || q.Get("temperature") != "hot" || q.Get("from") != "2024-01-01" ||
			q.Get("user") != "U2" || q.Get("limit") != "5" || q.Has("to") {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
	}, VisitList{Visits: []*visit.Visit{{ID: "a"}}, Stats: dashboard.Stats{Total: 1}}))
	defer srv.Close()

	list, err := New(srv.URL, "").ListVisits(VisitFilter{
		Filter: dashboard.Filter{Search: "toko", Temperature: "hot", From: "2024-01-01", UserID: "U2"},
		Limit:  5,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Stats.Total != 1 || len(list.Visits) != 1 {
		t.Errorf("list = %+v", list)
	}
}

func TestExportVisits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/visits/export.csv" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "id,date\n\"a\",\"b\"")
	}))
	defer srv.Close()

	var buf bytes.Buffer
	if err := New(srv.URL, "").ExportVisits("csv", VisitFilter{}, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if buf.String() != "id,date\n\"a\",\"b\"" {
		t.Errorf("body = %q", buf.String())
	}

	if err := New(srv.URL, "").ExportVisits("pdf", VisitFilter{}, &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestPlans(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/plans", jsonHandler(t, nil, plan.Plan{ID: "p1", CustomerName: "A"}))
	mux.HandleFunc("GET /api/plans", jsonHandler(t, func(r *http.Request) {
		if r.URL.Query().Get("from") != "2024-01-01" || r.URL.Query().Get("to") != "2024-01-07" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
	}, []*plan.Plan{{ID: "p1"}, {ID: "p2"}}))
	mux.HandleFunc("GET /api/plans/today", jsonHandler(t, nil, []*plan.Plan{{ID: "p1"}, {CustomerName: "B", AdHoc: true}}))
	mux.HandleFunc("POST /api/plans/adhoc", jsonHandler(t, nil, map[string]any{"date": "2024-01-01", "names": []string{"B"}}))
	mux.HandleFunc("PUT /api/plans/p1/status", jsonHandler(t, nil, plan.Plan{ID: "p1", Status: plan.Done}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, "U1")
	p, err := c.AddPlan(&plan.Plan{CustomerName: "A"})
	if err != nil || p.ID != "p1" {
		t.Fatalf("add plan: %v %+v", err, p)
	}
	plans, err := c.ListPlanRange("2024-01-01", "2024-01-07")
	if err != nil || len(plans) != 2 {
		t.Fatalf("range: %v %d", err, len(plans))
	}
	today, err := c.TodayPlans("")
	if err != nil || len(today) != 2 || !today[1].AdHoc {
		t.Fatalf("today: %v %+v", err, today)
	}
	names, err := c.AddAdHoc("2024-01-01", "B")
	if err != nil || len(names) != 1 {
		t.Fatalf("adhoc: %v %v", err, names)
	}
	updated, err := c.UpdatePlanStatus("p1", plan.Done)
	if err != nil || updated.Status != plan.Done {
		t.Fatalf("status: %v %+v", err, updated)
	}
}

func TestCustomers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/customers", jsonHandler(t, func(r *http.Request) {
		if r.URL.Query().Get("mode") != "strict" {
			t.Errorf("mode = %q", r.URL.Query().Get("mode"))
		}
	}, customer.Customer{Code: "C-1", Name: "Toko"}))
	mux.HandleFunc("GET /api/customers/lite", jsonHandler(t, nil, []customer.Lite{{ID: "C-1", Name: "Toko"}}))
	mux.HandleFunc("GET /api/customers/{code}", jsonHandler(t, func(r *http.Request) {
		if r.PathValue("code") != "C 1" {
			t.Errorf("code = %q", r.PathValue("code"))
		}
	}, customer.Customer{Code: "C 1"}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, "U1")
	if _, err := c.AddCustomer(&customer.Customer{Code: "C-1", Name: "Toko"}, "strict"); err != nil {
		t.Fatalf("add: %v", err)
	}
	lite, err := c.ListCustomersLite()
	if err != nil || len(lite) != 1 {
		t.Fatalf("lite: %v %v", err, lite)
	}
	got, err := c.GetCustomer("C 1")
	if err != nil || got.Code != "C 1" {
		t.Fatalf("get: %v %+v", err, got)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":"duplicate customer code: C-1"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").AddCustomer(&customer.Customer{Code: "C-1"}, "strict")
	if err == nil || err.Error() != "duplicate customer code: C-1" {
		t.Errorf("err = %v", err)
	}
}

func TestServerErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").ListCustomers(0)
	if err == nil || err.Error() != "server error: Bad Gateway" {
		t.Errorf("err = %v", err)
	}
}
