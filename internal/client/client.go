// Package client provides an HTTP client for the field-visits REST API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/evcraddock/field-visits/internal/customer"
	"github.com/evcraddock/field-visits/internal/dashboard"
	"github.com/evcraddock/field-visits/internal/history"
	"github.com/evcraddock/field-visits/internal/plan"
	"github.com/evcraddock/field-visits/internal/visit"
)

// UserHeader names the acting user on every request.
const UserHeader = "X-User-ID"

// Client is an HTTP client for the field-visits API.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// New creates a new API client acting for userID. An empty userID leaves
// the choice to the server's default user.
func New(baseURL, userID string) *Client {
	return &Client{
		baseURL:    baseURL,
		userID:     userID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// History returns the reconciled visit history for the last days days.
func (c *Client) History(days int) (*history.Result, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var res history.Result
	if err := c.get(withQuery("/api/history", q), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AddVisit records a visit.
func (c *Client) AddVisit(v *visit.Visit) (*visit.Visit, error) {
	var out visit.Visit
	if err := c.post("/api/visits", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VisitFilter narrows dashboard listings and exports.
type VisitFilter struct {
	dashboard.Filter
	Limit int
}

func (f VisitFilter) query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("q", f.Search)
	set("temperature", f.Temperature)
	set("from", f.From)
	set("to", f.To)
	set("user", f.UserID)
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// VisitList is the dashboard listing with its summary.
type VisitList struct {
	Visits []*visit.Visit  `json:"visits"`
	Stats  dashboard.Stats `json:"stats"`
}

// ListVisits returns the dashboard visit list across users.
func (c *Client) ListVisits(f VisitFilter) (*VisitList, error) {
	var out VisitList
	if err := c.get(withQuery("/api/visits", f.query()), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportVisits downloads the filtered visit list as csv, xlsx or geojson
// and copies it to w.
func (c *Client) ExportVisits(format string, f VisitFilter, w io.Writer) error {
	var path string
	switch format {
	case "csv":
		path = "/api/visits/export.csv"
	case "xlsx":
		path = "/api/visits/export.xlsx"
	case "geojson":
		path = "/api/visits/map"
	default:
		return fmt.Errorf("unknown export format %q (use csv, xlsx or geojson)", format)
	}

	req, err := http.NewRequest(http.MethodGet, c.baseURL+withQuery(path, f.query()), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, w)
}

// AddPlan stores a visit plan.
func (c *Client) AddPlan(p *plan.Plan) (*plan.Plan, error) {
	var out plan.Plan
	if err := c.post("/api/plans", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPlans returns stored plans for one date, or today when date is empty.
func (c *Client) ListPlans(date string) ([]*plan.Plan, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var plans []*plan.Plan
	if err := c.get(withQuery("/api/plans", q), &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// ListPlanRange returns stored plans for an inclusive date range.
func (c *Client) ListPlanRange(from, to string) ([]*plan.Plan, error) {
	q := url.Values{"from": {from}, "to": {to}}
	var plans []*plan.Plan
	if err := c.get(withQuery("/api/plans", q), &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// TodayPlans returns the day's stored plans followed by ad-hoc entries.
func (c *Client) TodayPlans(date string) ([]*plan.Plan, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var plans []*plan.Plan
	if err := c.get(withQuery("/api/plans/today", q), &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// AddAdHoc records an unplanned customer for date and returns the day's
// ad-hoc names.
func (c *Client) AddAdHoc(date, customerName string) ([]string, error) {
	body := map[string]string{"date": date, "customerName": customerName}
	var out struct {
		Names []string `json:"names"`
	}
	if err := c.post("/api/plans/adhoc", body, &out); err != nil {
		return nil, err
	}
	return out.Names, nil
}

// UpdatePlanStatus marks a plan planned, done or skipped.
func (c *Client) UpdatePlanStatus(id string, status plan.Status) (*plan.Plan, error) {
	body := map[string]plan.Status{"status": status}
	var out plan.Plan
	if err := c.send(http.MethodPut, "/api/plans/"+url.PathEscape(id)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddCustomer stores a customer. mode is strict, minimal, or empty for
// merge.
func (c *Client) AddCustomer(cust *customer.Customer, mode string) (*customer.Customer, error) {
	q := url.Values{}
	if mode != "" {
		q.Set("mode", mode)
	}
	var out customer.Customer
	if err := c.post(withQuery("/api/customers", q), cust, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCustomer returns a customer by code.
func (c *Client) GetCustomer(code string) (*customer.Customer, error) {
	var out customer.Customer
	if err := c.get("/api/customers/"+url.PathEscape(code), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCustomers returns the acting user's customers, newest first.
func (c *Client) ListCustomers(limit int) ([]*customer.Customer, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []*customer.Customer
	if err := c.get(withQuery("/api/customers", q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCustomersLite returns id/name pairs for the acting user's customers.
func (c *Client) ListCustomersLite() ([]customer.Lite, error) {
	var out []customer.Lite
	if err := c.get("/api/customers/lite", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// post performs a POST request with a JSON body and decodes the response.
func (c *Client) post(path string, body, result any) error {
	return c.send(http.MethodPost, path, body, result)
}

func (c *Client) send(method, path string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

// do executes an HTTP request with the user header and handles errors. When
// result is an io.Writer the raw body is copied to it.
func (c *Client) do(req *http.Request, result any) error {
	if c.userID != "" {
		req.Header.Set(UserHeader, c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("server error: %s", http.StatusText(resp.StatusCode))
	}

	if w, ok := result.(io.Writer); ok {
		if _, err := w.Write(respBody); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
		return nil
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
