package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New(time.UTC)
	srv := NewServer(":0", Stores{Transactions: st, Goals: st, Recurring: st}, nil, Options{
		MonthlyIncome:   core.Money{Cents: 200000},
		Currency:        "USD",
		Language:        "en",
		Location:        time.UTC,
		UpcomingHorizon: 30,
	}, nil)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateAndListTransactions(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"120.00","category":"Groceries","created_at":"2025-03-10T12:00:00Z"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created transactionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if created.Amount != "120.00" || created.AmountCents != 12000 {
		t.Fatalf("unexpected amount %s / %d", created.Amount, created.AmountCents)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?month=2025-03", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	var listed []transactionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("expected the created transaction in month listing, got %+v", listed)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?month=2025-04", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty listing for another month, got %d items", len(listed))
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed JSON", `{"type":`, http.StatusBadRequest},
		{"bad amount", `{"type":"expense","amount":"abc"}`, http.StatusUnprocessableEntity},
		{"zero amount", `{"type":"expense","amount":"0"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"type":"transfer","amount":"10.00"}`, http.StatusUnprocessableEntity},
		{"goal link on expense", `{"type":"expense","amount":"10.00","goal_id":"g1"}`, http.StatusUnprocessableEntity},
		{"bad created_at", `{"type":"expense","amount":"10.00","created_at":"yesterday"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/api/transactions", tt.body)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodDelete, "/api/transactions/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"5.00","created_at":"2025-03-01T09:00:00Z"}`)
	var created transactionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?month=2025-03", "")
	var listed []transactionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty listing after delete, got %d items", len(listed))
	}
}

func TestGoalCompletesThroughAPI(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/goals",
		`{"name":"Vacation","target_amount":"50.00","currency":"USD"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("goal create status=%d: %s", rr.Code, rr.Body.String())
	}
	var goal goalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &goal); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	if goal.Status != string(core.GoalActive) {
		t.Fatalf("expected active goal, got %s", goal.Status)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"saved","amount":"50.00","goal_id":"`+goal.ID+`","created_at":"2025-03-05T10:00:00Z"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("saved tx status=%d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/goals", "")
	var goals []goalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &goals); err != nil {
		t.Fatalf("decode goals: %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(goals))
	}
	if goals[0].Status != string(core.GoalCompleted) {
		t.Fatalf("expected completed goal, got %s", goals[0].Status)
	}
	if goals[0].CurrentAmount != "50.00" {
		t.Fatalf("expected current 50.00, got %s", goals[0].CurrentAmount)
	}
	if goals[0].CompletedAt == "" {
		t.Fatalf("expected completed_at to be set")
	}
}

func TestDashboardTotalsAndInvalidation(t *testing.T) {
	srv := newTestServer(t)

	seed := []string{
		`{"type":"expense","amount":"120.00","category":"Groceries","created_at":"2025-03-10T12:00:00Z"}`,
		`{"type":"expense","amount":"80.00","category":"Fuel","created_at":"2025-03-11T12:00:00Z"}`,
		`{"type":"income","amount":"500.00","created_at":"2025-03-12T12:00:00Z"}`,
		`{"type":"saved","amount":"100.00","created_at":"2025-03-13T12:00:00Z"}`,
	}
	for _, body := range seed {
		if rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body); rr.Code != http.StatusCreated {
			t.Fatalf("seed status=%d: %s", rr.Code, rr.Body.String())
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard/2025-03", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d: %s", rr.Code, rr.Body.String())
	}
	var dash dashboardResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.Totals.Income != "2500.00" || dash.Totals.Expenses != "200.00" ||
		dash.Totals.Saved != "100.00" || dash.Totals.Remaining != "2200.00" {
		t.Fatalf("unexpected totals %+v", dash.Totals)
	}
	if dash.Label != "March 2025" {
		t.Fatalf("unexpected label %q", dash.Label)
	}
	if len(dash.Categories) != 2 || dash.Categories[0].Category != "Groceries" || dash.Categories[0].Percent != 60 {
		t.Fatalf("unexpected categories %+v", dash.Categories)
	}

	// A mutation must invalidate the cached payload.
	if rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"50.00","category":"Fuel","created_at":"2025-03-14T12:00:00Z"}`); rr.Code != http.StatusCreated {
		t.Fatalf("mutation status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/2025-03", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.Totals.Expenses != "250.00" {
		t.Fatalf("expected refreshed expenses 250.00, got %s", dash.Totals.Expenses)
	}
}

func TestDashboardRefreshesAfterRecurringChanges(t *testing.T) {
	srv := newTestServer(t)

	// Prime the cache with no definitions.
	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard/2025-03", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rr.Code)
	}
	var dash dashboardResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if len(dash.Upcoming) != 0 {
		t.Fatalf("expected no upcoming items, got %d", len(dash.Upcoming))
	}

	start := time.Now().UTC().Format(dateLayout)
	rr = doJSON(t, srv, http.MethodPost, "/api/recurring",
		`{"name":"Rent","kind":"rent","frequency":"daily","start_date":"`+start+`","type":"expense","amount":"900.00"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("recurring create status=%d: %s", rr.Code, rr.Body.String())
	}
	var def recurringResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &def); err != nil {
		t.Fatalf("decode recurring: %v", err)
	}

	// The cached payload must not survive the mutation.
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/2025-03", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if len(dash.Upcoming) == 0 {
		t.Fatalf("expected upcoming items after creating a recurring definition")
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/recurring/"+def.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("recurring delete status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/2025-03", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if len(dash.Upcoming) != 0 {
		t.Fatalf("expected no upcoming items after delete, got %d", len(dash.Upcoming))
	}
}

func TestDashboardRejectsBadMonthKey(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard/March-2025", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestReportEndpoint(t *testing.T) {
	srv := newTestServer(t)

	if rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"120.00","category":"Groceries","created_at":"2025-03-10T12:00:00Z"}`); rr.Code != http.StatusCreated {
		t.Fatalf("seed status=%d", rr.Code)
	}

	rr := doJSON(t, srv, http.MethodGet, "/reports/2025-03", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("report status=%d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "March 2025") || !strings.Contains(body, "Groceries") {
		t.Fatalf("report body missing expected content")
	}

	// Second request is served from cache and stays identical.
	rr2 := doJSON(t, srv, http.MethodGet, "/reports/2025-03", "")
	if rr2.Body.String() != body {
		t.Fatalf("cached report differs from first render")
	}

	rr = doJSON(t, srv, http.MethodGet, "/reports/not-a-month", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad month key, got %d", rr.Code)
	}
}

func TestRecurringAndUpcoming(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/recurring",
		`{"name":"Netflix","kind":"subscription","frequency":"monthly","start_date":"2025-01-31","type":"expense","amount":"15.00","category":"Entertainment"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("recurring create status=%d: %s", rr.Code, rr.Body.String())
	}
	var def recurringResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &def); err != nil {
		t.Fatalf("decode recurring: %v", err)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/upcoming?days=31", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("upcoming status=%d", rr.Code)
	}
	var upcoming []upcomingResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &upcoming); err != nil {
		t.Fatalf("decode upcoming: %v", err)
	}
	if len(upcoming) == 0 {
		t.Fatalf("expected at least one projected occurrence")
	}
	if upcoming[0].Name != "Netflix" || upcoming[0].Amount != "15.00" {
		t.Fatalf("unexpected projection %+v", upcoming[0])
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/upcoming?days=-1", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative days, got %d", rr.Code)
	}

	// The horizon is capped; a huge window must not reach the projector.
	rr = doJSON(t, srv, http.MethodGet, "/api/upcoming?days=2000000000", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized days, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/recurring/"+def.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("recurring delete status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/recurring", "")
	var defs []recurringResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &defs); err != nil {
		t.Fatalf("decode recurring list: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("expected empty recurring list, got %d", len(defs))
	}
}

func TestRecurringValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad frequency", `{"name":"X","kind":"bill","frequency":"fortnightly","start_date":"2025-01-01","type":"expense","amount":"1.00"}`},
		{"bad kind", `{"name":"X","kind":"mystery","frequency":"monthly","start_date":"2025-01-01","type":"expense","amount":"1.00"}`},
		{"missing start date", `{"name":"X","kind":"bill","frequency":"monthly","type":"expense","amount":"1.00"}`},
		{"end before start", `{"name":"X","kind":"bill","frequency":"monthly","start_date":"2025-06-01","end_date":"2025-01-01","type":"expense","amount":"1.00"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/api/recurring", tt.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}
