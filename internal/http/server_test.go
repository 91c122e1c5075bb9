package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moneta/internal/services"
	"moneta/internal/sheets/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := services.NewLedgerService(memory.New(), nil)
	s := NewServer(Config{Addr: ":0", DashboardCacheTTL: time.Minute}, svc)
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
	}
}

func TestCreateEntry(t *testing.T) {
	s := newTestServer(t)

	rr := doJSON(t, s, http.MethodPost, "/api/entries",
		`{"category":"Food & Dining","amount":"12.50","kind":"expense","description":"lunch"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rec := decodeBody[recordResponse](t, rr)
	if rec.ID == "" {
		t.Error("expected an assigned ID")
	}
	if rec.AmountCents != 1250 {
		t.Errorf("expected 1250 cents, got %d", rec.AmountCents)
	}
	if rec.Kind != "expense" {
		t.Errorf("expected kind expense, got %q", rec.Kind)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"unknown category", `{"category":"Groceries","amount":"1","kind":"expense"}`, http.StatusUnprocessableEntity},
		{"bad amount", `{"category":"Other","amount":"abc","kind":"expense"}`, http.StatusUnprocessableEntity},
		{"bad kind", `{"category":"Other","amount":"1","kind":"transfer"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"category":"Other","amount":"1","kind":"expense","date":"not-a-date"}`, http.StatusUnprocessableEntity},
		{"malformed json", `{"category":`, http.StatusBadRequest},
		{"unknown field", `{"category":"Other","amount":"1","kind":"expense","note":"x"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, s, http.MethodPost, "/api/entries", tc.body)
			if rr.Code != tc.wantCode {
				t.Errorf("expected %d, got %d: %s", tc.wantCode, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestImportCSV(t *testing.T) {
	s := newTestServer(t)

	csv := "date,category,amount,description\n" +
		"2025-04-10,Food & Dining,10.00,groceries\n" +
		"2025-04-11,Bogus,5.00,typo\n" +
		"2025-04-12,Transportation,2.50,bus\n"

	req := httptest.NewRequest(http.MethodPost, "/api/entries/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeBody[importResponse](t, rr)
	if len(resp.Accepted) != 2 {
		t.Errorf("expected 2 accepted rows, got %d", len(resp.Accepted))
	}
	if len(resp.Rejected) != 1 || resp.Rejected[0].Row != 1 {
		t.Errorf("expected row 1 rejected, got %+v", resp.Rejected)
	}
}

func TestImportCSVMalformed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/entries/import",
		strings.NewReader("date,category,amount,description\n\"unterminated\n"))
	req.Header.Set("Content-Type", "text/csv")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestListEntries(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/entries",
		`{"category":"Other","amount":"1","kind":"expense","date":"2020-01-01"}`)
	doJSON(t, s, http.MethodPost, "/api/entries",
		`{"category":"Other","amount":"2","kind":"income"}`)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/entries", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	all := decodeBody[entriesResponse](t, rr)
	if len(all.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all.Entries))
	}

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/entries?range=week", nil))
	week := decodeBody[entriesResponse](t, rr)
	if len(week.Entries) != 1 {
		t.Errorf("expected only the dated-today entry in range week, got %d", len(week.Entries))
	}
}

func TestListEntriesUnknownRange(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/entries?range=fortnight", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}

	body := decodeBody[errorResponse](t, rr)
	if body.RequestID == "" {
		t.Error("expected error body to carry the request ID")
	}
}

func TestUpdateEntry(t *testing.T) {
	s := newTestServer(t)

	created := decodeBody[recordResponse](t, doJSON(t, s, http.MethodPost, "/api/entries",
		`{"category":"Other","amount":"1","kind":"expense"}`))

	rr := doJSON(t, s, http.MethodPut, "/api/entries/"+created.ID,
		`{"category":"Housing","amount":"950","kind":"expense","description":"rent"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	updated := decodeBody[recordResponse](t, rr)
	if updated.ID != created.ID {
		t.Errorf("expected ID %q preserved, got %q", created.ID, updated.ID)
	}
	if updated.Category != "Housing" || updated.AmountCents != 95000 {
		t.Errorf("unexpected updated record: %+v", updated)
	}

	rr = doJSON(t, s, http.MethodPut, "/api/entries/999",
		`{"category":"Other","amount":"1","kind":"expense"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing record, got %d", rr.Code)
	}
}

func TestDeleteEntry(t *testing.T) {
	s := newTestServer(t)

	created := decodeBody[recordResponse](t, doJSON(t, s, http.MethodPost, "/api/entries",
		`{"category":"Other","amount":"1","kind":"expense"}`))

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/entries/"+created.ID, nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/entries/"+created.ID, nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 on double delete, got %d", rr.Code)
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/entries",
		`{"category":"Other","amount":"100","kind":"income"}`)
	doJSON(t, s, http.MethodPost, "/api/entries",
		`{"category":"Food & Dining","amount":"30","kind":"expense"}`)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard?range=month", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	dash := decodeBody[dashboardResponse](t, rr)
	if dash.BalanceCents != 7000 {
		t.Errorf("expected balance 7000, got %d", dash.BalanceCents)
	}
	if dash.IncomeCents != 10000 || dash.ExpenseCents != 3000 {
		t.Errorf("unexpected totals: income=%d expense=%d", dash.IncomeCents, dash.ExpenseCents)
	}
	if dash.CategoryTotals["Food & Dining"] != 3000 {
		t.Errorf("unexpected category totals: %v", dash.CategoryTotals)
	}
	if dash.EntryCount != 2 {
		t.Errorf("expected 2 entries, got %d", dash.EntryCount)
	}
}

func TestDashboardCacheInvalidation(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/entries",
		`{"category":"Other","amount":"10","kind":"expense"}`)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard?range=all", nil))
	first := decodeBody[dashboardResponse](t, rr)
	if first.EntryCount != 1 {
		t.Fatalf("expected 1 entry, got %d", first.EntryCount)
	}

	// A write must purge the cached aggregation.
	doJSON(t, s, http.MethodPost, "/api/entries",
		`{"category":"Other","amount":"20","kind":"expense"}`)

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard?range=all", nil))
	second := decodeBody[dashboardResponse](t, rr)
	if second.EntryCount != 2 {
		t.Errorf("expected refreshed dashboard with 2 entries, got %d", second.EntryCount)
	}
	if second.ExpenseCents != 3000 {
		t.Errorf("expected expense total 3000, got %d", second.ExpenseCents)
	}
}

func TestRateLimit(t *testing.T) {
	svc := services.NewLedgerService(memory.New(), nil)
	s := NewServer(Config{Addr: ":0", RequestsPerMinute: 3}, svc)
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})

	post := func() int {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/entries",
			strings.NewReader(`{"category":"Other","amount":"1","kind":"expense"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.0.0.1:1234"
		s.Handler().ServeHTTP(rr, req)
		return rr.Code
	}

	var last int
	for i := 0; i < 4; i++ {
		last = post()
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected 429 after exceeding the limit, got %d", last)
	}

	// Reads are not rate limited.
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected reads to bypass the limiter, got %d", rr.Code)
	}
}
