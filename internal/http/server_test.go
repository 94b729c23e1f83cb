package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finanzia/internal/auth"
	"finanzia/internal/dashboard"
	"finanzia/internal/ledger"
	"finanzia/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	backend := memory.New()
	srv := NewServer(":0", auth.NewService(backend), ledger.NewService(backend), Options{
		SessionTTL: time.Minute,
		Dashboard:  dashboard.Options{SavingsPercent: 10},
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func registerAndLogin(t *testing.T, srv *Server, username string) string {
	t.Helper()
	creds := fmt.Sprintf(`{"username":%q,"password":"secret"}`, username)
	if rr := doJSON(t, srv, http.MethodPost, "/register", "", creds); rr.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rr.Code, rr.Body.String())
	}
	rr := doJSON(t, srv, http.MethodPost, "/login", "", creds)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login returned empty token")
	}
	return resp.Token
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}
}

func TestRegisterDuplicateConflict(t *testing.T) {
	srv := newTestServer(t)
	creds := `{"username":"ana","password":"secret"}`
	if rr := doJSON(t, srv, http.MethodPost, "/register", "", creds); rr.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rr.Code)
	}
	if rr := doJSON(t, srv, http.MethodPost, "/register", "", creds); rr.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", rr.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "ana")
	rr := doJSON(t, srv, http.MethodPost, "/login", "", `{"username":"ana","password":"wrong"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("wrong-password login status = %d, want 401", rr.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/movements"},
		{http.MethodPost, "/movements"},
		{http.MethodDelete, "/movements/1"},
		{http.MethodGet, "/summary"},
		{http.MethodPost, "/logout"},
	}
	for _, p := range paths {
		rr := doJSON(t, srv, p.method, p.path, "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token status = %d, want 401", p.method, p.path, rr.Code)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/movements", "bogus-token", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bogus token status = %d, want 401", rr.Code)
	}
}

func TestMovementLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "ana")

	rr := doJSON(t, srv, http.MethodPost, "/movements", token,
		`{"kind":"Gasto","category":"Comida","amount":"12.34","note":"groceries"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
	}
	var created movementResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == 0 || created.Amount != "12.34" {
		t.Fatalf("created = %+v", created)
	}

	rr = doJSON(t, srv, http.MethodGet, "/movements", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var listed []movementResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("listed = %+v", listed)
	}

	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/movements/%d", created.ID), token, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/movements", token, "")
	var after []movementResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(after) != 0 {
		t.Fatalf("listing after delete = %+v, want empty", after)
	}

	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/movements/%d", created.ID), token, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rr.Code)
	}
}

func TestMovementLongNote(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "ana")

	note := strings.Repeat("x", 201)
	body := fmt.Sprintf(`{"kind":"Gasto","category":"Comida","amount":"5","note":%q}`, note)
	rr := doJSON(t, srv, http.MethodPost, "/movements", token, body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("long-note create status = %d: %s", rr.Code, rr.Body.String())
	}
	var created movementResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Note != note {
		t.Fatalf("note truncated: got %d chars, want %d", len(created.Note), len(note))
	}
}

func TestMovementValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "ana")

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "bad kind", body: `{"kind":"Prestito","category":"Comida","amount":"5"}`, want: http.StatusUnprocessableEntity},
		{name: "bad category", body: `{"kind":"Gasto","category":"Viajes","amount":"5"}`, want: http.StatusUnprocessableEntity},
		{name: "negative amount", body: `{"kind":"Gasto","category":"Comida","amount":"-5"}`, want: http.StatusUnprocessableEntity},
		{name: "garbage amount", body: `{"kind":"Gasto","category":"Comida","amount":"abc"}`, want: http.StatusUnprocessableEntity},
		{name: "not json", body: `{{{`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/movements", token, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestMovementsOwnerIsolation(t *testing.T) {
	srv := newTestServer(t)
	anaToken := registerAndLogin(t, srv, "ana")
	bobToken := registerAndLogin(t, srv, "bob")

	rr := doJSON(t, srv, http.MethodPost, "/movements", anaToken,
		`{"kind":"Gasto","category":"Comida","amount":"10"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rr.Code)
	}
	var created movementResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rr = doJSON(t, srv, http.MethodGet, "/movements", bobToken, "")
	var listed []movementResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("bob sees ana's movements: %+v", listed)
	}

	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/movements/%d", created.ID), bobToken, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status = %d, want 404", rr.Code)
	}
}

func TestSummary(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "ana")

	for _, body := range []string{
		`{"kind":"Ingreso","category":"Otros","amount":"100"}`,
		`{"kind":"Gasto","category":"Comida","amount":"25"}`,
		`{"kind":"Gasto","category":"Transporte","amount":"15"}`,
	} {
		if rr := doJSON(t, srv, http.MethodPost, "/movements", token, body); rr.Code != http.StatusCreated {
			t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/summary", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if resp.IncomeTotal != "100.00" || resp.ExpenseTotal != "40.00" {
		t.Fatalf("totals = %s / %s", resp.IncomeTotal, resp.ExpenseTotal)
	}
	if resp.SavingsTarget != "10.00" {
		t.Fatalf("savings target = %s, want 10.00", resp.SavingsTarget)
	}
	if resp.Available != "50.00" {
		t.Fatalf("available = %s, want 50.00", resp.Available)
	}
	if len(resp.ByCategory) != 2 {
		t.Fatalf("by_category = %+v", resp.ByCategory)
	}

	// Per-request overrides.
	rr = doJSON(t, srv, http.MethodGet, "/summary?savings_percent=0&monthly_limit=80", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary with overrides status = %d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if resp.SavingsTarget != "0.00" {
		t.Fatalf("overridden savings target = %s, want 0.00", resp.SavingsTarget)
	}
	if resp.BudgetUtilization != 0.5 {
		t.Fatalf("budget utilization = %v, want 0.5", resp.BudgetUtilization)
	}

	rr = doJSON(t, srv, http.MethodGet, "/summary?savings_percent=99", token, "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid override status = %d, want 422", rr.Code)
	}
}

func TestSummaryBadMonthQuery(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "ana")

	for _, q := range []string{"?year=2025", "?month=3", "?year=2025&month=13", "?year=abc&month=3"} {
		rr := doJSON(t, srv, http.MethodGet, "/summary"+q, token, "")
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("summary%s status = %d, want 400", q, rr.Code)
		}
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "ana")

	if rr := doJSON(t, srv, http.MethodPost, "/logout", token, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rr.Code)
	}
	if rr := doJSON(t, srv, http.MethodGet, "/movements", token, ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("post-logout status = %d, want 401", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodPost, "/login", "", `{"username":"x","password":"y"}`)
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
}
