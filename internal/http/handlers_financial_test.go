package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"padaria/internal/core"
	"padaria/internal/report"
)

func seedTodayOrder(t *testing.T, srv *Server, clientName string, buns int) {
	t.Helper()
	body := `{"clientName":"` + clientName + `","requestDate":"` + core.FormatDay(time.Now()) +
		`","hamburgerBuns":` + jsonInt(buns) + `}`
	if rr := doJSON(t, srv, http.MethodPost, "/api/orders", body); rr.Code != http.StatusCreated {
		t.Fatalf("seed failed: %d, body = %s", rr.Code, rr.Body.String())
	}
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func unlock(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()
	rr := doJSON(t, srv, http.MethodPost, "/api/financial/unlock", `{"passcode":"1314"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("unlock status = %d, body = %s", rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == financialCookie {
			return c
		}
	}
	t.Fatal("unlock response carries no session cookie")
	return nil
}

func TestFinancialUnlock(t *testing.T) {
	srv := newTestServer(t)

	t.Run("locked by default", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/api/financial/today", "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("wrong passcode rejected", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/financial/unlock", `{"passcode":"0000"}`)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("forged cookie rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/financial/today", nil)
		req.AddCookie(&http.Cookie{Name: financialCookie, Value: "deadbeef"})
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("correct passcode opens the view", func(t *testing.T) {
		cookie := unlock(t, srv)
		if !cookie.HttpOnly {
			t.Error("session cookie should be HttpOnly")
		}

		req := httptest.NewRequest(http.MethodGet, "/api/financial/today", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
		}
	})
}

func TestFinancialSummary(t *testing.T) {
	srv := newTestServer(t)
	seedTodayOrder(t, srv, "Ana", 10)
	seedTodayOrder(t, srv, "Bruno", 5)
	cookie := unlock(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/financial/today", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp financialResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	// 15 hamburger buns at R$ 4,30 each.
	if resp.TotalCents != 15*430 {
		t.Errorf("TotalCents = %d, want %d", resp.TotalCents, 15*430)
	}
	if resp.GrandTotal != "R$ 64,50" {
		t.Errorf("GrandTotal = %q, want %q", resp.GrandTotal, "R$ 64,50")
	}
	if len(resp.Lines) != len(core.Variants()) {
		t.Fatalf("got %d lines, want %d", len(resp.Lines), len(core.Variants()))
	}
	if resp.Lines[0].Quantity != 15 || resp.Lines[0].UnitPrice != "R$ 4,30" {
		t.Errorf("hamburger line = %+v", resp.Lines[0])
	}
}

func TestDailyReport(t *testing.T) {
	srv := newTestServer(t)
	seedTodayOrder(t, srv, "Ana", 10)

	rr := doJSON(t, srv, http.MethodGet, "/api/reports/daily", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var buckets []report.Bucket
	if err := json.Unmarshal(rr.Body.Bytes(), &buckets); err != nil {
		t.Fatal(err)
	}
	if len(buckets) != 7 {
		t.Fatalf("got %d buckets, want 7", len(buckets))
	}
	last := buckets[len(buckets)-1]
	if last.Totals.Get(core.Hamburger) != 10 {
		t.Errorf("today's hamburger total = %d, want 10", last.Totals.Get(core.Hamburger))
	}
}

func TestReportCachePurgedOnMutation(t *testing.T) {
	srv := newTestServer(t)
	seedTodayOrder(t, srv, "Ana", 10)

	first := doJSON(t, srv, http.MethodGet, "/api/reports/daily", "")
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d", first.Code)
	}

	seedTodayOrder(t, srv, "Bruno", 5)

	second := doJSON(t, srv, http.MethodGet, "/api/reports/daily", "")
	var buckets []report.Bucket
	if err := json.Unmarshal(second.Body.Bytes(), &buckets); err != nil {
		t.Fatal(err)
	}
	last := buckets[len(buckets)-1]
	if last.Totals.Get(core.Hamburger) != 15 {
		t.Errorf("total after mutation = %d, want 15", last.Totals.Get(core.Hamburger))
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/orders", "")
	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	}
	for name, want := range headers {
		if got := rr.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if csp := rr.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "'self'") {
		t.Errorf("Content-Security-Policy = %q", csp)
	}
}
