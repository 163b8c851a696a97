package http

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"padaria/internal/core"
	"padaria/internal/finance"
	applog "padaria/internal/log"
)

const financialCookie = "padaria_financial"

// handleFinancialUnlock checks the passcode and issues a session token. The
// comparison is constant time so the passcode length leaks nothing.
func (s *Server) handleFinancialUnlock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Passcode string `json:"passcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if subtle.ConstantTimeCompare([]byte(body.Passcode), []byte(s.opts.Passcode)) != 1 {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Financial unlock rejected", "client_ip", clientIP(r))
		writeError(w, http.StatusUnauthorized, "senha incorreta")
		return
	}

	token := newSessionToken()
	s.financialSessions.Set(token, true)

	http.SetCookie(w, &http.Cookie{
		Name:     financialCookie,
		Value:    token,
		Path:     "/api/financial",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int((12 * time.Hour).Seconds()),
	})
	writeJSON(w, http.StatusOK, map[string]bool{"unlocked": true})
}

func newSessionToken() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return generateRequestID()
	}
	return hex.EncodeToString(bytes)
}

// unlocked reports whether the request carries a valid session token.
func (s *Server) unlocked(r *http.Request) bool {
	cookie, err := r.Cookie(financialCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	_, ok := s.financialSessions.Get(cookie.Value)
	return ok
}

func (s *Server) handleFinancialToday(w http.ResponseWriter, r *http.Request) {
	s.serveFinancial(w, r, "today", finance.Daily)
}

func (s *Server) handleFinancialMonth(w http.ResponseWriter, r *http.Request) {
	s.serveFinancial(w, r, "month", finance.Monthly)
}

type financialLine struct {
	Variant   core.Variant `json:"variant"`
	Quantity  int          `json:"quantity"`
	UnitPrice string       `json:"unitPrice"`
	Total     string       `json:"total"`
}

type financialResponse struct {
	Lines      []financialLine `json:"lines"`
	GrandTotal string          `json:"grandTotal"`
	TotalCents int64           `json:"totalCents"`
}

func (s *Server) serveFinancial(w http.ResponseWriter, r *http.Request, kind string, build func([]core.Order, finance.PriceTable, time.Time, []core.Variant) finance.Summary) {
	if !s.unlocked(r) {
		writeError(w, http.StatusUnauthorized, "visão financeira bloqueada")
		return
	}

	now := time.Now()
	key := kind + ":" + core.FormatDay(now)

	summary, found := s.financeCache.Get(key)
	if !found {
		orders, err := s.backend.ListOrders(r.Context())
		if err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Financial list error", "error", err, "kind", kind)
			writeError(w, http.StatusInternalServerError, "erro ao carregar resumo financeiro")
			return
		}
		summary = build(orders, s.opts.Prices, now, core.Variants())
		s.financeCache.Set(key, summary)
	}

	resp := financialResponse{
		Lines:      make([]financialLine, 0, len(summary.Lines)),
		GrandTotal: formatReais(summary.GrandTotal.Cents),
		TotalCents: summary.GrandTotal.Cents,
	}
	for _, line := range summary.Lines {
		resp.Lines = append(resp.Lines, financialLine{
			Variant:   line.Variant,
			Quantity:  line.Quantity,
			UnitPrice: formatReais(line.UnitPrice.Cents),
			Total:     formatReais(line.Total.Cents),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
