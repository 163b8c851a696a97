// Package http serves the bakery's web surface: the single-page template
// plus the JSON API for orders, reports, the financial view and clients.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"padaria/internal/backend"
	"padaria/internal/cache"
	"padaria/internal/finance"
	applog "padaria/internal/log"
	"padaria/internal/report"
	appweb "padaria/web"
)

// Options carries the tunables the server needs from configuration.
type Options struct {
	PageSize int
	Passcode string
	Prices   finance.PriceTable
}

type Server struct {
	http.Server
	templates   *template.Template
	backend     backend.Backend
	opts        Options
	rateLimiter *rateLimiter
	logger      *applog.Logger
	reqLog      *applog.StructuredLogger

	// Memoized report and finance views, purged on every mutation.
	reportCache  *cache.LRUCache[[]report.Bucket]
	financeCache *cache.LRUCache[finance.Summary]
	cacheManager *cache.Manager

	// Tokens issued by the financial unlock endpoint.
	financialSessions *cache.LRUCache[bool]

	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, b backend.Backend, opts Options) *Server {
	mux := http.NewServeMux()

	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.Prices == nil {
		opts.Prices = finance.DefaultPrices()
	}

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentHTTP})

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		backend:           b,
		opts:              opts,
		rateLimiter:       newRateLimiter(),
		logger:            logger,
		reqLog:            applog.NewStructuredLogger(logger),
		reportCache:       cache.NewLRUCache[[]report.Bucket](50, 5*time.Minute),
		financeCache:      cache.NewLRUCache[finance.Summary](50, 5*time.Minute),
		financialSessions: cache.NewLRUCache[bool](100, 12*time.Hour),
		cacheManager:      cache.NewManager(),
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.Register(s.financeCache)
	s.cacheManager.Register(s.financialSessions)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/orders", s.withSecurityHeaders(s.handleListOrders))
	mux.HandleFunc("POST /api/orders", s.withSecurityHeaders(s.handleCreateOrder))
	mux.HandleFunc("PUT /api/orders/{id}", s.withSecurityHeaders(s.handleUpdateOrder))
	mux.HandleFunc("DELETE /api/orders/{id}", s.withSecurityHeaders(s.handleDeleteOrder))
	mux.HandleFunc("POST /api/orders/import", s.withSecurityHeaders(s.handleImportOrders))
	mux.HandleFunc("GET /api/orders/export", s.withSecurityHeaders(s.handleExportOrders))

	mux.HandleFunc("GET /api/reports/daily", s.withSecurityHeaders(s.handleDailyReport))
	mux.HandleFunc("GET /api/reports/weekly", s.withSecurityHeaders(s.handleWeeklyReport))
	mux.HandleFunc("GET /api/reports/monthly", s.withSecurityHeaders(s.handleMonthlyReport))

	mux.HandleFunc("POST /api/financial/unlock", s.withSecurityHeaders(s.handleFinancialUnlock))
	mux.HandleFunc("GET /api/financial/today", s.withSecurityHeaders(s.handleFinancialToday))
	mux.HandleFunc("GET /api/financial/month", s.withSecurityHeaders(s.handleFinancialMonth))

	mux.HandleFunc("GET /api/clients", s.withSecurityHeaders(s.handleListClients))
	mux.HandleFunc("POST /api/clients", s.withSecurityHeaders(s.handleCreateClient))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateViews drops every memoized report and finance view. Called after
// any mutation of the order set.
func (s *Server) invalidateViews() {
	s.reportCache.Purge()
	s.financeCache.Purge()
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ip := clientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, s.logger.With(applog.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		s.reqLog.LogHTTPStart(ctx, r, ip)

		// Rate limit mutations only; reads are cheap and cached.
		if isMutation(r.Method) && !s.rateLimiter.allow(ip) {
			s.logger.WarnContext(ctx, "Rate limit exceeded", "client_ip", ip, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.reqLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), ip)
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
