// Package http exposes the ledger to the UI as a small JSON API. The
// server owns session tokens, rate limiting and response caching; all
// domain behavior lives in the auth, ledger and dashboard packages.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"finanzia/internal/auth"
	"finanzia/internal/cache"
	"finanzia/internal/core"
	"finanzia/internal/dashboard"
	"finanzia/internal/ledger"
	applog "finanzia/internal/log"
)

// Options tunes the HTTP layer.
type Options struct {
	SessionTTL time.Duration
	Dashboard  dashboard.Options
}

type Server struct {
	http.Server
	auth     *auth.Service
	ledger   *ledger.Service
	dashOpts dashboard.Options
	sessions *sessionStore

	rateLimiter *rateLimiter

	// listCache holds per-owner listings. Keys embed an owner generation
	// that is bumped on every write, so invalidation never has to
	// enumerate month keys.
	listCache *cache.LRUCache[[]core.Movement]
	genMu     sync.Mutex
	ownerGen  map[string]int64

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{clients: make(map[string]*clientInfo)}
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
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

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, authSvc *auth.Service, ledgerSvc *ledger.Service, opts Options) *Server {
	mux := http.NewServeMux()

	sessionTTL := opts.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		auth:        authSvc,
		ledger:      ledgerSvc,
		dashOpts:    opts.Dashboard,
		sessions:    newSessionStore(sessionTTL),
		rateLimiter: newRateLimiter(),
		listCache:   cache.NewLRUCache[[]core.Movement](200, time.Minute),
		ownerGen:    make(map[string]int64),
		stopCleanup: make(chan struct{}),
	}

	go s.startCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/logout", s.withSecurityHeaders(s.withAuth(s.handleLogout)))
	mux.HandleFunc("/movements", s.withSecurityHeaders(s.withAuth(s.handleMovements)))
	mux.HandleFunc("/movements/", s.withSecurityHeaders(s.withAuth(s.handleMovementByID)))
	mux.HandleFunc("/summary", s.withSecurityHeaders(s.withAuth(s.handleSummary)))

	return s
}

// startCleanup periodically drops stale sessions, rate-limit entries and
// expired cache rows.
func (s *Server) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.rateLimiter.cleanupStaleEntries()
			sessionsCleaned := s.sessions.CleanExpired()
			cacheCleaned := s.listCache.CleanExpired()
			if sessionsCleaned > 0 || cacheCleaned > 0 {
				slog.Debug("Cleanup completed",
					"sessions_removed", sessionsCleaned,
					"cache_entries_removed", cacheCleaned)
			}
		case <-s.stopCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCleanup != nil {
			close(s.stopCleanup)
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		// Rate limit mutating requests
		if (r.Method == http.MethodPost || r.Method == http.MethodDelete) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", applog.FieldClientIP, clientIP, applog.FieldMethod, r.Method)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// withAuth resolves the bearer token into a session and rejects
// unauthenticated requests.
func (s *Server) withAuth(next func(http.ResponseWriter, *http.Request, core.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		sess, ok := s.sessions.Get(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid or expired session token")
			return
		}
		next(w, r, sess)
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrEmptyUsername),
		errors.Is(err, core.ErrEmptyPassword),
		errors.Is(err, dashboard.ErrInvalidSavingsPercent),
		errors.Is(err, dashboard.ErrInvalidMonthlyLimit):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// cacheKey builds the listing cache key; the per-owner generation makes
// stale keys unreachable after a write.
func (s *Server) cacheKey(owner string, year, month int) string {
	s.genMu.Lock()
	gen := s.ownerGen[owner]
	s.genMu.Unlock()
	return owner + "|" + strconv.FormatInt(gen, 10) + "|" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

func (s *Server) invalidateOwner(owner string) {
	s.genMu.Lock()
	s.ownerGen[owner]++
	s.genMu.Unlock()
}
