// Package http exposes the JSON API and the rendered monthly report.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/cache"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/log"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/report"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/services"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/store"
)

// Stores bundles the persistence ports the server reads from.
type Stores struct {
	Transactions store.TransactionStore
	Goals        store.GoalStore
	Recurring    store.RecurringStore
}

// Options carries the presentation settings shared by the dashboard and
// report endpoints.
type Options struct {
	MonthlyIncome   core.Money
	Currency        string
	Language        string
	Location        *time.Location
	UpcomingHorizon int
}

func (o Options) normalized() Options {
	if o.Currency == "" {
		o.Currency = "USD"
	}
	if o.Language == "" {
		o.Language = "en"
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.UpcomingHorizon <= 0 {
		o.UpcomingHorizon = 30
	}
	if o.UpcomingHorizon > maxUpcomingHorizonDays {
		o.UpcomingHorizon = maxUpcomingHorizonDays
	}
	return o
}

type Server struct {
	http.Server

	stores    Stores
	txService *services.TransactionService
	renderer  *report.Renderer
	opts      Options
	logger    *log.Logger

	// Rendered reports and dashboard payloads are cached per month key
	// and purged on every mutation.
	dashboardCache *cache.LRUCache[dashboardResponse]
	reportCache    *cache.LRUCache[[]byte]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, stores Stores, notifier services.ChangeNotifier, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	opts = opts.normalized()

	reconciler := services.NewGoalReconciler(stores.Transactions, stores.Goals)
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		stores:         stores,
		txService:      services.NewTransactionService(stores.Transactions, notifier, reconciler),
		renderer:       report.NewRenderer(opts.Location),
		opts:           opts,
		logger:         logger.WithComponent(log.ComponentHTTP),
		dashboardCache: cache.NewLRUCache[dashboardResponse](100, 5*time.Minute),
		reportCache:    cache.NewLRUCache[[]byte](100, 5*time.Minute),
		cacheManager:   cache.NewManager(logger),
	}

	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/transactions", s.withRequestLog(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.withRequestLog(s.handleListTransactions))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withRequestLog(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/goals", s.withRequestLog(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.withRequestLog(s.handleCreateGoal))

	mux.HandleFunc("GET /api/recurring", s.withRequestLog(s.handleListRecurring))
	mux.HandleFunc("POST /api/recurring", s.withRequestLog(s.handleCreateRecurring))
	mux.HandleFunc("DELETE /api/recurring/{id}", s.withRequestLog(s.handleDeleteRecurring))

	mux.HandleFunc("GET /api/upcoming", s.withRequestLog(s.handleUpcoming))
	mux.HandleFunc("GET /api/dashboard/{month}", s.withRequestLog(s.handleDashboard))
	mux.HandleFunc("GET /reports/{month}", s.withRequestLog(s.handleReport))

	return s
}

// Shutdown stops the cache cleanup routine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateCaches drops every cached dashboard and report. Mutations
// can shift goal state across months, so a per-month delete is not
// enough.
func (s *Server) invalidateCaches() {
	s.dashboardCache.Purge()
	s.reportCache.Purge()
}

// withRequestLog adds a request id, response headers and start/end
// logging around a handler.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		logger := s.logger.With(log.FieldRequestID, requestID)
		ctx := r.Context()

		logger.InfoContext(ctx, "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Request-ID", requestID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.InfoContext(ctx, "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
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

// generateRequestID creates a unique request id for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
