package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"spendlog/internal/cache"
	"spendlog/internal/log"
	"spendlog/internal/metrics"
	"spendlog/internal/middleware/ratelimit"
	"spendlog/internal/middleware/security"
	"spendlog/internal/middleware/trace"
	"spendlog/internal/services"
)

// apiPrefix is the alternate mount point for every route.
const apiPrefix = "/api"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config carries the HTTP-facing settings.
type Config struct {
	Addr               string
	Debug              bool
	Version            string
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	CORSAllowedOrigins []string
}

// Deps are the collaborators the handlers call into. Metrics, Caches and
// Store may be nil.
type Deps struct {
	Categories *services.CategoryService
	Expenses   *services.ExpenseService
	Dashboard  *services.DashboardService
	Store      Pinger
	Metrics    *metrics.Metrics
	Caches     *cache.Manager
}

// Server is the JSON API server.
type Server struct {
	http.Server

	categories *services.CategoryService
	expenses   *services.ExpenseService
	dashboard  *services.DashboardService
	store      Pinger
	metrics    *metrics.Metrics
	caches     *cache.Manager

	errors         ErrorWriter
	version        string
	requestTimeout time.Duration
	startedAt      time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	logger           *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	s := &Server{
		categories:       deps.Categories,
		expenses:         deps.Expenses,
		dashboard:        deps.Dashboard,
		store:            deps.Store,
		metrics:          deps.Metrics,
		caches:           deps.Caches,
		errors:           ErrorWriter{Debug: cfg.Debug},
		version:          cfg.Version,
		requestTimeout:   cfg.RequestTimeout,
		startedAt:        time.Now(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		logger:           log.WithComponent(log.ComponentHTTP),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	corsConfig := security.DefaultCORSConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsConfig.AllowedOrigins = cfg.CORSAllowedOrigins
	}

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, ratelimit.MutatingOnly, s.onRateLimited)(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = security.NewCORS(corsConfig).Middleware(handler)

	traceOpts := []trace.Option{
		trace.WithRouteResolver(func(r *http.Request) string {
			_, pattern := mux.Handler(r)
			return pattern
		}),
	}
	if s.metrics != nil {
		traceOpts = append(traceOpts, trace.WithRecorder(s.metrics))
	}
	handler = trace.NewMiddleware(s.securityDetector.ExtractClientIP, traceOpts...).Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	s.handle(mux, "GET /health", s.handleHealth)
	s.handle(mux, "GET /healthz", s.handleLiveness)
	s.handle(mux, "GET /readyz", s.handleReady)
	if s.metrics != nil {
		s.handle(mux, "GET /metrics", s.metrics.Handler().ServeHTTP)
	}

	s.handle(mux, "GET /categories", s.handleListCategories)
	s.handle(mux, "POST /categories", s.handleCreateCategory)
	s.handle(mux, "GET /categories/{id}", s.handleGetCategory)
	s.handle(mux, "PUT /categories/{id}", s.handleUpdateCategory)
	s.handle(mux, "PATCH /categories/{id}", s.handleUpdateCategory)
	s.handle(mux, "DELETE /categories/{id}", s.handleDeleteCategory)

	s.handle(mux, "GET /expenses", s.handleListExpenses)
	s.handle(mux, "POST /expenses", s.handleCreateExpense)
	s.handle(mux, "GET /expenses/{id}", s.handleGetExpense)
	s.handle(mux, "PUT /expenses/{id}", s.handleUpdateExpense)
	s.handle(mux, "PATCH /expenses/{id}", s.handleUpdateExpense)
	s.handle(mux, "DELETE /expenses/{id}", s.handleDeleteExpense)

	s.handle(mux, "GET /dashboard", s.handleDashboard)
	s.handle(mux, "GET /dashboard/monthly/{year}", s.handleMonthlyStats)
}

// handle registers pattern at its path and again under apiPrefix.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")
	mux.HandleFunc(pattern, h)
	mux.HandleFunc(method+" "+apiPrefix+path, h)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).Warn("Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	if s.metrics != nil {
		s.metrics.ObserveRateLimited()
	}
	MessageResponse(http.StatusTooManyRequests, MsgTooManyRequests).
		Header("X-RateLimit-Limit", strconv.Itoa(s.rateLimiter.Limit())).
		Write(w)
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
