// Package http exposes the vehicle ledger over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fleetledger/internal/backend"
	"fleetledger/internal/cache"
	"fleetledger/internal/core"
	"fleetledger/internal/middleware/ratelimit"
	"fleetledger/internal/middleware/security"
	"fleetledger/internal/middleware/trace"
)

// Options tune caching and rate limiting. Zero values get defaults.
type Options struct {
	CacheTTL           time.Duration
	CacheMaxSize       int
	RateLimitPerMinute int
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.CacheMaxSize <= 0 {
		o.CacheMaxSize = 100
	}
	if o.RateLimitPerMinute <= 0 {
		o.RateLimitPerMinute = 60
	}
	return o
}

type Server struct {
	http.Server

	backend backend.Backend
	limiter *ratelimit.Limiter

	// Analytics responses are cached per vehicle scope and purged on
	// every record write.
	summaryCache *cache.LRUCache[summaryResponse]
	trendsCache  *cache.LRUCache[trendsResponse]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

type summaryResponse struct {
	VehicleID      string                 `json:"vehicleId,omitempty"`
	Totals         core.AggregateTotals   `json:"totals"`
	Analysis       core.FinancialAnalysis `json:"analysis"`
	Classification string                 `json:"classification"`
	Efficiency     core.EfficiencyMetrics `json:"efficiency"`
}

type trendsResponse struct {
	VehicleID  string                         `json:"vehicleId,omitempty"`
	Currencies map[string]core.CurrencyTrends `json:"currencies"`
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, b backend.Backend, opts Options) *Server {
	opts = opts.withDefaults()

	s := &Server{
		backend: b,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		summaryCache: cache.NewLRUCache[summaryResponse](opts.CacheMaxSize, opts.CacheTTL),
		trendsCache:  cache.NewLRUCache[trendsResponse](opts.CacheMaxSize, opts.CacheTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.trendsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/vehicles", s.handleListVehicles)
	mux.HandleFunc("POST /api/vehicles", s.handleCreateVehicle)
	mux.HandleFunc("GET /api/vehicles/{id}", s.handleGetVehicle)
	mux.HandleFunc("DELETE /api/vehicles/{id}", s.handleDeleteVehicle)

	mux.HandleFunc("GET /api/fuel", s.handleListFuel)
	mux.HandleFunc("POST /api/fuel", s.handleCreateFuel)
	mux.HandleFunc("DELETE /api/fuel/{id}", s.handleDeleteFuel)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/income", s.handleListIncome)
	mux.HandleFunc("POST /api/income", s.handleCreateIncome)
	mux.HandleFunc("DELETE /api/income/{id}", s.handleDeleteIncome)

	mux.HandleFunc("GET /api/analytics/summary", s.handleAnalyticsSummary)
	mux.HandleFunc("GET /api/analytics/trends", s.handleAnalyticsTrends)

	extractor := security.NewIPExtractor()
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(extractor.ExtractClientIP)

	// Rate limiting applies to mutating methods only; reads are cached.
	limited := s.limitWrites(extractor.ExtractClientIP, mux)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           headers.Middleware(tracer.Middleware(limited)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) limitWrites(extractIP func(*http.Request) string, next http.Handler) http.Handler {
	limit := s.limiter.Middleware(extractIP, nil)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			limit.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// invalidateAnalytics drops all cached analytics. Any record change can
// shift totals for both the fleet scope and the vehicle scope.
func (s *Server) invalidateAnalytics() {
	s.summaryCache.Purge()
	s.trendsCache.Purge()
}

// Shutdown stops background cleanup goroutines and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// The backend is the only dependency reads need.
	if _, err := s.backend.ListVehicles(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "backend not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
