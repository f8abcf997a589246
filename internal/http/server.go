package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/engine"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/store"
	"fintrack/internal/views"
)

// StateStore is the part of the store the API needs.
type StateStore interface {
	Snapshot() store.Snapshot
	DispatchSnapshot(ctx context.Context, a engine.Action) (store.Snapshot, error)
}

// Metrics receives request and cache observations and serves /metrics.
type Metrics interface {
	trace.Observer
	RateLimited()
	ViewLookup(view string, hit bool)
	TrackCache(name string, size func() int)
	Handler() http.Handler
}

type versionedCache interface {
	cache.Cleaner
	Size() int
}

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	Addr               string
	Location           *time.Location
	CacheSize          int
	CacheTTL           time.Duration
	RateLimitPerMinute int
	TrustedProxies     []string
	Metrics            Metrics
	Logger             *log.Logger
	Now                func() time.Time
	NewID              func() string
}

type Server struct {
	http.Server

	store   StateStore
	metrics Metrics
	logger  *log.Logger
	loc     *time.Location
	now     func() time.Time
	newID   func() string
	started time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	caches   *cache.Manager

	expenseCache *cache.Versioned[[]core.Expense]
	summaryCache *cache.Versioned[views.Summary]
	seriesCache  *cache.Versioned[[]views.Bucket]
	distCache    *cache.Versioned[[]views.DistributionEntry]

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware around st.
func NewServer(st StateStore, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	detector := security.NewDetector(opts.Logger)
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		store:    st,
		metrics:  opts.Metrics,
		logger:   opts.Logger.WithComponent(log.ComponentHTTP),
		loc:      opts.Location,
		now:      opts.Now,
		newID:    opts.NewID,
		started:  opts.Now(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: detector,
		caches:   cache.NewManager(opts.Logger),

		expenseCache: cache.NewVersioned[[]core.Expense](opts.CacheSize, opts.CacheTTL),
		summaryCache: cache.NewVersioned[views.Summary](opts.CacheSize, opts.CacheTTL),
		seriesCache:  cache.NewVersioned[[]views.Bucket](opts.CacheSize, opts.CacheTTL),
		distCache:    cache.NewVersioned[[]views.DistributionEntry](opts.CacheSize, opts.CacheTTL),
	}
	for name, c := range map[string]versionedCache{
		"expenses":     s.expenseCache,
		"summary":      s.summaryCache,
		"series":       s.seriesCache,
		"distribution": s.distCache,
	} {
		s.caches.Register(c)
		if s.metrics != nil {
			s.metrics.TrackCache(name, c.Size)
		}
	}
	if opts.CacheTTL > 0 {
		s.caches.StartCleanup(opts.CacheTTL)
	}

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.Handle("POST /api/actions",
		s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(http.HandlerFunc(s.handleDispatch)))
	mux.HandleFunc("GET /api/expenses", s.handleExpenses)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/analytics/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/analytics/daily", s.handleDaily)
	mux.HandleFunc("GET /api/analytics/distribution", s.handleDistribution)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var observer trace.Observer
	if s.metrics != nil {
		observer = s.metrics
	}
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.logger, s.detector.ExtractClientIP, observer)

	return tracer.Middleware(s.detector.Middleware(headers.Middleware(mux)))
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RateLimited()
	}
	log.FromContext(r.Context()).Warn("Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r))
	TooManyRequestsError().Write(w)
}

// Shutdown stops background cleanup and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
