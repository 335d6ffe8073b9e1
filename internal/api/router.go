package api

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"recycling-route-service/internal/api/handlers"
	"recycling-route-service/internal/config"
	"recycling-route-service/internal/domain"
	"recycling-route-service/internal/platform/obs"
	"recycling-route-service/internal/ports"
)

// Deps are the adapters and settings the HTTP layer is built from.
type Deps struct {
	Source       ports.DatasetSource
	Cache        ports.ResultCache
	Levels       config.Levels
	DefaultLevel string
	Rules        domain.BusinessRules
	Workers      int

	// Name of the dataset backend, reported by /health.
	DataSource string
	StartedAt  time.Time

	// Optimization endpoints share one token bucket. Zero RPS disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	obs.Register()

	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{DataSource: d.DataSource, StartedAt: d.StartedAt}
	levelsHandler := &handlers.LevelsHandler{Levels: d.Levels, DefaultLevel: d.DefaultLevel}
	optimizeHandler := &handlers.OptimizeHandler{
		Source:       d.Source,
		Cache:        d.Cache,
		Levels:       d.Levels,
		DefaultLevel: d.DefaultLevel,
		Rules:        d.Rules,
		Workers:      d.Workers,
	}

	var limiter *rate.Limiter
	if d.RateLimitRPS > 0 {
		burst := d.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(d.RateLimitRPS), burst)
	}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/levels", levelsHandler.List)
	mux.Handle("/optimize", rateLimit(limiter, http.HandlerFunc(optimizeHandler.Optimize)))
	mux.Handle("/optimize/stream", rateLimit(limiter, http.HandlerFunc(optimizeHandler.Stream)))
	mux.Handle("/metrics", obs.Handler())

	return loggingMiddleware(mux)
}
