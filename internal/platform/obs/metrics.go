package obs

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "operation_duration_seconds", Help: "Duration of timed internal operations.", Buckets: prometheus.DefBuckets},
		[]string{"op"},
	)

	// DaysPlanned counts day plans by outcome: planned, empty.
	DaysPlanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_days_total", Help: "Collection days processed by outcome."},
		[]string{"outcome"},
	)
	// TwoOptMoves records accepted 2-opt reversals per planned day.
	TwoOptMoves = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "route_two_opt_moves", Help: "Accepted 2-opt moves per day.", Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000, 5000}},
	)
	// TwoOptExhausted counts days whose 2-opt budget ran out before convergence.
	TwoOptExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "route_two_opt_budget_exhausted_total", Help: "Days where 2-opt stopped on its iteration budget."},
	)
	RouteDistance = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "route_distance_km", Help: "Optimized tour length per day in km.", Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500}},
	)
	// DataIssues counts data-quality findings by kind: invalid_row, unpriced_material.
	DataIssues = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_data_issues_total", Help: "Data-quality findings by kind."},
		[]string{"kind"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "result_cache_lookups_total", Help: "Result cache lookups by outcome."},
		[]string{"outcome"},
	)
)

var regOnce sync.Once

// Register adds all collectors to Registry. Safe to call more than once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(
			HTTPRequests,
			HTTPDuration,
			OperationDuration,
			DaysPlanned,
			TwoOptMoves,
			TwoOptExhausted,
			RouteDistance,
			DataIssues,
			CacheLookups,
		)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler exposes Registry in the Prometheus text format.
func Handler() http.Handler {
	Register()
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
