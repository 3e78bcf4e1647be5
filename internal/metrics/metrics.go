package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
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
		[]string{"method", "path", "status"},
	)

	// UpstreamCalls counts calls to external providers by outcome.
	UpstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "upstream_calls_total", Help: "Calls to external providers by provider and outcome."},
		[]string{"provider", "outcome"},
	)

	ItineraryDays = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "itinerary_days", Help: "Days produced per scheduling call.", Buckets: []float64{1, 2, 3, 4, 5, 7, 10, 14, 21, 30}},
	)
	// ForcedDays counts days created by the forced-progress rule.
	ForcedDays = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "itinerary_forced_days_total", Help: "Days that exceeded the drive budget to guarantee progress."},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(UpstreamCalls)
		Registry.MustRegister(ItineraryDays)
		Registry.MustRegister(ForcedDays)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
