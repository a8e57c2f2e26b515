package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shortly"

// Click rejection reasons used as label values on RejectedClicks.
const (
	ReasonNotFound     = "not_found"
	ReasonExpired      = "expired"
	ReasonLimitReached = "limit_reached"
)

// Metrics bundles the application counters registered on one registry.
type Metrics struct {
	UsersCreated   prometheus.Counter
	LinksCreated   prometheus.Counter
	Clicks         prometheus.Counter
	RejectedClicks *prometheus.CounterVec
	ExpiredSwept   prometheus.Counter
}

// New registers the application metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_created_total",
			Help:      "Number of users created.",
		}),
		LinksCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_created_total",
			Help:      "Number of short links created.",
		}),
		Clicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_total",
			Help:      "Number of successful link accesses.",
		}),
		RejectedClicks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_clicks_total",
			Help:      "Number of rejected link accesses, by reason.",
		}, []string{"reason"}),
		ExpiredSwept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_links_swept_total",
			Help:      "Number of expired links removed by cleanup sweeps.",
		}),
	}
}

// NewNop returns metrics bound to a throwaway registry, for tests and for
// runs with the metrics endpoint disabled.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 10 * time.Second
	defaultPort       = 9090
)

// NewServer builds a basic HTTP server exposing /metrics for the given
// registry.
func NewServer(port int, reg *prometheus.Registry) *http.Server {
	if port == 0 {
		port = defaultPort
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
}
