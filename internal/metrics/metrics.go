// Package metrics holds the Prometheus collectors for powerpack.
//
// Collectors live on a package registry rather than the global default so
// the bridge can serve exactly these series and tests can read them back.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "powerpack"

var (
	// Registry is the registry all powerpack collectors are registered on.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// APIRequests counts platform API requests by method and status code.
	// Transport failures are recorded with status "error".
	APIRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total number of platform API requests",
	}, []string{"method", "status"})

	// Commits counts inline-edit commits by operation and result.
	Commits = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "commits_total",
		Help:      "Total number of inline-edit commits",
	}, []string{"operation", "result"})

	// BridgeHosts is the number of host shells connected to the bridge.
	BridgeHosts = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "bridge_hosts",
		Help:      "Number of connected host shells",
	})
)

// RecordAPIRequest counts one API request. statusCode 0 means the request
// never produced a response.
func RecordAPIRequest(method string, statusCode int) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	APIRequests.WithLabelValues(method, status).Inc()
}

// RecordCommit counts one resolved commit.
func RecordCommit(operation, result string) {
	Commits.WithLabelValues(operation, result).Inc()
}

// Handler serves the powerpack registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
