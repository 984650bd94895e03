package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventmanagement"

// Registry is the Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// Outcome label values shared by the domain counters.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// EventOperations counts event service calls by operation and outcome
var EventOperations = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_operations_total",
		Help:      "Total number of event service operations by outcome",
	},
	[]string{"operation", "outcome"},
)

// Registrations counts registration attempts; "duplicate" marks an already registered user.
var Registrations = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of event registration attempts by outcome",
	},
	[]string{"outcome"},
)

// PDFRenderDuration records how long event PDF rendering takes
var PDFRenderDuration = promauto.With(Registry).NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pdf_render_duration_seconds",
		Help:      "Event PDF rendering latency in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
	},
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
