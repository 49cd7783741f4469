package build

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsNamespace prefixes every build metric.
const metricsNamespace = "webdsl"

// metrics holds the Prometheus metrics of a Builder.
type metrics struct {
	pagesBuilt       *prometheus.CounterVec
	pageDuration     prometheus.Histogram
	nodesRecorded    prometheus.Counter
	callbacksSkipped prometheus.Counter
	stylesheetRules  prometheus.Gauge
}

// newMetrics creates the build metrics and registers them on reg. A nil
// reg leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		pagesBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pages_built_total",
			Help:      "Total number of pages built, by status",
		}, []string{"status"}),

		pageDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "page_build_duration_seconds",
			Help:      "Time to record and render one page in seconds",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),

		nodesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "nodes_recorded_total",
			Help:      "Total number of elements recorded",
		}),

		callbacksSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "callbacks_skipped_total",
			Help:      "Event callbacks left out because their source was unavailable",
		}),

		stylesheetRules: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "stylesheet_rules",
			Help:      "Rules and keyframes blocks in the last built stylesheet",
		}),
	}
}
