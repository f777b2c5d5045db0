// Package metrics exposes Prometheus collectors for dependency analysis runs.
//
// A Recorder owns a private registry so that embedding programs never see
// collisions with their own metrics. The CLI dumps it in the node_exporter
// textfile format after a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pkgdeps"

// Run outcomes used as the "outcome" label.
const (
	OutcomeOK         = "ok"
	OutcomeEmpty      = "empty"
	OutcomeRootFailed = "root_failed"
	OutcomeError      = "error"
)

// Recorder collects analysis metrics. All methods are safe on a nil
// *Recorder, which records nothing.
type Recorder struct {
	registry *prometheus.Registry

	lookups      prometheus.Counter
	cacheHits    prometheus.Counter
	softFailures prometheus.Counter
	cycles       prometheus.Counter
	runs         *prometheus.CounterVec
	packages     *prometheus.GaugeVec
	edges        *prometheus.GaugeVec
	closureSize  prometheus.Gauge
	runDuration  *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		// lookups counts dependency lookups that reached a package source.
		lookups: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "lookups_total",
			Help:      "Dependency lookups served by a package source",
		}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "cache_hits_total",
			Help:      "Dependency lookups served from the per-run cache",
		}),

		softFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "traversal",
			Name:      "soft_failures_total",
			Help:      "Non-root packages whose lookup failed and were treated as leaves",
		}),

		cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "traversal",
			Name:      "cycles_detected_total",
			Help:      "Traversals that dropped at least one cyclic edge",
		}),

		// runs is labelled by mode (local, remote, bcr) and outcome.
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Analysis runs by source mode and outcome",
		}, []string{"mode", "outcome"}),

		// packages and edges are labelled by direction (forward, reverse).
		packages: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "packages",
			Help:      "Packages in the last analyzed graph",
		}, []string{"direction"}),

		edges: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "edges",
			Help:      "Edges in the last analyzed graph",
		}, []string{"direction"}),

		closureSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "closure_packages",
			Help:      "Packages in the last computed transitive closure",
		}),

		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of analysis runs",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"mode"}),
	}
}

// Registry returns the registry the collectors are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveTraversal records the lookup counters of one graph build.
func (r *Recorder) ObserveTraversal(lookups, cacheHits, softFailures int, cycle bool) {
	if r == nil {
		return
	}
	r.lookups.Add(float64(lookups))
	r.cacheHits.Add(float64(cacheHits))
	r.softFailures.Add(float64(softFailures))
	if cycle {
		r.cycles.Inc()
	}
}

// ObserveGraph records the size of an analyzed graph. direction is
// "forward" or "reverse".
func (r *Recorder) ObserveGraph(direction string, packages, edges int) {
	if r == nil {
		return
	}
	r.packages.WithLabelValues(direction).Set(float64(packages))
	r.edges.WithLabelValues(direction).Set(float64(edges))
}

// ObserveClosure records the size of a transitive closure.
func (r *Recorder) ObserveClosure(size int) {
	if r == nil {
		return
	}
	r.closureSize.Set(float64(size))
}

// ObserveRun records the outcome and duration of one analysis run.
func (r *Recorder) ObserveRun(mode, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(mode, outcome).Inc()
	r.runDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// WriteTextfile writes all collected metrics to path in the Prometheus text
// format, atomically replacing any existing file.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
