// Package metrics holds the prometheus collectors for curve builds and
// repricing runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the registry every aqumen collector is registered with.
var Registry = prometheus.NewRegistry()

var (
	CurveBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aqumen",
			Name:      "curve_builds_total",
			Help:      "Curves built or rebuilt, by curve name.",
		},
		[]string{"curve"},
	)

	CurveBuildFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aqumen",
			Name:      "curve_build_failures_total",
			Help:      "Curve builds that returned an error, by curve name.",
		},
		[]string{"curve"},
	)

	CurveBuildSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "aqumen",
			Name:      "curve_build_seconds",
			Help:      "Wall time of a single curve build.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)

	Repricings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aqumen",
			Name:      "repricings_total",
			Help:      "Pricer revaluations, by kind (risk or scenario).",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(CurveBuilds, CurveBuildFailures, CurveBuildSeconds, Repricings)
}

// ObserveCurveBuild records one build of the named curve.
func ObserveCurveBuild(name string, elapsed time.Duration, err error) {
	CurveBuilds.WithLabelValues(name).Inc()
	CurveBuildSeconds.Observe(elapsed.Seconds())
	if err != nil {
		CurveBuildFailures.WithLabelValues(name).Inc()
	}
}

// AddRepricings counts n revaluations of the given kind.
func AddRepricings(kind string, n int) {
	Repricings.WithLabelValues(kind).Add(float64(n))
}

// WriteTextfile dumps the registry in the text exposition format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("WriteTextfile: %w", err)
	}
	return nil
}
