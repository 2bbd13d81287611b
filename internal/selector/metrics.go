package selector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"itorder/internal/scheduler"
)

var (
	// generatorRuns counts generator invocations.
	// Labels: algorithm, result ("success", "failure")
	generatorRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itorder_generator_runs_total",
		Help: "Test order generator runs by algorithm and result",
	}, []string{"algorithm", "result"})

	generatorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "itorder_generator_duration_seconds",
		Help:    "Test order generator run time",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
	}, []string{"algorithm"})

	generatorStubs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "itorder_generator_stubs",
		Help:    "Stubs required by the produced test order",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"algorithm"})
)

func observe(o scheduler.Outcome) {
	generatorDuration.WithLabelValues(o.Name).Observe(o.Duration.Seconds())
	if o.Err != nil {
		generatorRuns.WithLabelValues(o.Name, "failure").Inc()
		return
	}
	generatorRuns.WithLabelValues(o.Name, "success").Inc()
	generatorStubs.WithLabelValues(o.Name).Observe(float64(o.Result.TotalStubCount))
}
