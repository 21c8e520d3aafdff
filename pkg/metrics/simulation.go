package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the simulation-run HTTP handler
	SimulateLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recosim_simulate_latency_seconds",
		Help:    "Latency of offline simulation run handler",
		Buckets: prometheus.DefBuckets,
	})

	// Latency of the policy-evaluation HTTP handler
	EvaluateLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recosim_evaluate_latency_seconds",
		Help:    "Latency of policy evaluation handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of simulation runs served
	SimulateRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recosim_simulate_requests_total",
		Help: "Total number of simulation run requests",
	})

	// Total number of evaluations served
	EvaluateRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recosim_evaluate_requests_total",
		Help: "Total number of evaluation requests",
	})
)

func Init() {
	prometheus.MustRegister(
		SimulateLatency,
		EvaluateLatency,
		SimulateRequests,
		EvaluateRequests,
	)
}
