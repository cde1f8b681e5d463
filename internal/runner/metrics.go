package runner

import "github.com/prometheus/client_golang/prometheus"

var (
	runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "club_points",
		Subsystem: "scoring",
		Name:      "run_duration_seconds",
		Help:      "Time spent loading the snapshot, scoring, and replacing the ledger.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	runsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "club_points",
		Subsystem: "scoring",
		Name:      "runs_failed_total",
		Help:      "Number of scoring runs that were skipped because of a failure.",
	})

	lastRunEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "club_points",
		Subsystem: "scoring",
		Name:      "last_run_entries",
		Help:      "Point entries produced by the most recent successful run.",
	})
)

func init() {
	prometheus.MustRegister(runDuration, runsFailed, lastRunEntries)
}
