package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "club_points",
		Subsystem: "persistence",
		Name:      "last_record_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity record persisted to Postgres.",
	})
	ledgerReplacedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "club_points",
		Subsystem: "persistence",
		Name:      "last_ledger_replaced_timestamp_seconds",
		Help:      "Unix timestamp of the most recent full ledger replacement.",
	})
)

func init() {
	prometheus.MustRegister(recordPersistGauge, ledgerReplacedGauge)
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	recordPersistGauge.Set(float64(ts.Unix()))
}

// RecordLedgerReplaced updates the ledger watermark gauge.
func RecordLedgerReplaced(ts time.Time) {
	if ts.IsZero() {
		return
	}
	ledgerReplacedGauge.Set(float64(ts.Unix()))
}
