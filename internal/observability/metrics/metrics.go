package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for chamber and booking flows.
type SchedulingMetrics struct {
	chamberOps          *prometheus.CounterVec
	bookingsTotal       *prometheus.CounterVec
	persistenceWrites   *prometheus.CounterVec
	confirmationsTotal  *prometheus.CounterVec
	confirmationLatency prometheus.Histogram
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		chamberOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chamber",
			Subsystem: "schedule",
			Name:      "chamber_operations_total",
			Help:      "Chamber upserts and deletes by result",
		}, []string{"operation", "result"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chamber",
			Subsystem: "schedule",
			Name:      "bookings_total",
			Help:      "Slot bookings by result",
		}, []string{"result"}),
		persistenceWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chamber",
			Subsystem: "persistence",
			Name:      "writes_total",
			Help:      "Whole-document persistence writes",
		}, []string{"document", "status"}),
		confirmationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chamber",
			Subsystem: "confirmation",
			Name:      "messages_total",
			Help:      "Confirmation messages by outcome",
		}, []string{"outcome"}),
		confirmationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chamber",
			Subsystem: "confirmation",
			Name:      "generation_seconds",
			Help:      "Latency of external confirmation generation attempts",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.chamberOps, m.bookingsTotal, m.persistenceWrites, m.confirmationsTotal, m.confirmationLatency)
	return m
}

func (m *SchedulingMetrics) ObserveChamberOp(operation, result string) {
	if m == nil {
		return
	}
	m.chamberOps.WithLabelValues(operation, result).Inc()
}

func (m *SchedulingMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(result).Inc()
}

func (m *SchedulingMetrics) ObservePersistenceWrite(document string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.persistenceWrites.WithLabelValues(document, status).Inc()
}

// ObserveConfirmation satisfies confirmation.Observer. Latency is only
// recorded when an external attempt was made.
func (m *SchedulingMetrics) ObserveConfirmation(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.confirmationsTotal.WithLabelValues(outcome).Inc()
	if seconds > 0 {
		m.confirmationLatency.Observe(seconds)
	}
}
