package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the scheduling flow.
type BookingMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sensidoc",
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sensidoc",
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Appointment status transitions by target status and outcome",
		}, []string{"to_status", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.transitionsTotal)
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveTransition(toStatus, outcome string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(toStatus, outcome).Inc()
}

// AdvisoryMetrics exposes counters/histograms for metered AI calls.
type AdvisoryMetrics struct {
	invocationsTotal *prometheus.CounterVec
	quotaDenials     *prometheus.CounterVec
	latency          *prometheus.HistogramVec
}

func NewAdvisoryMetrics(reg prometheus.Registerer) *AdvisoryMetrics {
	m := &AdvisoryMetrics{
		invocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sensidoc",
			Subsystem: "advisory",
			Name:      "invocations_total",
			Help:      "Metered AI invocations by service kind and status",
		}, []string{"kind", "status"}),
		quotaDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sensidoc",
			Subsystem: "advisory",
			Name:      "quota_denials_total",
			Help:      "Free-tier requests denied at the monthly ceiling",
		}, []string{"kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sensidoc",
			Subsystem: "advisory",
			Name:      "upstream_latency_seconds",
			Help:      "Latency of upstream AI calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.invocationsTotal, m.quotaDenials, m.latency)
	return m
}

func (m *AdvisoryMetrics) ObserveInvocation(kind, status string) {
	if m == nil {
		return
	}
	m.invocationsTotal.WithLabelValues(kind, status).Inc()
}

func (m *AdvisoryMetrics) ObserveQuotaDenial(kind string) {
	if m == nil {
		return
	}
	m.quotaDenials.WithLabelValues(kind).Inc()
}

func (m *AdvisoryMetrics) ObserveUpstreamLatency(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(kind).Observe(seconds)
}
