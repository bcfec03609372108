package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the appointment booking flow.
type BookingMetrics struct {
	bookingsTotal  *prometheus.CounterVec
	conflictsTotal *prometheus.CounterVec
	sweptTotal     prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Total appointment writes by operation",
		}, []string{"operation"}),
		conflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "appointments",
			Name:      "conflicts_total",
			Help:      "Total booking attempts rejected by conflict checks",
		}, []string{"reason"}),
		sweptTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "appointments",
			Name:      "swept_total",
			Help:      "Total past appointments marked completed by the sweeper",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.conflictsTotal, m.sweptTotal)
	return m
}

func (m *BookingMetrics) ObserveBooking(operation string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(operation).Inc()
}

func (m *BookingMetrics) ObserveConflict(reason string) {
	if m == nil {
		return
	}
	m.conflictsTotal.WithLabelValues(reason).Inc()
}

func (m *BookingMetrics) ObserveSwept(count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.sweptTotal.Add(float64(count))
}
