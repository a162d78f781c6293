package metrics

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements [Sink] using the Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	logger *slog.Logger

	pollsTotal      prometheus.Counter
	pollErrorsTotal prometheus.Counter
	pollsSkipped    prometheus.Counter
	rowsReceived    prometheus.Counter
	pollDuration    prometheus.Histogram
	gridRows        prometheus.Gauge
}

var _ Sink = (*PrometheusSink)(nil)

// NewPrometheusSink creates a sink and registers its collectors on reg.
// A collector that fails to register still records values; it is simply
// not exported.
func NewPrometheusSink(reg prometheus.Registerer, logger *slog.Logger) *PrometheusSink {
	if logger == nil {
		logger = slog.Default()
	}

	s := &PrometheusSink{
		logger: logger,

		pollsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triggerboard_polls_total",
			Help: "Total number of fetches issued to the events endpoint.",
		}),
		pollErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triggerboard_poll_errors_total",
			Help: "Total number of fetches that failed and left the grid unchanged.",
		}),
		pollsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triggerboard_polls_skipped_total",
			Help: "Total number of ticks dropped because a fetch was already in flight.",
		}),
		rowsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triggerboard_rows_received_total",
			Help: "Total number of records received across all successful fetches.",
		}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "triggerboard_poll_duration_seconds",
			Help:    "Duration of each fetch in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		gridRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "triggerboard_grid_rows",
			Help: "Number of rows currently displayed by the grid.",
		}),
	}

	s.register(reg, s.pollsTotal, "triggerboard_polls_total")
	s.register(reg, s.pollErrorsTotal, "triggerboard_poll_errors_total")
	s.register(reg, s.pollsSkipped, "triggerboard_polls_skipped_total")
	s.register(reg, s.rowsReceived, "triggerboard_rows_received_total")
	s.register(reg, s.pollDuration, "triggerboard_poll_duration_seconds")
	s.register(reg, s.gridRows, "triggerboard_grid_rows")

	return s
}

// register attempts to register a collector, logging any error without propagating it.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		s.logger.Warn("metrics: failed to register collector", "name", name, "error", err)
	}
}

func (s *PrometheusSink) PollStarted() {
	s.pollsTotal.Inc()
}

func (s *PrometheusSink) PollCompleted(duration time.Duration, rows int, err error) {
	s.pollDuration.Observe(duration.Seconds())
	if err != nil {
		s.pollErrorsTotal.Inc()
		return
	}
	s.rowsReceived.Add(float64(rows))
}

func (s *PrometheusSink) PollSkipped() {
	s.pollsSkipped.Inc()
}

func (s *PrometheusSink) RowsUpdate(n int) {
	s.gridRows.Set(float64(n))
}
