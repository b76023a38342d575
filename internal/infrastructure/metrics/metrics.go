package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/gray-logic-timedata/internal/availability"
	"github.com/nerrad567/gray-logic-timedata/internal/history"
)

const namespace = "timedata"

// Query and message outcomes used as label values.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeNoLiveData  = "no_live_data"
	OutcomeError       = "error"
)

// Metrics holds the service collectors.
type Metrics struct {
	registry *prometheus.Registry

	pointsWritten  *prometheus.CounterVec
	pointsRejected *prometheus.CounterVec
	writeErrors    *prometheus.CounterVec
	rowsIngested   *prometheus.CounterVec
	batchesDropped *prometheus.CounterVec
	queries        *prometheus.CounterVec
	messages       *prometheus.CounterVec
}

// New creates the collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pointsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_written_total",
			Help:      "Points written to InfluxDB, by tier.",
		}, []string{"tier"}),
		pointsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_rejected_total",
			Help:      "Points dropped before reaching the write queue, by reason.",
		}, []string{"reason"}),
		writeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_errors_total",
			Help:      "Failed InfluxDB writes, by tier.",
		}, []string{"tier"}),
		rowsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_ingested_total",
			Help:      "Timestamp rows ingested from edges, by batch kind.",
		}, []string{"kind"}),
		batchesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_dropped_total",
			Help:      "Edge batches dropped without ingesting, by reason.",
		}, []string{"reason"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "History queries, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mqtt_messages_total",
			Help:      "MQTT messages handled, by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.pointsWritten, m.pointsRejected, m.writeErrors,
		m.rowsIngested, m.batchesDropped, m.queries, m.messages,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// WatchQueue registers a gauge sampling the writer queue length on scrape.
func (m *Metrics) WatchQueue(length func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "writer_queue_length",
		Help:      "Points waiting in the InfluxDB write queue.",
	}, func() float64 { return float64(length()) }))
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// PointWritten implements influxdb.WriteObserver.
func (m *Metrics) PointWritten(tier string) {
	m.pointsWritten.WithLabelValues(tier).Inc()
}

// PointRejected implements influxdb.WriteObserver.
func (m *Metrics) PointRejected(reason string) {
	m.pointsRejected.WithLabelValues(reason).Inc()
}

// WriteFailed implements influxdb.WriteObserver.
func (m *Metrics) WriteFailed(tier string) {
	m.writeErrors.WithLabelValues(tier).Inc()
}

// RowsIngested implements ingest.Observer.
func (m *Metrics) RowsIngested(kind string, rows int) {
	m.rowsIngested.WithLabelValues(kind).Add(float64(rows))
}

// BatchDropped implements ingest.Observer.
func (m *Metrics) BatchDropped(reason string) {
	m.batchesDropped.WithLabelValues(reason).Inc()
}

// QueryCompleted implements history.Observer.
func (m *Metrics) QueryCompleted(kind string, err error) {
	m.queries.WithLabelValues(kind, queryOutcome(err)).Inc()
}

// MessageHandled matches the mqtt.Client message observer.
func (m *Metrics) MessageHandled(_ string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.messages.WithLabelValues(outcome).Inc()
}

func queryOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, availability.ErrChannelUnavailable):
		return OutcomeUnavailable
	case errors.Is(err, history.ErrNoLiveData):
		return OutcomeNoLiveData
	default:
		return OutcomeError
	}
}
