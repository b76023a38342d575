package ingest

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

// DefaultMidnightWindow is how long before local midnight MAX snapshots
// are accepted.
const DefaultMidnightWindow = 5 * time.Minute

// secondsPerDay shifts MAX availability back one day: a snapshot taken
// tonight covers the whole day that is ending.
const secondsPerDay = 86400

// EdgeResolver maps external edge names to internal ids.
type EdgeResolver interface {
	ResolveID(ctx context.Context, name string) (int, error)
}

// AvailabilityRecorder records the first-seen timestamp of a channel.
type AvailabilityRecorder interface {
	SetIfMissing(edgeID int, ch string, ts int64) (bool, error)
}

// PointWriter submits points to a storage tier without blocking.
type PointWriter interface {
	WritePoint(tier timedata.Tier, p *timedata.Point) error
}

// Logger is the logging surface the router needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Observer receives ingestion counters.
type Observer interface {
	RowsIngested(kind string, rows int)
	BatchDropped(reason string)
}

type noopObserver struct{}

func (noopObserver) RowsIngested(string, int) {}
func (noopObserver) BatchDropped(string)      {}

// MaxZone binds a timezone to the measurement holding its daily snapshots.
type MaxZone struct {
	Location    *time.Location
	Measurement string
}

// Config holds the router settings.
type Config struct {
	AvgMeasurement string
	MaxZones       []MaxZone

	// MidnightWindow defaults to DefaultMidnightWindow when zero.
	MidnightWindow time.Duration
}

// Router classifies incoming rows and writes them to the storage tiers.
//
// Thread Safety:
//   - Ingest may be called concurrently; all state lives in collaborators.
type Router struct {
	cfg       Config
	allowlist *channel.Allowlist
	edges     EdgeResolver
	registry  AvailabilityRecorder
	writer    PointWriter
	logger    Logger
	observer  Observer
}

// NewRouter creates a router.
//
// Parameters:
//   - cfg: Measurements and timezones to route into
//   - allowlist: Immutable channel classification
//   - edges: Resolves edge names to ids
//   - registry: Receives first-seen markers
//   - writer: Asynchronous point sink
func NewRouter(cfg Config, allowlist *channel.Allowlist, edges EdgeResolver, registry AvailabilityRecorder, writer PointWriter) *Router {
	if cfg.MidnightWindow <= 0 {
		cfg.MidnightWindow = DefaultMidnightWindow
	}
	return &Router{
		cfg:       cfg,
		allowlist: allowlist,
		edges:     edges,
		registry:  registry,
		writer:    writer,
		logger:    noopLogger{},
		observer:  noopObserver{},
	}
}

// SetLogger sets the logger.
func (r *Router) SetLogger(logger Logger) {
	r.logger = logger
}

// SetObserver sets the metrics observer.
func (r *Router) SetObserver(o Observer) {
	r.observer = o
}

// IngestJSON decodes an MQTT payload and ingests it. Decode failures are
// logged and the payload dropped.
func (r *Router) IngestJSON(ctx context.Context, edgeName string, kind Kind, payload []byte) {
	if kind == KindRaw {
		return
	}
	batch, err := DecodeBatch(kind, payload)
	if err != nil {
		r.logger.Warn("dropping undecodable batch", "edge", edgeName, "kind", kind, "error", err)
		r.observer.BatchDropped("decode")
		return
	}
	r.Ingest(ctx, edgeName, batch)
}

// Ingest stores a batch for an edge.
//
// Rows are processed in ascending timestamp order. Raw batches are
// ignored. An unresolvable edge drops the whole batch.
func (r *Router) Ingest(ctx context.Context, edgeName string, batch Batch) {
	switch batch.Kind {
	case KindRaw:
		return
	case KindAggregated, KindResend:
	default:
		r.logger.Warn("dropping batch", "edge", edgeName, "error", ErrUnknownKind, "kind", batch.Kind)
		r.observer.BatchDropped("kind")
		return
	}
	if len(batch.Rows) == 0 {
		return
	}

	edgeID, err := r.edges.ResolveID(ctx, edgeName)
	if err != nil {
		r.logger.Warn("dropping batch for unresolvable edge", "edge", edgeName, "error", err)
		r.observer.BatchDropped("edge")
		return
	}

	rows := 0
	for _, ts := range batch.Timestamps() {
		if r.ingestRow(edgeID, time.UnixMilli(ts), batch.Rows[ts]) {
			rows++
		}
	}
	r.observer.RowsIngested(string(batch.Kind), rows)
}

// ingestRow writes one row and reports whether anything was classifiable.
func (r *Router) ingestRow(edgeID int, at time.Time, row map[string]any) bool {
	sec := at.Unix()
	avg := timedata.NewPoint(r.cfg.AvgMeasurement, edgeID, at)
	maxFields := make(fieldSet)

	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		switch r.allowlist.ClassifyName(name) {
		case channel.TypeAvg:
			if r.allowlist.AddValueToPoint(avg, name, row[name]) {
				r.markAvailable(edgeID, name, sec)
			}
		case channel.TypeMax:
			if r.allowlist.AddValueToPoint(maxFields, name, row[name]) {
				r.markAvailable(edgeID, name, sec-secondsPerDay)
			}
		}
	}

	if avg.HasFields() {
		r.write(timedata.TierAverage, avg)
	}
	if len(maxFields) > 0 {
		for _, zone := range r.cfg.MaxZones {
			local := at.In(zone.Location)
			if !inMidnightWindow(local, r.cfg.MidnightWindow) {
				continue
			}
			p := timedata.NewPoint(zone.Measurement, edgeID, timedata.StartOfDay(local))
			for name, v := range maxFields {
				p.AddField(name, v)
			}
			r.write(timedata.TierMax, p)
		}
	}

	return avg.HasFields() || len(maxFields) > 0
}

func (r *Router) markAvailable(edgeID int, ch string, since int64) {
	if _, err := r.registry.SetIfMissing(edgeID, ch, since); err != nil {
		r.logger.Warn("recording channel availability failed", "edge", edgeID, "channel", ch, "error", err)
	}
}

func (r *Router) write(tier timedata.Tier, p *timedata.Point) {
	if err := r.writer.WritePoint(tier, p); err != nil {
		level := r.logger.Error
		if errors.Is(err, context.Canceled) {
			level = r.logger.Debug
		}
		level("submitting point failed", "tier", tier.String(), "measurement", p.Measurement, "error", err)
	}
}

// inMidnightWindow reports whether local lies within window before the
// next local midnight.
func inMidnightWindow(local time.Time, window time.Duration) bool {
	next := timedata.StartOfDay(local).AddDate(0, 0, 1)
	left := next.Sub(local)
	return left > 0 && left <= window
}

// fieldSet collects converted MAX values before they are fanned out to
// the per-timezone points.
type fieldSet map[string]any

func (f fieldSet) AddField(name string, value any) { f[name] = value }
