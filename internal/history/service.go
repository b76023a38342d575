package history

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

// Backend reads the storage tiers.
type Backend interface {
	// QueryAverage returns channel means per bucket of res in [from, to).
	QueryAverage(ctx context.Context, edgeID int, from, to time.Time, channels []channel.Address, res timedata.Resolution) (*timedata.Table, error)

	// QueryMaxSnapshots returns the last snapshot per bucket of res in
	// [from, to) from a MAX measurement, labelled with the bucket start.
	QueryMaxSnapshots(ctx context.Context, measurement string, edgeID int, from, to time.Time, channels []channel.Address, res timedata.Resolution) (*timedata.Table, error)

	// QueryLastBefore returns the most recent snapshot strictly before
	// instant per channel. Channels without one are omitted.
	QueryLastBefore(ctx context.Context, measurement string, edgeID int, instant time.Time, channels []channel.Address) (timedata.Values, error)
}

// AvailabilityGate rejects queries that start before a channel's data is
// guaranteed complete.
type AvailabilityGate interface {
	CheckAvailable(edgeID int, queryStart int64, channels []channel.Address) error
}

// EdgeResolver maps edge names to ids and timezones without registering
// unknown edges.
type EdgeResolver interface {
	LookupID(ctx context.Context, name string) (int, error)
	Location(ctx context.Context, name string) *time.Location
}

// Observer receives query outcomes.
type Observer interface {
	QueryCompleted(kind string, err error)
}

type noopObserver struct{}

func (noopObserver) QueryCompleted(string, error) {}

// Query kinds reported to the Observer.
const (
	KindRange           = "range"
	KindEnergyTotal     = "energy_total"
	KindEnergyPerPeriod = "energy_per_period"
	KindFirstValue      = "first_value"
)

// Config holds the service settings.
type Config struct {
	// MaxMeasurements maps IANA timezone names to the MAX measurement
	// holding that timezone's daily snapshots.
	MaxMeasurements map[string]string
}

// Service answers historical queries.
//
// Thread Safety:
//   - Safe for concurrent use; it holds no mutable state.
type Service struct {
	cfg      Config
	backend  Backend
	gate     AvailabilityGate
	edges    EdgeResolver
	live     *LiveMerger
	observer Observer
	now      func() time.Time
}

// NewService creates a query service.
//
// Parameters:
//   - cfg: Timezone to measurement mapping
//   - backend: Storage reader
//   - gate: Availability registry
//   - edges: Edge directory
//   - live: Live value source; nil makes live merges fail with ErrMissingLiveCollaborator
func NewService(cfg Config, backend Backend, gate AvailabilityGate, edges EdgeResolver, live LiveValues) *Service {
	s := &Service{
		cfg:      cfg,
		backend:  backend,
		gate:     gate,
		edges:    edges,
		observer: noopObserver{},
		now:      time.Now,
	}
	s.live = NewLiveMerger(live, s)
	s.live.now = func() time.Time { return s.now() }
	return s
}

// SetObserver sets the metrics observer.
func (s *Service) SetObserver(o Observer) {
	s.observer = o
}

// QueryRange returns averaged values per bucket of res in [from, to).
func (s *Service) QueryRange(ctx context.Context, edgeName string, from, to time.Time, channels []channel.Address, res timedata.Resolution) (table *timedata.Table, err error) {
	defer func() { s.observer.QueryCompleted(KindRange, err) }()

	edgeID, err := s.gated(ctx, edgeName, from, channels)
	if err != nil {
		return nil, err
	}
	return s.backend.QueryAverage(ctx, edgeID, from, to, channels, res)
}

// QueryEnergyTotal returns the energy consumed per channel in [from, to).
//
// If to lies in the edge's current day, the live values are used as the
// end reading. Otherwise the end reading is the last snapshot before to
// and the baseline the last snapshot before from; a missing baseline
// counts as zero and a missing end reading yields nil.
func (s *Service) QueryEnergyTotal(ctx context.Context, edgeName string, from, to time.Time, channels []channel.Address) (values timedata.Values, err error) {
	if len(channels) == 0 {
		return timedata.Values{}, nil
	}
	defer func() { s.observer.QueryCompleted(KindEnergyTotal, err) }()

	edgeID, err := s.gated(ctx, edgeName, from, channels)
	if err != nil {
		return nil, err
	}

	if s.reachesToday(ctx, edgeName, to) {
		return s.live.MergeEnergyTotal(ctx, edgeName, from, channels)
	}

	measurement, err := s.maxMeasurement(from.Location())
	if err != nil {
		return nil, err
	}
	end, err := s.backend.QueryLastBefore(ctx, measurement, edgeID, to, channels)
	if err != nil {
		return nil, err
	}
	start, err := s.backend.QueryLastBefore(ctx, measurement, edgeID, from, channels)
	if err != nil {
		return nil, err
	}

	out := make(timedata.Values, len(channels))
	for _, addr := range channels {
		out[addr] = energyBetween(start[addr], end[addr])
	}
	return out, nil
}

// QueryEnergyPerPeriod returns the energy consumed per bucket of res in
// [from, to), one row per bucket.
func (s *Service) QueryEnergyPerPeriod(ctx context.Context, edgeName string, from, to time.Time, channels []channel.Address, res timedata.Resolution) (table *timedata.Table, err error) {
	defer func() { s.observer.QueryCompleted(KindEnergyPerPeriod, err) }()

	edgeID, err := s.gated(ctx, edgeName, from, channels)
	if err != nil {
		return nil, err
	}
	measurement, err := s.maxMeasurement(from.Location())
	if err != nil {
		return nil, err
	}

	// One extra leading bucket supplies the baseline of the first delta.
	snapshots, err := s.backend.QueryMaxSnapshots(ctx, measurement, edgeID, res.Add(res.Truncate(from), -1), to, channels, res)
	if err != nil {
		return nil, err
	}

	if s.reachesToday(ctx, edgeName, to) {
		snapshots, err = s.live.MergeEnergyPerPeriod(ctx, edgeName, from, to, channels, res, snapshots)
		if err != nil {
			return nil, err
		}
	}

	return NormalizeTable(snapshots.Difference(), channels, res, from, to), nil
}

// QueryFirstValueBefore returns the last MAX snapshot before instant per
// channel. It is not gated: it serves as a baseline, not as a result.
func (s *Service) QueryFirstValueBefore(ctx context.Context, edgeName string, instant time.Time, channels []channel.Address) (values timedata.Values, err error) {
	defer func() { s.observer.QueryCompleted(KindFirstValue, err) }()

	edgeID, err := s.edges.LookupID(ctx, edgeName)
	if err != nil {
		return nil, err
	}
	measurement, err := s.maxMeasurement(instant.Location())
	if err != nil {
		return nil, err
	}
	return s.backend.QueryLastBefore(ctx, measurement, edgeID, instant, channels)
}

// gated resolves the edge and checks availability of every channel.
func (s *Service) gated(ctx context.Context, edgeName string, from time.Time, channels []channel.Address) (int, error) {
	edgeID, err := s.edges.LookupID(ctx, edgeName)
	if err != nil {
		return 0, err
	}
	if err := s.gate.CheckAvailable(edgeID, from.Unix(), channels); err != nil {
		return 0, err
	}
	return edgeID, nil
}

func (s *Service) reachesToday(ctx context.Context, edgeName string, to time.Time) bool {
	return timedata.IsTodayOrLater(to, s.now(), s.edges.Location(ctx, edgeName))
}

func (s *Service) maxMeasurement(loc *time.Location) (string, error) {
	name := loc.String()
	m, ok := s.cfg.MaxMeasurements[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTimezoneNotConfigured, name)
	}
	return m, nil
}

// energyBetween subtracts two cumulative readings. A missing start counts
// as zero; a missing or non-numeric end yields nil.
func energyBetween(start, end any) any {
	if end == nil {
		return nil
	}
	if start == nil {
		start = int64(0)
	}
	delta, ok := timedata.Subtract(end, start)
	if !ok {
		return nil
	}
	return delta
}
