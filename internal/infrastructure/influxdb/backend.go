package influxdb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/query"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

// BackendConfig names the measurements the Backend reads.
type BackendConfig struct {
	AvgMeasurement            string
	AvailableSinceMeasurement string
}

// Backend answers history queries with Flux.
//
// Tables come back with timestamps in the location of the query's from
// argument, so callers can normalise them against local bucket grids.
type Backend struct {
	client *Client
	cfg    BackendConfig
}

// NewBackend creates a query backend over client.
func NewBackend(client *Client, cfg BackendConfig) *Backend {
	return &Backend{client: client, cfg: cfg}
}

// QueryAverage returns channel means per bucket of res in [from, to) from
// the average tier. At the finest resolution raw points are returned.
func (b *Backend) QueryAverage(ctx context.Context, edgeID int, from, to time.Time, channels []channel.Address, res timedata.Resolution) (*timedata.Table, error) {
	if len(channels) == 0 {
		return timedata.NewTable(), nil
	}

	q := newQuery(b.client.Bucket(timedata.TierAverage), fluxTime(from), fluxTime(to)).
		measurement(b.cfg.AvgMeasurement).
		edge(edgeID).
		pipe(fieldFilter(channels))
	if res != timedata.Finest {
		q.window(res, "mean", from.Location())
	}
	return b.table(ctx, q, from.Location())
}

// QueryMaxSnapshots returns the last snapshot per bucket of res in
// [from, to) from a MAX measurement, labelled with the bucket start.
func (b *Backend) QueryMaxSnapshots(ctx context.Context, measurement string, edgeID int, from, to time.Time, channels []channel.Address, res timedata.Resolution) (*timedata.Table, error) {
	if len(channels) == 0 {
		return timedata.NewTable(), nil
	}

	q := newQuery(b.client.Bucket(timedata.TierMax), fluxTime(from), fluxTime(to)).
		measurement(measurement).
		edge(edgeID).
		pipe(fieldFilter(channels)).
		window(res, "last", from.Location())
	return b.table(ctx, q, from.Location())
}

// QueryLastBefore returns the most recent MAX snapshot strictly before
// instant for each channel. Channels without one are absent.
func (b *Backend) QueryLastBefore(ctx context.Context, measurement string, edgeID int, instant time.Time, channels []channel.Address) (timedata.Values, error) {
	out := make(timedata.Values, len(channels))
	if len(channels) == 0 {
		return out, nil
	}

	// range stop is exclusive.
	q := newQuery(b.client.Bucket(timedata.TierMax), epoch, fluxTime(instant)).
		measurement(measurement).
		edge(edgeID).
		pipe(fieldFilter(channels)).
		pipe("last()")

	err := b.each(ctx, q, func(rec *query.FluxRecord) {
		if addr, err := channel.ParseAddress(rec.Field()); err == nil {
			out[addr] = rec.Value()
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadAvailableSince reads every persisted availability marker, keeping
// the earliest per edge and channel.
func (b *Backend) LoadAvailableSince(ctx context.Context) (map[int]map[string]int64, error) {
	q := newQuery(b.client.Bucket(timedata.TierAverage), epoch, "now()").
		measurement(b.cfg.AvailableSinceMeasurement).
		pipe(`group(columns: ["` + timedata.EdgeTag + `", "_field"])`).
		pipe("min()")

	out := make(map[int]map[string]int64)
	err := b.each(ctx, q, func(rec *query.FluxRecord) {
		tag, _ := rec.ValueByKey(timedata.EdgeTag).(string)
		edgeID, err := strconv.Atoi(tag)
		if err != nil {
			return
		}
		since, ok := channel.Long(rec.Value())
		if !ok {
			return
		}
		if out[edgeID] == nil {
			out[edgeID] = make(map[string]int64)
		}
		out[edgeID][rec.Field()] = since
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// table runs q and collects the records into a table keyed by record time
// in loc. Records whose field is not a channel address are skipped.
func (b *Backend) table(ctx context.Context, q *fluxQuery, loc *time.Location) (*timedata.Table, error) {
	out := timedata.NewTable()
	err := b.each(ctx, q, func(rec *query.FluxRecord) {
		addr, err := channel.ParseAddress(rec.Field())
		if err != nil {
			return
		}
		out.Set(rec.Time().In(loc), addr, rec.Value())
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) each(ctx context.Context, q *fluxQuery, fn func(*query.FluxRecord)) error {
	if !b.client.IsConnected() {
		return ErrNotConnected
	}

	result, err := b.client.queryAPI().Query(ctx, q.String())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return drain(result, fn)
}

func drain(result *api.QueryTableResult, fn func(*query.FluxRecord)) error {
	defer result.Close() //nolint:errcheck // Read errors surface through Err
	for result.Next() {
		fn(result.Record())
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("%w: reading result: %w", ErrQueryFailed, err)
	}
	return nil
}
