package history

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

var (
	soc           = channel.MustParseAddress("_sum/EssSoc")
	charge        = channel.MustParseAddress("_sum/EssDcChargeEnergy")
	buy           = channel.MustParseAddress("_sum/GridBuyActiveEnergy")
	errNoSuchEdge = errors.New("no such edge")
)

type fakeEdges struct {
	ids map[string]int
	loc *time.Location
}

func (f fakeEdges) LookupID(_ context.Context, name string) (int, error) {
	id, ok := f.ids[name]
	if !ok {
		return 0, errNoSuchEdge
	}
	return id, nil
}

// ResolveID lets fakeEdges also serve as an ingest.EdgeResolver.
func (f fakeEdges) ResolveID(ctx context.Context, name string) (int, error) {
	return f.LookupID(ctx, name)
}

func (f fakeEdges) Location(context.Context, string) *time.Location {
	if f.loc == nil {
		return time.UTC
	}
	return f.loc
}

type snapshotCall struct {
	measurement string
	from, to    time.Time
}

// fakeBackend serves canned MAX data.
type fakeBackend struct {
	snapshots     *timedata.Table
	lastBefore    map[int64]timedata.Values
	snapshotCalls []snapshotCall
	calls         int
}

func (f *fakeBackend) QueryAverage(context.Context, int, time.Time, time.Time, []channel.Address, timedata.Resolution) (*timedata.Table, error) {
	f.calls++
	return timedata.NewTable(), nil
}

func (f *fakeBackend) QueryMaxSnapshots(_ context.Context, measurement string, _ int, from, to time.Time, _ []channel.Address, _ timedata.Resolution) (*timedata.Table, error) {
	f.calls++
	f.snapshotCalls = append(f.snapshotCalls, snapshotCall{measurement: measurement, from: from, to: to})
	if f.snapshots == nil {
		return timedata.NewTable(), nil
	}
	return f.snapshots, nil
}

func (f *fakeBackend) QueryLastBefore(_ context.Context, _ string, _ int, instant time.Time, channels []channel.Address) (timedata.Values, error) {
	f.calls++
	out := make(timedata.Values)
	for _, addr := range channels {
		if v, ok := f.lastBefore[instant.Unix()][addr]; ok {
			out[addr] = v
		}
	}
	return out, nil
}

// fakeLive returns fixed live values and counts calls.
type fakeLive struct {
	values timedata.Values
	calls  int
}

func (f *fakeLive) ChannelValues(_ context.Context, _ string, channels []channel.Address) (timedata.Values, error) {
	f.calls++
	out := make(timedata.Values)
	for _, addr := range channels {
		if v, ok := f.values[addr]; ok {
			out[addr] = v
		}
	}
	return out, nil
}

// memStore is a minimal storage double: it accepts points like the
// async writer and answers average queries at the finest resolution.
type memStore struct {
	points []*timedata.Point
}

func (m *memStore) WritePoint(_ timedata.Tier, p *timedata.Point) error {
	m.points = append(m.points, p)
	return nil
}

func (m *memStore) PersistAvailableSince(int, string, int64) error { return nil }

func (m *memStore) QueryAverage(_ context.Context, edgeID int, from, to time.Time, channels []channel.Address, res timedata.Resolution) (*timedata.Table, error) {
	out := timedata.NewTable()
	for _, p := range m.points {
		if p.Measurement != "data" || p.Tags[timedata.EdgeTag] != strconv.Itoa(edgeID) {
			continue
		}
		if p.Time.Before(from) || !p.Time.Before(to) {
			continue
		}
		for _, addr := range channels {
			if v, ok := p.Fields[addr.String()]; ok {
				out.Set(res.Truncate(p.Time), addr, v)
			}
		}
	}
	return out, nil
}

func (m *memStore) QueryMaxSnapshots(context.Context, string, int, time.Time, time.Time, []channel.Address, timedata.Resolution) (*timedata.Table, error) {
	return timedata.NewTable(), nil
}

func (m *memStore) QueryLastBefore(context.Context, string, int, time.Time, []channel.Address) (timedata.Values, error) {
	return timedata.Values{}, nil
}
