package history

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

// LiveValues provides the current value of channels of an edge. Channels
// without a value are omitted or nil.
type LiveValues interface {
	ChannelValues(ctx context.Context, edgeName string, channels []channel.Address) (timedata.Values, error)
}

// FirstValueQuerier returns the last persisted snapshot before an instant.
type FirstValueQuerier interface {
	QueryFirstValueBefore(ctx context.Context, edgeName string, instant time.Time, channels []channel.Address) (timedata.Values, error)
}

// LiveMerger combines persisted cumulative snapshots with live values for
// queries whose range includes the current day.
type LiveMerger struct {
	live  LiveValues
	first FirstValueQuerier
	now   func() time.Time
}

// NewLiveMerger creates a merger. A nil live source is accepted; merges
// then fail with ErrMissingLiveCollaborator.
func NewLiveMerger(live LiveValues, first FirstValueQuerier) *LiveMerger {
	return &LiveMerger{live: live, first: first, now: time.Now}
}

// MergeEnergyTotal computes the energy between from and now.
//
// The baseline is the last snapshot before from (zero if there is none).
// Numeric live values yield live minus baseline; non-numeric live values
// are passed through. Channels without a live value are nil in the
// result.
//
// Returns:
//   - *NoLiveDataError if no requested channel has a live value
//   - ErrMissingLiveCollaborator if no live source is configured
func (m *LiveMerger) MergeEnergyTotal(ctx context.Context, edgeName string, from time.Time, channels []channel.Address) (timedata.Values, error) {
	current, err := m.liveValues(ctx, edgeName, channels)
	if err != nil {
		return nil, err
	}

	present, err := livePresent(current, channels)
	if err != nil {
		return nil, err
	}

	baseline, err := m.first.QueryFirstValueBefore(ctx, edgeName, from, present)
	if err != nil {
		return nil, err
	}

	out := make(timedata.Values, len(channels))
	for _, addr := range channels {
		out[addr] = nil
	}
	for _, addr := range present {
		live := current[addr]
		base := baseline[addr]
		if base == nil {
			base = int64(0)
		}
		if delta, ok := timedata.Subtract(live, base); ok {
			out[addr] = delta
		} else {
			out[addr] = live
		}
	}
	return out, nil
}

// MergeEnergyPerPeriod adds the live values as a synthetic snapshot at
// the start of the current period to partial.
//
// The current period starts at local midnight, or at the first of the
// month or year for monthly and yearly resolutions, in from's location.
// Live values override any persisted cell at that boundary. Only channels
// with a live value are kept. The caller differences the returned table.
//
// Returns *NoLiveDataError if no requested channel has a live value.
func (m *LiveMerger) MergeEnergyPerPeriod(ctx context.Context, edgeName string, from, _ time.Time, channels []channel.Address, res timedata.Resolution, partial *timedata.Table) (*timedata.Table, error) {
	current, err := m.liveValues(ctx, edgeName, channels)
	if err != nil {
		return nil, err
	}
	present, err := livePresent(current, channels)
	if err != nil {
		return nil, err
	}

	out := timedata.NewTable()
	if partial != nil {
		out = partial.Restrict(present)
	}

	boundary := currentPeriodStart(m.now().In(from.Location()), res)
	for _, addr := range present {
		out.Set(boundary, addr, current[addr])
	}
	return out, nil
}

// livePresent returns the requested channels that have a live value.
func livePresent(current timedata.Values, channels []channel.Address) ([]channel.Address, error) {
	present := make([]channel.Address, 0, len(current))
	for _, addr := range channels {
		if current[addr] != nil {
			present = append(present, addr)
		}
	}
	if len(present) == 0 {
		return nil, &NoLiveDataError{Channels: channel.Sorted(channels)}
	}
	return present, nil
}

func (m *LiveMerger) liveValues(ctx context.Context, edgeName string, channels []channel.Address) (timedata.Values, error) {
	if m == nil || m.live == nil {
		return nil, ErrMissingLiveCollaborator
	}
	return m.live.ChannelValues(ctx, edgeName, channels)
}

// currentPeriodStart returns the bucket the live snapshot belongs to.
// Sub-day resolutions use the day, matching the daily MAX snapshots.
func currentPeriodStart(now time.Time, res timedata.Resolution) time.Time {
	switch res.Unit {
	case timedata.Months, timedata.Years:
		return timedata.Resolution{Value: 1, Unit: res.Unit}.Truncate(now)
	default:
		return timedata.StartOfDay(now)
	}
}
