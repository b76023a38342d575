package history

import (
	"time"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

// NormalizeTable shapes delta onto the bucket grid of [from, to) at res,
// in from's location.
//
// The result has exactly one row per bucket and exactly the requested
// channels in every row, in address order. Missing cells are nil; a gap
// is reported as absent rather than as zero consumption. Rows off the
// grid and unrequested channels are dropped.
func NormalizeTable(delta *timedata.Table, channels []channel.Address, res timedata.Resolution, from, to time.Time) *timedata.Table {
	channels = channel.Sorted(channels)
	out := timedata.NewTable()

	for _, bucket := range res.Buckets(from, to) {
		row := make(timedata.Values, len(channels))
		for _, addr := range channels {
			var v any
			if delta != nil {
				v, _ = delta.Get(bucket, addr)
			}
			row[addr] = v
		}
		out.SetRow(bucket, row)
	}
	return out
}
