package timedata

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
)

// Values maps channels to a value. A nil value means "no data".
type Values map[channel.Address]any

// Addresses returns the sorted channel addresses of v.
func (v Values) Addresses() []channel.Address {
	addrs := make([]channel.Address, 0, len(v))
	for a := range v {
		addrs = append(addrs, a)
	}
	slices.SortFunc(addrs, channel.Address.Compare)
	return addrs
}

// MarshalJSON encodes Values as {"component/channel": value}.
func (v Values) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(v))
	for a, val := range v {
		out[a.String()] = val
	}
	return json.Marshal(out)
}

// Cell is one channel value within a Row.
type Cell struct {
	Address channel.Address
	Value   any
}

// Row is one timestamp of a Table with cells in channel order.
type Row struct {
	Time  time.Time
	Cells []Cell
}

// Value returns the cell value for addr.
func (r Row) Value(addr channel.Address) (any, bool) {
	for _, c := range r.Cells {
		if c.Address == addr {
			return c.Value, true
		}
	}
	return nil, false
}

type tableRow struct {
	time   time.Time
	values Values
}

// Table is a time-ordered, channel-ordered result table. It may be sparse:
// rows need not exist for every bucket and cells need not exist for every
// channel.
//
// Table is not safe for concurrent mutation.
type Table struct {
	rows map[int64]*tableRow
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{rows: make(map[int64]*tableRow)}
}

func (t *Table) row(ts time.Time) *tableRow {
	key := ts.Unix()
	r, ok := t.rows[key]
	if !ok {
		r = &tableRow{time: ts.Truncate(time.Second), values: make(Values)}
		t.rows[key] = r
	}
	return r
}

// Set stores a value at the second-truncated timestamp ts.
func (t *Table) Set(ts time.Time, addr channel.Address, v any) {
	t.row(ts).values[addr] = v
}

// SetRow stores all values at ts, creating the row even if values is empty.
func (t *Table) SetRow(ts time.Time, values Values) {
	r := t.row(ts)
	for a, v := range values {
		r.values[a] = v
	}
}

// Get returns the value at ts for addr.
func (t *Table) Get(ts time.Time, addr channel.Address) (any, bool) {
	r, ok := t.rows[ts.Unix()]
	if !ok {
		return nil, false
	}
	v, ok := r.values[addr]
	return v, ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Times returns the row timestamps in ascending order.
func (t *Table) Times() []time.Time {
	keys := t.keys()
	out := make([]time.Time, len(keys))
	for i, k := range keys {
		out[i] = t.rows[k].time
	}
	return out
}

// Rows returns all rows ordered by time, cells ordered by channel.
func (t *Table) Rows() []Row {
	keys := t.keys()
	out := make([]Row, 0, len(keys))
	for _, k := range keys {
		r := t.rows[k]
		cells := make([]Cell, 0, len(r.values))
		for _, a := range r.values.Addresses() {
			cells = append(cells, Cell{Address: a, Value: r.values[a]})
		}
		out = append(out, Row{Time: r.time, Cells: cells})
	}
	return out
}

// Channels returns every channel present in any row, sorted.
func (t *Table) Channels() []channel.Address {
	seen := make(Values)
	for _, r := range t.rows {
		for a := range r.values {
			seen[a] = nil
		}
	}
	return seen.Addresses()
}

// Restrict returns a copy of t containing only the given channels.
// Rows are kept even if they end up empty.
func (t *Table) Restrict(channels []channel.Address) *Table {
	keep := make(map[channel.Address]bool, len(channels))
	for _, a := range channels {
		keep[a] = true
	}
	out := NewTable()
	for _, r := range t.rows {
		nr := out.row(r.time)
		for a, v := range r.values {
			if keep[a] {
				nr.values[a] = v
			}
		}
	}
	return out
}

// Difference returns the per-channel delta between each row and the most
// recent earlier row holding a numeric value for that channel. Cells
// without such a predecessor, or with a non-numeric value, become nil.
func (t *Table) Difference() *Table {
	out := NewTable()
	last := make(Values)
	for _, k := range t.keys() {
		r := t.rows[k]
		nr := out.row(r.time)
		for a, v := range r.values {
			prev, hasPrev := last[a]
			if _, numeric := channel.Float(v); !numeric {
				nr.values[a] = nil
				continue
			}
			last[a] = v
			if !hasPrev {
				nr.values[a] = nil
				continue
			}
			delta, _ := Subtract(v, prev)
			nr.values[a] = delta
		}
	}
	return out
}

// MarshalJSON encodes the table as {"RFC3339 time": {"component/channel": value}}.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := make(map[string]Values, len(t.rows))
	for _, r := range t.rows {
		out[r.time.Format(time.RFC3339)] = r.values
	}
	return json.Marshal(out)
}

func (t *Table) keys() []int64 {
	keys := make([]int64, 0, len(t.rows))
	for k := range t.rows {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Subtract returns a-b. Two integral values produce an int64, anything
// else numeric produces a float64.
func Subtract(a, b any) (any, bool) {
	ai, aInt := integral(a)
	bi, bInt := integral(b)
	if aInt && bInt {
		return ai - bi, true
	}
	af, ok := channel.Float(a)
	if !ok {
		return nil, false
	}
	bf, ok := channel.Float(b)
	if !ok {
		return nil, false
	}
	return af - bf, true
}

// integral returns v as int64 if it is an integer kind or an integer
// json.Number.
func integral(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}
