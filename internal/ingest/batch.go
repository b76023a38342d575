package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Kind identifies the origin of a batch.
type Kind string

const (
	// KindAggregated is the periodic batch of aggregated edge values.
	KindAggregated Kind = "aggregated"
	// KindResend is backlog an edge replays after a connectivity gap.
	// It is stored exactly like KindAggregated.
	KindResend Kind = "resend"
	// KindRaw carries unaggregated samples; it is accepted and ignored.
	KindRaw Kind = "raw"
)

// ParseKind maps a topic suffix to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindAggregated, KindResend, KindRaw:
		return k, true
	default:
		return "", false
	}
}

// Batch is a set of rows keyed by timestamp in epoch milliseconds, each
// mapping channel names to raw JSON values.
type Batch struct {
	Kind Kind
	Rows map[int64]map[string]any
}

// Timestamps returns the row timestamps in ascending order.
func (b Batch) Timestamps() []int64 {
	ts := make([]int64, 0, len(b.Rows))
	for k := range b.Rows {
		ts = append(ts, k)
	}
	slices.Sort(ts)
	return ts
}

// DecodeBatch parses a {"<tsMillis>": {"<channel>": <value>}} document.
// Numbers are kept as json.Number so LONG channels keep full precision.
func DecodeBatch(kind Kind, payload []byte) (Batch, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var raw map[string]map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Batch{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	b := Batch{Kind: kind, Rows: make(map[int64]map[string]any, len(raw))}
	for key, row := range raw {
		ts, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return Batch{}, fmt.Errorf("%w: timestamp %q", ErrInvalidPayload, key)
		}
		b.Rows[ts] = row
	}
	return b, nil
}
