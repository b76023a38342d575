package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

// liveSnapshot holds the current values of one edge.
type liveSnapshot struct {
	values  map[channel.Address]any
	updated time.Time
}

// LiveCache keeps the most recent value of every channel per edge.
//
// Values older than maxAge are treated as absent, so a disconnected edge
// does not answer "now" queries with stale readings.
type LiveCache struct {
	mu     sync.RWMutex
	edges  map[string]*liveSnapshot
	maxAge time.Duration
	now    func() time.Time
}

// NewLiveCache creates a cache. A maxAge of zero disables expiry.
func NewLiveCache(maxAge time.Duration) *LiveCache {
	return &LiveCache{
		edges:  make(map[string]*liveSnapshot),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Update merges values into the snapshot of an edge. Names that are not
// valid channel addresses are ignored.
func (c *LiveCache) Update(edgeID string, values map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, ok := c.edges[edgeID]
	if !ok {
		snap = &liveSnapshot{values: make(map[channel.Address]any, len(values))}
		c.edges[edgeID] = snap
	}
	for name, v := range values {
		addr, err := channel.ParseAddress(name)
		if err != nil {
			continue
		}
		snap.values[addr] = v
	}
	snap.updated = c.now()
}

// UpdateJSON decodes a flat {"component/channel": value} payload and
// merges it into the snapshot of an edge.
func (c *LiveCache) UpdateJSON(edgeID string, payload []byte) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return fmt.Errorf("decoding current values of %s: %w", edgeID, err)
	}
	c.Update(edgeID, values)
	return nil
}

// ChannelValues returns the live values of the requested channels. Channels
// without a current value are omitted from the result.
func (c *LiveCache) ChannelValues(_ context.Context, edgeID string, channels []channel.Address) (timedata.Values, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(timedata.Values, len(channels))
	snap, ok := c.edges[edgeID]
	if !ok {
		return out, nil
	}
	if c.maxAge > 0 && c.now().Sub(snap.updated) > c.maxAge {
		return out, nil
	}
	for _, addr := range channels {
		if v, ok := snap.values[addr]; ok && v != nil {
			out[addr] = v
		}
	}
	return out, nil
}

// Forget drops the snapshot of an edge.
func (c *LiveCache) Forget(edgeID string) {
	c.mu.Lock()
	delete(c.edges, edgeID)
	c.mu.Unlock()
}
