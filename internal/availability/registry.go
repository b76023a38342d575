package availability

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
)

// Persister durably records an availability marker. The timedata service
// writes markers through the same async path as telemetry.
type Persister interface {
	PersistAvailableSince(edgeID int, ch string, since int64) error
}

// Loader reads all persisted markers, keyed by edge id then channel name.
type Loader interface {
	LoadAvailableSince(ctx context.Context) (map[int]map[string]int64, error)
}

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// edgeChannels holds the markers of one edge.
type edgeChannels struct {
	mu    sync.RWMutex
	since map[string]int64
}

// Registry tracks the earliest valid timestamp per edge and channel.
//
// All public methods are thread-safe.
type Registry struct {
	edges     sync.Map // int -> *edgeChannels
	persister Persister
	logger    Logger
}

// NewRegistry creates an empty registry. persister may be nil, in which
// case markers are kept in memory only.
func NewRegistry(persister Persister) *Registry {
	return &Registry{
		persister: persister,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Load replaces the registry contents with a bulk snapshot.
func (r *Registry) Load(bulk map[int]map[string]int64) {
	r.Clear()
	channels := 0
	for edgeID, markers := range bulk {
		ec := &edgeChannels{since: make(map[string]int64, len(markers))}
		for ch, since := range markers {
			ec.since[ch] = since
		}
		channels += len(markers)
		r.edges.Store(edgeID, ec)
	}
	r.logger.Info("availability registry loaded", "edges", len(bulk), "channels", channels)
}

// LoadFrom bulk-loads the registry from a Loader.
func (r *Registry) LoadFrom(ctx context.Context, loader Loader) error {
	bulk, err := loader.LoadAvailableSince(ctx)
	if err != nil {
		return fmt.Errorf("loading availability markers: %w", err)
	}
	r.Load(bulk)
	return nil
}

// Clear drops all markers.
func (r *Registry) Clear() {
	r.edges.Range(func(key, _ any) bool {
		r.edges.Delete(key)
		return true
	})
}

// SetIfMissing records ts as the earliest valid timestamp of the channel
// unless a marker already exists.
//
// The marker is persisted before memory is updated. If persisting fails,
// memory is left unchanged and the error returned, so a later sample
// retries.
//
// Returns:
//   - bool: true if a new marker was recorded
//   - error: the persister error, if any
func (r *Registry) SetIfMissing(edgeID int, ch string, ts int64) (bool, error) {
	ec := r.edge(edgeID)

	ec.mu.RLock()
	_, exists := ec.since[ch]
	ec.mu.RUnlock()
	if exists {
		return false, nil
	}

	ec.mu.Lock()
	defer ec.mu.Unlock()
	if _, exists := ec.since[ch]; exists {
		return false, nil
	}

	if r.persister != nil {
		if err := r.persister.PersistAvailableSince(edgeID, ch, ts); err != nil {
			return false, fmt.Errorf("persisting available-since for %s: %w", ch, err)
		}
	}
	ec.since[ch] = ts

	r.logger.Debug("channel available", "edge", edgeID, "channel", ch, "since", ts)
	return true, nil
}

// AvailableSince returns the marker of a channel.
func (r *Registry) AvailableSince(edgeID int, ch string) (int64, bool) {
	v, ok := r.edges.Load(edgeID)
	if !ok {
		return 0, false
	}
	ec := v.(*edgeChannels)
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	since, ok := ec.since[ch]
	return since, ok
}

// Snapshot returns a copy of all markers of an edge, or nil if the edge is
// unknown.
func (r *Registry) Snapshot(edgeID int) map[string]int64 {
	v, ok := r.edges.Load(edgeID)
	if !ok {
		return nil
	}
	ec := v.(*edgeChannels)
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	if len(ec.since) == 0 {
		return nil
	}
	out := make(map[string]int64, len(ec.since))
	for ch, since := range ec.since {
		out[ch] = since
	}
	return out
}

// CheckAvailable gates a query starting at queryStart (epoch seconds).
//
// Returns nil if every channel is available, otherwise an
// *UnavailableError for the first failing channel. An edge without any
// registry entry is unrestricted.
func (r *Registry) CheckAvailable(edgeID int, queryStart int64, channels []channel.Address) error {
	v, ok := r.edges.Load(edgeID)
	if !ok {
		return nil
	}
	ec := v.(*edgeChannels)
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	// An entry whose first marker failed to persist is still unknown.
	if len(ec.since) == 0 {
		return nil
	}

	for _, addr := range channels {
		since, ok := ec.since[addr.String()]
		if !ok {
			return &UnavailableError{
				EdgeID:     edgeID,
				Channel:    addr,
				Reason:     ReasonNeverSeen,
				QueryStart: queryStart,
			}
		}
		if queryStart < since {
			return &UnavailableError{
				EdgeID:         edgeID,
				Channel:        addr,
				Reason:         ReasonTooEarly,
				AvailableSince: since,
				QueryStart:     queryStart,
			}
		}
	}
	return nil
}

// edge returns the channel map of an edge, creating it if needed.
func (r *Registry) edge(edgeID int) *edgeChannels {
	if v, ok := r.edges.Load(edgeID); ok {
		return v.(*edgeChannels)
	}
	v, _ := r.edges.LoadOrStore(edgeID, &edgeChannels{since: make(map[string]int64)})
	return v.(*edgeChannels)
}
