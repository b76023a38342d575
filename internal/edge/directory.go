package edge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Logger defines the logging interface used by this package.
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

// Directory resolves external edge ids to edges.
//
// Known edges are served from an in-memory cache populated by
// RefreshCache. Resolve registers unknown but well-formed ids ("edge<N>")
// on first sight with the default timezone; Lookup only reads. Anything
// else fails with ErrMalformedEdgeID.
//
// All public methods are thread-safe.
type Directory struct {
	repo      Repository
	defaultTZ *time.Location
	cache     map[string]Edge
	cacheMu   sync.RWMutex
	logger    Logger
}

// NewDirectory creates a directory backed by repo.
func NewDirectory(repo Repository, defaultTZ *time.Location) *Directory {
	if defaultTZ == nil {
		defaultTZ = time.UTC
	}
	return &Directory{
		repo:      repo,
		defaultTZ: defaultTZ,
		cache:     make(map[string]Edge),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the directory.
func (d *Directory) SetLogger(logger Logger) {
	d.logger = logger
}

// RefreshCache reloads all edges from the repository.
// This should be called on application startup.
func (d *Directory) RefreshCache(ctx context.Context) error {
	edges, err := d.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading edges: %w", err)
	}

	d.cacheMu.Lock()
	defer d.cacheMu.Unlock()
	d.cache = make(map[string]Edge, len(edges))
	for _, e := range edges {
		d.cache[e.Name] = e
	}

	d.logger.Info("edge cache refreshed", "count", len(edges))
	return nil
}

// Resolve translates an external edge id, registering it if needed.
//
// Returns ErrMalformedEdgeID if the id is neither known nor well-formed,
// or if its internal id is already held by another name.
func (d *Directory) Resolve(ctx context.Context, name string) (Edge, error) {
	e, known, err := d.lookup(ctx, name)
	if err != nil || known {
		return e, err
	}

	e.CreatedAt = time.Now().UTC()
	if err := d.repo.Create(ctx, &e); err != nil {
		if errors.Is(err, ErrEdgeIDTaken) {
			return Edge{}, fmt.Errorf("%w: %q: %w", ErrMalformedEdgeID, name, err)
		}
		return Edge{}, fmt.Errorf("registering edge %s: %w", name, err)
	}
	d.store(e)
	d.logger.Info("edge registered", "edge", name, "id", e.ID, "timezone", e.TimezoneName())
	return e, nil
}

// Lookup translates an external edge id without registering it. A
// well-formed id that is not registered yet yields an edge with the
// default timezone and a zero CreatedAt.
func (d *Directory) Lookup(ctx context.Context, name string) (Edge, error) {
	e, _, err := d.lookup(ctx, name)
	return e, err
}

// lookup reports whether name is registered. For unregistered
// well-formed names it returns the edge Resolve would create.
func (d *Directory) lookup(ctx context.Context, name string) (Edge, bool, error) {
	d.cacheMu.RLock()
	cached, ok := d.cache[name]
	d.cacheMu.RUnlock()
	if ok {
		return cached, true, nil
	}

	e, err := d.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		d.store(*e)
		return *e, true, nil
	case !errors.Is(err, ErrEdgeNotFound):
		return Edge{}, false, err
	}

	id, ok := ParseName(name)
	if !ok {
		return Edge{}, false, fmt.Errorf("%w: %q", ErrMalformedEdgeID, name)
	}
	return Edge{ID: id, Name: name, Timezone: d.defaultTZ}, false, nil
}

// ResolveID is Resolve returning only the internal id.
func (d *Directory) ResolveID(ctx context.Context, name string) (int, error) {
	e, err := d.Resolve(ctx, name)
	if err != nil {
		return 0, err
	}
	return e.ID, nil
}

// LookupID is Lookup returning only the internal id.
func (d *Directory) LookupID(ctx context.Context, name string) (int, error) {
	e, err := d.Lookup(ctx, name)
	if err != nil {
		return 0, err
	}
	return e.ID, nil
}

// Location returns the timezone of an edge, or the default timezone. It
// never registers the edge.
func (d *Directory) Location(ctx context.Context, name string) *time.Location {
	e, err := d.Lookup(ctx, name)
	if err != nil || e.Timezone == nil {
		return d.defaultTZ
	}
	return e.Timezone
}

// SetTimezone changes the timezone of an edge.
func (d *Directory) SetTimezone(ctx context.Context, name, tz string) error {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, tz)
	}
	e, err := d.Resolve(ctx, name)
	if err != nil {
		return err
	}
	if err := d.repo.SetTimezone(ctx, name, loc); err != nil {
		return err
	}
	e.Timezone = loc
	d.store(e)
	return nil
}

// List returns all edges known to the repository, ordered by id.
func (d *Directory) List(ctx context.Context) ([]Edge, error) {
	return d.repo.List(ctx)
}

func (d *Directory) store(e Edge) {
	d.cacheMu.Lock()
	d.cache[e.Name] = e
	d.cacheMu.Unlock()
}
