package edge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for edge persistence operations.
type Repository interface {
	// GetByName retrieves an edge by its external id.
	// Returns ErrEdgeNotFound if the edge does not exist.
	GetByName(ctx context.Context, name string) (*Edge, error)

	// List retrieves all edges ordered by id.
	List(ctx context.Context) ([]Edge, error)

	// Create inserts an edge. Creating an existing edge is a no-op.
	// Returns ErrEdgeIDTaken if the id belongs to another name.
	Create(ctx context.Context, e *Edge) error

	// SetTimezone updates the timezone of an edge.
	// Returns ErrEdgeNotFound if the edge does not exist.
	SetTimezone(ctx context.Context, name string, tz *time.Location) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db       *sql.DB
	fallback *time.Location
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// fallback is used for rows whose stored timezone can no longer be loaded.
func NewSQLiteRepository(db *sql.DB, fallback *time.Location) *SQLiteRepository {
	if fallback == nil {
		fallback = time.UTC
	}
	return &SQLiteRepository{db: db, fallback: fallback}
}

// GetByName retrieves an edge by its external id.
func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*Edge, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, timezone, created_at FROM edges WHERE name = ?`, name)

	e, err := r.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEdgeNotFound
		}
		return nil, fmt.Errorf("querying edge %s: %w", name, err)
	}
	return e, nil
}

// List retrieves all edges ordered by id.
func (r *SQLiteRepository) List(ctx context.Context) ([]Edge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, timezone, created_at FROM edges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning edge row: %w", err)
		}
		edges = append(edges, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edges: %w", err)
	}
	return edges, nil
}

// Create inserts an edge. Creating an existing edge is a no-op; an id
// held by another name fails with ErrEdgeIDTaken.
func (r *SQLiteRepository) Create(ctx context.Context, e *Edge) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO edges (id, name, timezone, created_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Name, e.TimezoneName(), e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting edge %s: %w", e.Name, err)
	}

	var owner string
	if err := r.db.QueryRowContext(ctx, `SELECT name FROM edges WHERE id = ?`, e.ID).Scan(&owner); err != nil {
		return fmt.Errorf("verifying edge %s: %w", e.Name, err)
	}
	if owner != e.Name {
		return fmt.Errorf("%w: id %d belongs to %s", ErrEdgeIDTaken, e.ID, owner)
	}
	return nil
}

// SetTimezone updates the timezone of an edge.
func (r *SQLiteRepository) SetTimezone(ctx context.Context, name string, tz *time.Location) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE edges SET timezone = ? WHERE name = ?`, tz.String(), name)
	if err != nil {
		return fmt.Errorf("updating edge %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating edge %s: %w", name, err)
	}
	if n == 0 {
		return ErrEdgeNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scan(s scanner) (*Edge, error) {
	var (
		e         Edge
		tz        string
		createdAt string
	)
	if err := s.Scan(&e.ID, &e.Name, &tz, &createdAt); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = r.fallback
	}
	e.Timezone = loc
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
	return &e, nil
}
