// Package database provides the SQLite store behind the edge directory.
//
// The directory maps external edge ids ("edge<N>") to internal storage ids
// and records each edge's timezone. It is small, written rarely (once per
// newly seen edge) and read on every ingested batch and every query, so
// the service keeps it in SQLite next to the binary rather than in the
// time-series store.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are embedded by the top-level migrations package and are
// additive: every .up.sql has a matching .down.sql, and columns are only
// ever added with a DEFAULT.
package database
