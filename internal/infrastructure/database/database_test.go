package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpen(t *testing.T) {
	t.Run("creates nested directory and file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "var", "lib", "edges.db")

		db, err := Open(context.Background(), Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
			t.Error("database directory was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
		}
	})

	t.Run("in memory", func(t *testing.T) {
		db := openMemoryDB(t)

		if _, err := os.Stat(MemoryPath); !os.IsNotExist(err) {
			t.Error("in-memory database must not touch the filesystem")
		}
		if err := db.HealthCheck(context.Background()); err != nil {
			t.Errorf("HealthCheck() error = %v", err)
		}
	})
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"wal", Config{Path: "/tmp/e.db", WALMode: true, BusyTimeout: 2},
			"file:/tmp/e.db?_busy_timeout=2000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"},
		{"no wal", Config{Path: "/tmp/e.db", BusyTimeout: 1},
			"file:/tmp/e.db?_busy_timeout=1000&_foreign_keys=on"},
		{"memory ignores wal", Config{Path: MemoryPath, WALMode: true},
			"file::memory:?_busy_timeout=0&_foreign_keys=on"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.dsn(); got != tt.want {
				t.Errorf("dsn() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInMemorySharedAcrossCalls(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE t (v TEXT)"); err != nil {
		t.Fatalf("CREATE error = %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO t (v) VALUES (?)", "edge0"); err != nil {
		t.Fatalf("INSERT error = %v", err)
	}

	var got string
	if err := db.QueryRowContext(ctx, "SELECT v FROM t").Scan(&got); err != nil {
		t.Fatalf("SELECT error = %v", err)
	}
	if got != "edge0" {
		t.Errorf("v = %q, want edge0", got)
	}
}

func TestClose(t *testing.T) {
	db := openMemoryDB(t)
	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	var nilDB *DB
	if err := nilDB.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}
}

func TestInTx(t *testing.T) {
	db := openMemoryDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "CREATE TABLE tx_test (v TEXT)"); err != nil {
		t.Fatalf("CREATE error = %v", err)
	}

	insert := func(v string) func(execer) error {
		return func(exec execer) error {
			_, err := exec.ExecContext(ctx, "INSERT INTO tx_test (v) VALUES (?)", v)
			return err
		}
	}

	if err := db.inTx(ctx, insert("committed")); err != nil {
		t.Fatalf("inTx() error = %v", err)
	}

	errBoom := os.ErrInvalid
	err := db.inTx(ctx, func(exec execer) error {
		if err := insert("rolled_back")(exec); err != nil {
			return err
		}
		return errBoom
	})
	if err != errBoom {
		t.Fatalf("inTx() error = %v, want %v", err, errBoom)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tx_test").Scan(&count); err != nil {
		t.Fatalf("SELECT error = %v", err)
	}
	if count != 1 {
		t.Errorf("rows = %d, want 1 (rollback must discard the second insert)", count)
	}
}

func TestStats(t *testing.T) {
	db := openMemoryDB(t)
	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %v, want 1", got)
	}
}

func openMemoryDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Path: MemoryPath})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	return db
}
