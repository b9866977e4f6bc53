// internal/database/db.go
//
// SQLite helpers for the bingo server.
// Responsibilities:
//   - Opening a SQLite database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying migrations from an fs.FS (idempotent, recorded in _migrations).
//
// Two drivers are registered:
//   - "sqlite3" (github.com/mattn/go-sqlite3, cgo) is the default.
//   - "sqlite"  (modernc.org/sqlite, pure Go) for CGO_ENABLED=0 builds and tests.
package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const (
	DriverCgo    = "sqlite3"
	DriverPureGo = "sqlite"
)

// Open opens (and creates if missing) a SQLite database file.
//
// The parent directory is created for relative paths like ./data/bingo.db.
func Open(driver, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	var dsn string
	switch driver {
	case DriverCgo, "":
		driver = DriverCgo
		dsn = path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	case DriverPureGo:
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	default:
		return nil, fmt.Errorf("unknown sqlite driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// Migrate applies *.sql files from fsys in lexical order.
//
//   - A _migrations table records applied file names.
//   - Each file runs in its own transaction unless it manages its own
//     (BEGIN TRANSACTION or PRAGMA foreign_keys=OFF), in which case it runs as-is.
func Migrate(db *sql.DB, fsys fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		sqlText := string(sqlBytes)

		upper := strings.ToUpper(sqlText)
		selfManaged := strings.Contains(upper, "BEGIN TRANSACTION") ||
			strings.Contains(upper, "PRAGMA FOREIGN_KEYS=OFF") ||
			strings.Contains(upper, "PRAGMA FOREIGN_KEYS = OFF")

		if selfManaged {
			if _, err := db.Exec(sqlText); err != nil {
				return fmt.Errorf("apply %s: %w", f, err)
			}
			if _, err := db.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
				return fmt.Errorf("record %s: %w", f, err)
			}
			log.Info().Str("migration", f).Msg("applied (self-managed)")
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(sqlText); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// OpenMigrated is Open followed by Migrate.
func OpenMigrated(driver, path string, migrations fs.FS) (*sql.DB, error) {
	db, err := Open(driver, path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
