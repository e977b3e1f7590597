// Package db persists reconstruction runs in SQLite: run metadata, the
// canonical input samples and the baked per-frame track points. The schema
// is owned by golang-migrate over an embedded migrations filesystem; admin
// and debug surfaces (tailsql, backup, stats) attach to the server mux.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// connPragmas apply to every pooled connection via the DSN. WAL for
// concurrent readers, 5s busy timeout, NORMAL sync, in-memory temp tables.
const connPragmas = "?_pragma=journal_mode(WAL)" +
	"&_pragma=busy_timeout(5000)" +
	"&_pragma=synchronous(NORMAL)" +
	"&_pragma=temp_store(MEMORY)" +
	"&_pragma=foreign_keys(ON)"

// OpenDB opens the database at path without touching the schema. Use it
// when migrations are managed explicitly, e.g. by the migrate subcommand.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", "file:"+path+connPragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &DB{sqlDB}, nil
}

// NewDB opens the database and applies all pending migrations.
func NewDB(path string) (*DB, error) {
	return NewDBWithMigrationCheck(path, true)
}

// NewDBWithMigrationCheck opens the database. With autoMigrate set it
// applies pending migrations; otherwise it only compares the schema version
// against the embedded migrations and refuses to serve a stale database.
func NewDBWithMigrationCheck(path string, autoMigrate bool) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		db.Close()
		return nil, err
	}

	if autoMigrate {
		if err := db.MigrateUp(migrationsFS); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	if mustExit, err := db.CheckAndPromptMigrations(migrationsFS); mustExit {
		db.Close()
		return nil, err
	}
	return db, nil
}
