package db

import (
	"embed"
	"io/fs"
	"os"
)

// DevMode switches getMigrationsFS to the on-disk migrations directory so
// schema edits don't need a rebuild. Set by the root binary's -dev flag.
var DevMode = false

//go:embed migrations
var migrationsFS embed.FS

// devMigrationsDir is where the .sql files live relative to the repo root.
const devMigrationsDir = "internal/db/migrations"

// getMigrationsFS returns the migration files as a filesystem rooted at the
// directory containing the .sql files.
func getMigrationsFS() (fs.FS, error) {
	if DevMode {
		if _, err := os.Stat(devMigrationsDir); err == nil {
			return os.DirFS(devMigrationsDir), nil
		}
	}
	return fs.Sub(migrationsFS, "migrations")
}
