package migrate

import "embed"

// EmbeddedDir is the directory name inside MigrationsFS.
const EmbeddedDir = "migrations"

// MigrationsFS ships the SQL migrations inside the binary.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
