package repository

import "embed"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsFS exposes the embedded schema migrations for the migrator.
func MigrationsFS() embed.FS {
	return migrationsFS
}
