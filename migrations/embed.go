// Package migrations compiles the SQL migration files into the binary
// so deployments never depend on loose .sql files on disk.
package migrations

import (
	"embed"

	"github.com/quietroom/lockcore/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

// Importing this package (usually blank) hands the embedded filesystem
// to the database layer.
func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}
