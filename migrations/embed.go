// Package migrations compiles the schema migration SQL into the binary,
// so a deployed bluehoodd needs no loose .sql files next to it. Importing
// this package for side effects hands the embedded filesystem to the
// database package, which applies pending migrations at startup.
package migrations

import (
	"embed"

	"github.com/nerrad567/bluehood-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	// The embed FS is rooted at this directory.
	database.MigrationsDir = "."
}
