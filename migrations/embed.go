// Package migrations carries the traffic history schema inside the
// binary. cmd/instrsim blank-imports it, which registers the embedded
// SQL with the database package before Migrate runs; a deployment
// therefore never needs loose schema files on disk.
package migrations

import (
	"embed"

	"github.com/nerrad567/instrument-sim/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
