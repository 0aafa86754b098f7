// Package migrations embeds the SQL migration files into the binary.
//
// padlink runs migrations at startup without needing the SQL files on
// disk; importing this package (blank import from main) registers them
// with the database package.
package migrations

import (
	"embed"

	"github.com/padworks/padlink/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files sit at the root of the embedded FS
}
