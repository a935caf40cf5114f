// Package migrations embeds the SQL migration files so the binary can
// bring a database up to date without shipping loose files.
package migrations

import "embed"

//go:embed *.sql
var MigrationsFS embed.FS
