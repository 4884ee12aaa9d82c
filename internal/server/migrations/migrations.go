// Package migrations embeds the server's goose migrations (pgx dialect).
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
