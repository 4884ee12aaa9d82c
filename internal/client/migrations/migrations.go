// Package migrations embeds the client's goose migrations (sqlite3 dialect).
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
