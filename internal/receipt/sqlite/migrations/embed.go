package migrations

import "embed"

// FS contains embedded SQLite migrations for receipt storage.
//
//go:embed *.sql
var FS embed.FS
