package migrations

import "embed"

// Files holds the schema history of the task database, applied in version order at startup.
//
//go:embed *.sql
var Files embed.FS
