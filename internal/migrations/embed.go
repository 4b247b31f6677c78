package migrations

import "embed"

// FS holds the SQL migrations applied to the local client database.
//
//go:embed sqlite/*.sql
var FS embed.FS
