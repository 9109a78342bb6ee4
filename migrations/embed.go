// Package migrations holds the Postgres schema as goose migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
