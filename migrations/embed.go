// Package migrations embeds the goose SQL migrations for the Postgres store.
package migrations

import "embed"

// FS contains the embedded Postgres migrations.
//
//go:embed *.sql
var FS embed.FS
