// Package migrations embeds the goose SQL migrations that define the
// comments and theme_insights schema. Files are named
// YYYYMMDDHHMMSS_description.sql and applied in order at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
