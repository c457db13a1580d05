// Package migrations embeds the golang-migrate SQL migration set applied
// to the Postgres production database. SQLite (used for local development
// and tests) is schema-managed by GORM's own AutoMigrate instead; the two
// mechanisms describe the same two tables and are kept in step by hand.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
