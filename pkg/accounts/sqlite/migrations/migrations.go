// Package migrations embeds the accounts schema's golang-migrate source
// files so the binary carries its own migrations with no filesystem
// dependency at deploy time.
package migrations

import "embed"

// FS holds the embedded .sql migration files.
//
//go:embed *.sql
var FS embed.FS
