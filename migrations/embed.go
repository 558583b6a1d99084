// Package migrations embeds the SQLite schema so binaries run without the
// source tree.
package migrations

import "embed"

// FS holds the numbered .sql migration files
//
//go:embed *.sql
var FS embed.FS
