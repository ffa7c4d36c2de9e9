// Package migrations embeds the SQL schema migrations so every binary can
// migrate its database without shipping the migrations directory.
package migrations

import "embed"

// FS holds the versioned up/down migration files.
//
//go:embed *.sql
var FS embed.FS
