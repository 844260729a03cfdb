// Package migrations embeds the SQL schema migrations for demo installs.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
