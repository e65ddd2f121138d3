// Package migrations embeds SQL migration files for golang-migrate, tests and tooling.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
