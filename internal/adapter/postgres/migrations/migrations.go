// Package migrations embeds the postgres cache schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
