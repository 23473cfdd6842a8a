// Package migrations embeds the sqlite cache schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
