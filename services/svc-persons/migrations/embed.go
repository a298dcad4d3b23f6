// Package migrations embeds the SQL schema of the persons service.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
