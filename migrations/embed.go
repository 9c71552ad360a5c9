// Package migrations holds the ordered SQL schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
