// Package migrations holds the goose SQL migrations, embedded so the API
// binary can migrate without the files on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
