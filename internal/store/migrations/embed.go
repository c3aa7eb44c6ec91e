// Package migrations embeds the goose migrations of the remote schema.
package migrations

import "embed"

// Migrations holds every *.sql file of this directory.
//
//go:embed *.sql
var Migrations embed.FS
