// Package migrations holds the embedded database schema for the review service.
package migrations

import "embed"

//go:embed *.up.sql
var Files embed.FS
