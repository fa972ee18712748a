// Package migrations embeds the SQL schema migrations so the compiled
// binary can run them standalone, without the source tree present.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
