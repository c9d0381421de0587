// Package migrations embebe el esquema SQL de la aplicación
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
