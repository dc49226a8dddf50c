// Package migrations embebe los archivos SQL de goose en el binario, de modo
// que las migraciones se aplican al arranque sin depender del directorio de
// trabajo del proceso.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
