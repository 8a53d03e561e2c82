package migrations

import "embed"

// InitUp имя файла начальной схемы
const InitUp = "001_init.up.sql"

// FS SQL-миграции схемы сервиса
//
//go:embed *.sql
var FS embed.FS
