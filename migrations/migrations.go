package migrations

import "embed"

// Migration files are compiled into the binary so a deployment is a
// single artifact with no external schema directory.
//
//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
