package sitebuilder

import "embed"

// migrationFS holds the versioned schema migrations applied by Store.Migrate.
// The same SQL runs on SQLite and PostgreSQL.
//
//go:embed migrations/*.sql
var migrationFS embed.FS
