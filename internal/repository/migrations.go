package repository

import "embed"

// Migrations holds the versioned SQL schema applied by golang-migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"
