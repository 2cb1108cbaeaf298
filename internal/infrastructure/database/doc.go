// Package database opens lockcore's SQLite store and runs its embedded
// schema migrations.
//
// The lock is a single device writing an append-mostly event stream, so
// the setup is deliberately simple: one connection, WAL journaling for
// concurrent reads, foreign keys on, and a busy timeout instead of
// retry loops. The file is created with owner-only permissions because
// it holds the lock's full access history.
//
// Migrations are embedded by the top-level migrations package and
// applied on startup:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, ...})
//	if err != nil { ... }
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil { ... }
//
// Migration files come in version-ordered pairs
// (YYYYMMDD_HHMMSS_description.up.sql and .down.sql); each applies in
// its own transaction so a failure leaves earlier migrations committed.
package database
