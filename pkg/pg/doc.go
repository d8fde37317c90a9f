// Package pg bootstraps the PostgreSQL layer: a pgxpool connection with
// startup retries, goose schema migrations routed through the application
// logger, a pool healthcheck, and error helpers for the SQLSTATE checks
// stores care about (not found, duplicate key, foreign key violation).
//
// Config is populated from PG_* environment variables. Typical startup:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer pool.Close()
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil { ... }
package pg
