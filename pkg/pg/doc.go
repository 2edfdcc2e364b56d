// Package pg bootstraps the PostgreSQL layer behind the task queue: pgx/v5
// pooling with connect retries, goose schema migrations, a readiness probe,
// and error helpers shared by the queue repository.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil { ... }
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil { ... }
package pg
