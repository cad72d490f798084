// Package pg connects to PostgreSQL, the alternative user record store
// selected with STORE_DRIVER=postgres.
//
// Connect builds a pgx pool and retries the first ping. Migrate runs the
// embedded goose migrations through a database/sql handle opened on the
// same pool. Healthcheck returns a readiness probe.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//	if err := pg.Migrate(ctx, pool, migrations, log); err != nil {
//		return err
//	}
//
// Repositories can share a transaction through the context with WithTx
// and TxFromContext. IsDuplicateKeyError and IsNotFoundError classify
// driver errors for callers that map them to domain errors.
package pg
