// Package delivery sends transactional email with fallback.
//
// A Pool holds one Transport per SMTP endpoint: implicit TLS submission,
// STARTTLS on the same host and an optional operator relay. Each transport
// keeps a single connection open between sends, re-dials it after errors
// or idle expiry and draws from a token bucket shared by all transports.
//
// A Dispatcher tries the API provider (Postmark) first when configured and
// then the transports in order. The first success wins; the Report keeps
// every attempt.
//
//	pool, err := delivery.NewPool(cfg, delivery.WithPoolLogger(log))
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//	d := delivery.NewDispatcher(pool, delivery.WithProvider(pm, cfg.APITimeout))
//	report, err := d.Send(ctx, delivery.Message{To: addr, Subject: s, HTML: body})
//
// Delivery is detached from the caller's cancellation. Attempts are
// bounded by their own deadlines, so Send always returns within the sum
// of the configured timeouts plus rate limit waits.
package delivery
