// Package middleware holds the HTTP middleware shared by the API routes.
//
//   - RequestID assigns or propagates X-Request-ID.
//   - Logging writes one access log line per request.
//   - CORS allows credentialed calls from the configured web origins.
//   - RequireSession authenticates the session token and stores the
//     result for Session.
//
// All middleware is generic over handler.Context:
//
//	r.Use(
//		middleware.RequestID[*router.Context](),
//		middleware.Logging[*router.Context](log),
//		middleware.CORS[*router.Context](cfg.CORS),
//	)
package middleware
