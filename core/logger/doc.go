// Package logger builds *slog.Logger values and the attribute helpers used
// across the service.
//
//	log := logger.New(
//		logger.WithProduction("cravecorner"),
//		logger.WithContextExtractors(middleware.RequestIDAttr),
//	)
//	log.InfoContext(ctx, "login", logger.UserID(id))
//
// WithDevelopment writes debug-level text; WithStaging and WithProduction
// write info-level JSON. Context extractors add request-scoped attributes
// to every record logged with a request context.
//
// Attribute helpers drop nil or empty values, so logger.Error(nil) adds
// nothing. Recipient masks the local part of an email address.
package logger
