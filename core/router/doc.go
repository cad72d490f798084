// Package router adapts gorilla/mux to generic handler.HandlerFunc handlers.
//
// Handlers receive a typed context and return a handler.Response; errors
// returned from the response go to a single ErrorHandler. Route patterns use
// gorilla syntax, so path parameters are written as {name}.
//
//	r := router.New[*router.Context](
//		router.WithErrorHandler(response.JSONErrorHandler[*router.Context]),
//	)
//	r.Route("/api/v1/user", func(r router.Router[*router.Context]) {
//		r.Post("/reset-password/{token}", resetPassword)
//	})
package router
