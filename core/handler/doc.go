// Package handler defines the typed request pipeline used by the router.
//
// A HandlerFunc receives a Context and returns a Response, a deferred
// render step. A Response that returns an error hands it to the router's
// ErrorHandler, which owns the status code and body:
//
//	func me(ctx *router.Context) handler.Response {
//		u, err := svc.CheckAuth(ctx, token)
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(u)
//	}
//
// Middleware wraps a HandlerFunc and may replace or decorate its Response.
package handler
