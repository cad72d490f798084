// Package async runs work on another goroutine and hands back a future.
//
//	f := async.Async(ctx, password, hashPassword)
//	hash, err := f.AwaitContext(ctx)
//
// Exec is the error-only variant and ExecAll waits for a batch of them.
// The auth service uses Async to keep bcrypt off the request goroutine
// and Exec for best-effort notifications that are drained on shutdown.
package async
