// Package smtp sends mail over a single long-lived SMTP connection.
//
// A Client keeps at most one connection open. Consecutive messages reuse it
// after an RSET. The connection is re-dialed after any protocol error or
// once it has been idle longer than IdleTimeout. Connect, greeting and
// per-command socket deadlines are enforced separately, and a canceled
// context interrupts an in-flight exchange.
package smtp
