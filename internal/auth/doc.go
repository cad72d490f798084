// Package auth is the authentication gateway. Service owns the account
// lifecycle on top of a user.Store: password signup and login, federated
// login, email verification, password reset and profile updates.
//
// Session tokens and one-time codes come from credential.Issuer. Emails
// are rendered with package message and handed to a Sender, normally a
// delivery.Dispatcher. Reset codes are delivered synchronously and a
// failure is reported as ErrNotificationFailed; welcome and confirmation
// emails are sent in the background and only logged on failure. Call
// Drain on shutdown to let them finish.
//
// Errors are the sentinels in errors.go. Store failures are logged and
// returned as ErrStoreUnavailable so driver details never reach callers.
package auth
