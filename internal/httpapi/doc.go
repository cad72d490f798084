// Package httpapi exposes the account service over HTTP under /api/v1/user.
//
// Bodies are JSON. Success responses use the envelope
// {"success": true, "message": ..., "user": {...}}; failures are rendered by
// ErrorHandler as {"success": false, "code": ..., "message": ...} with fixed
// messages chosen in MapError, so store and provider errors never reach
// clients. Login and Google sign-in set the session cookie; logout clears it.
// The session routes accept the cookie or an Authorization: Bearer header.
package httpapi
