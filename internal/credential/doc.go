// Package credential issues the secrets the auth flows hand out: 6-digit
// verification codes (24h), 6-digit password reset codes (1h) and HS256
// session tokens (7 days).
//
// Codes are uniform over 100000-999999 from crypto/rand and carry no user
// data. Session tokens bind the user ID as the subject and are verified
// without touching the store.
package credential
