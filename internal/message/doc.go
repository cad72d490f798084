// Package message renders the transactional emails: verification code,
// welcome, password reset code and reset confirmation. Rendering is pure
// and can be tested without any mail transport.
package message
