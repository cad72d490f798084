// Package cookie builds HTTP cookies from shared defaults and implements
// the session cookie policy: the session token travels in an HttpOnly,
// SameSite=Strict cookie that is marked Secure in production.
package cookie
