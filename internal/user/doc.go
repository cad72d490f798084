// Package user defines the account record and the Store boundary used by
// the auth service, with memory, MongoDB and PostgreSQL implementations.
package user
