// Package federated verifies third-party identity tokens. GoogleVerifier
// checks Google ID tokens from the web client's Sign-In button against
// the keys Google publishes.
package federated
