// ABOUTME: Package auth validates bearer JWTs and binds identities to requests
// ABOUTME: Identity flows only through context, never as a request parameter

// Package auth turns inbound bearer tokens into verified identities and
// threads them through request contexts. Nothing downstream of this package
// accepts a user id directly; tenant isolation hangs on that rule.
package auth
