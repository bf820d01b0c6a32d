// Package gdata posts feed documents to GData endpoints.
//
// Requests are paced by a token bucket (golang.org/x/time/rate) and, when
// an access token is configured, authenticated through golang.org/x/oauth2.
// HTTP failures are classified from googleapi.Error into the sentinel
// errors in errors.go; the original googleapi.Error stays in the chain.
package gdata
