// Package relay contains the email relay clients the contact form delivers
// through.
package relay

import "errors"

// Failure kinds shared by every relay. Callers match them with errors.Is.
var (
	ErrNetwork      = errors.New("relay: network failure")
	ErrUnauthorized = errors.New("relay: invalid credentials")
	ErrRateLimited  = errors.New("relay: rate limited")
	ErrRejected     = errors.New("relay: message rejected")
	ErrUpstream     = errors.New("relay: upstream error")
)
