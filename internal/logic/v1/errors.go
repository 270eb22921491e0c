// Package v1 implements the client-side authentication session lifecycle:
// the per-browser session state machine, the OAuth redirect handshake, and
// credential persistence.
//
// Error Handling:
// This package defines sentinel errors for the session operations. They are
// wrapped with context using fmt.Errorf("%w") when returned, and handlers
// map them to HTTP statuses with errors.Is switches.
package v1

import "errors"

// Sentinel errors for session operations.
var (
	// ErrNotAuthenticated indicates the operation requires an authenticated
	// session and none exists.
	// HTTP Status: 401 Unauthorized
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrMissingCallbackParam indicates the OAuth success callback arrived
	// without one of its required query parameters. No state is mutated.
	// HTTP Status: 400 Bad Request
	ErrMissingCallbackParam = errors.New("missing callback parameter")

	// ErrInvalidProfile indicates a profile patch violates the
	// gender/hostel rules.
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidProfile = errors.New("invalid profile")
)
