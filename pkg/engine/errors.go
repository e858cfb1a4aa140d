package engine

import "errors"

// Failure taxonomy of the orchestration core. Per-prospect and per-channel
// failures are swallowed with the operation skipped; per-automation failures
// are caught at the tick boundary and logged.
var (
	// ErrNoCredentials means an account carries neither a cookie bundle nor
	// fallback credentials. Fatal for that automation's tick, retried next tick.
	ErrNoCredentials = errors.New("no session cookies or fallback credentials available")

	// ErrAuthenticationFailed means cookies or credentials were rejected, or
	// the authenticated landing surface was never reached.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNotAuthenticated means a session operation was attempted before a
	// successful authentication.
	ErrNotAuthenticated = errors.New("session not authenticated")

	// ErrNotReady means a channel sender has no live backing connection and
	// fails fast instead of attempting delivery.
	ErrNotReady = errors.New("sender not ready")
)
