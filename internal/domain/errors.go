package domain

import "errors"

// Provider adapter errors. Adapters normalize every upstream failure into
// one of these three; retry policy belongs to the request-handling layer,
// never to the adapter itself.
var (
	// ErrNotFound means the upstream provider reported no match.
	ErrNotFound = errors.New("not found upstream")

	// ErrProviderUnavailable means the provider could not be reached or
	// timed out. Transient.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderMalformed means the upstream response could not be parsed
	// into the canonical shape. Logged at the point of detection and
	// surfaced to callers as ErrDataUnavailable.
	ErrProviderMalformed = errors.New("provider response malformed")
)

// Engine errors surfaced to the API layer.
var (
	// ErrUnknownCountry is terminal: the country does not exist as far as
	// the provider is concerned. Not retried.
	ErrUnknownCountry = errors.New("unknown country")

	// ErrDataUnavailable means an upstream provider is down or unusable.
	// Safe to retry the whole request later; the engine does not retry
	// internally.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrUnauthorized means the comparison store was accessed without a
	// valid owner identity.
	ErrUnauthorized = errors.New("unauthorized")
)
