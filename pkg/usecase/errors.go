package usecase

import "errors"

// Sentinel errors for the use case layer
var (
	// ErrMalformedEvent marks protocol-level rejections; the web layer
	// maps it to a 4xx response and no state is mutated.
	ErrMalformedEvent = errors.New("malformed event")

	// ErrAuthorizationFailed marks a failed OAuth code exchange
	ErrAuthorizationFailed = errors.New("authorization failed")
)
