package llm

import "errors"

// Sentinel errors let the answer pipeline pick a user-facing apology per
// failure class without parsing provider messages.
var (
	// ErrRateLimited is returned when the provider answers 429.
	ErrRateLimited = errors.New("llm: rate limited")
	// ErrTimeout is returned when a request exceeds its deadline.
	ErrTimeout = errors.New("llm: request timed out")
	// ErrAPI is returned for any other provider-side failure.
	ErrAPI = errors.New("llm: api error")
)
