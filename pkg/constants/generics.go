package constants

import "time"

// RFC 3339 date-time format string.
// Use this format for all date-time serialization and communication with external systems.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// Default rate limiting configuration
const (
	// DefaultRateLimitRequests is the default number of requests allowed per time window
	DefaultRateLimitRequests = 100
	// DefaultRateLimitWindowMinutes is the default time window for rate limiting
	DefaultRateLimitWindowMinutes = 1

	// DefaultSignupRateLimitRequests caps how many waitlist joins one
	// client may attempt per signup window.
	DefaultSignupRateLimitRequests = 3
	// DefaultSignupRateLimitWindowSeconds is the signup admission window.
	DefaultSignupRateLimitWindowSeconds = 60
)

// DefaultRateLimitWindow returns the default rate limit window duration
func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}

// DefaultSignupRateLimitWindow returns the signup admission window duration
func DefaultSignupRateLimitWindow() time.Duration {
	return time.Duration(DefaultSignupRateLimitWindowSeconds) * time.Second
}
