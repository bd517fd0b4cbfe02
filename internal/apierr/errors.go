// Package apierr holds the sentinels every HTTP client in this program
// maps its provider-specific failures onto, plus the retry policy built
// on that classification.
//
// A client wraps the sentinel at the point it reads the status code,
// fmt.Errorf("status 429: %w", apierr.ErrRateLimit); everything upstream
// tests with errors.Is and stays ignorant of which provider failed.
package apierr

import "errors"

// Failures classified by what the caller can do about them.
var (
	// ErrRateLimit means the provider is shedding load. Retryable.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded means the account is out of credit. Retrying
	// cannot help.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout covers deadlines hit while waiting on the provider.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed means the API key was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest covers 4xx responses with no more specific sentinel.
	ErrBadRequest = errors.New("bad request")

	// ErrServerError covers 5xx responses. Retryable.
	ErrServerError = errors.New("server error")
)

// Retryable reports whether err is worth retrying: rate limits, timeouts,
// and server-side failures recover on their own; auth, quota, and bad
// requests do not.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServerError)
}
