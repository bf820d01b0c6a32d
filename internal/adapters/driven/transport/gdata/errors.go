package gdata

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Feed endpoint errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("gdata: unauthorised (invalid credentials)")

	// ErrForbidden indicates insufficient permissions.
	ErrForbidden = errors.New("gdata: forbidden (insufficient permissions)")

	// ErrNotFound indicates the feed URL does not exist.
	ErrNotFound = errors.New("gdata: feed not found")

	// ErrRateLimited indicates the endpoint's rate limit was exceeded.
	ErrRateLimited = errors.New("gdata: rate limit exceeded")

	// ErrGone indicates the feed was removed.
	ErrGone = errors.New("gdata: feed gone")

	// ErrServer indicates a 5xx response; the batch may be retried whole.
	ErrServer = errors.New("gdata: server error")

	// ErrResponseTooLarge indicates a response body over the configured limit.
	ErrResponseTooLarge = errors.New("gdata: response too large")
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return hasCode(err, ErrUnauthorized, http.StatusUnauthorized)
}

// IsForbidden returns true if the error indicates insufficient permissions.
func IsForbidden(err error) bool {
	return hasCode(err, ErrForbidden, http.StatusForbidden)
}

// IsNotFound returns true if the error indicates a missing feed.
func IsNotFound(err error) bool {
	return hasCode(err, ErrNotFound, http.StatusNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return hasCode(err, ErrRateLimited, http.StatusTooManyRequests)
}

// IsRetryable returns true for rate limiting and server errors.
func IsRetryable(err error) bool {
	if IsRateLimited(err) || errors.Is(err, ErrServer) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code >= http.StatusInternalServerError
}

func hasCode(err, sentinel error, code int) bool {
	if errors.Is(err, sentinel) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == code
	}
	return false
}

// WrapError classifies a googleapi.Error. The result matches both the
// sentinel and the original error.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	var sentinel error
	switch {
	case gerr.Code == http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case gerr.Code == http.StatusForbidden:
		sentinel = ErrForbidden
	case gerr.Code == http.StatusNotFound:
		sentinel = ErrNotFound
	case gerr.Code == http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	case gerr.Code == http.StatusGone:
		sentinel = ErrGone
	case gerr.Code >= http.StatusInternalServerError:
		sentinel = ErrServer
	default:
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
