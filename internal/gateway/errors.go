package gateway

import (
	"errors"
)

// Sentinel errors used to classify gateway failures. Clients wrap these so
// callers can branch with errors.Is without parsing response bodies.
var (
	// ErrUnauthorized means the credential was missing, invalid, or revoked.
	ErrUnauthorized = errors.New("gateway: unauthorized")
	// ErrRateLimited means the service rejected the call due to quota or rate limits.
	ErrRateLimited = errors.New("gateway: rate limited")
	// ErrUnavailable means the service is temporarily failing (5xx, network errors).
	ErrUnavailable = errors.New("gateway: service unavailable")
	// ErrMalformedResponse means the service replied but the payload was unusable
	// (non-JSON content, non-array payload, missing required fields, empty text).
	ErrMalformedResponse = errors.New("gateway: malformed response")
)

// FailureKind is the coarse classification surfaced to the session controller.
type FailureKind string

const (
	FailureUnauthorized FailureKind = "unauthorized"
	FailureRateLimited  FailureKind = "rate_limited"
	FailureUnavailable  FailureKind = "unavailable"
	FailureMalformed    FailureKind = "malformed"
	FailureUnknown      FailureKind = "unknown"
)

// Classify maps a gateway error to its failure kind.
func Classify(err error) FailureKind {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return FailureUnauthorized
	case errors.Is(err, ErrRateLimited):
		return FailureRateLimited
	case errors.Is(err, ErrUnavailable):
		return FailureUnavailable
	case errors.Is(err, ErrMalformedResponse):
		return FailureMalformed
	default:
		return FailureUnknown
	}
}
