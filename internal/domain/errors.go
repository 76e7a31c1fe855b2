package domain

import "errors"

var (
	// ErrInvalidInput is returned when a raw input line is empty after trimming
	ErrInvalidInput = errors.New("input is empty")

	// ErrUnresolvableURL is returned when a listing URL carries no ZPID segment
	ErrUnresolvableURL = errors.New("no zpid found in listing URL")

	// ErrNoMatch is returned when an address search yields zero candidates
	ErrNoMatch = errors.New("no listing matches address")

	// ErrAmbiguousMatch is returned when multiple equally-ranked candidates
	// exist and none wins the exact-normalized-match tie-break
	ErrAmbiguousMatch = errors.New("multiple listings match address")

	// ErrListingNotFound is returned when the upstream reports the listing as
	// missing or permanently removed; never retried
	ErrListingNotFound = errors.New("listing not found")

	// ErrTimeout is returned when a request exceeds the per-request timeout
	// on every allowed attempt
	ErrTimeout = errors.New("request timed out")

	// ErrRateLimited is returned when the upstream keeps signalling 429
	ErrRateLimited = errors.New("rate limited by upstream")

	// ErrTransportFailure is returned for other transient transport errors
	// that survived all retries
	ErrTransportFailure = errors.New("transport failure")

	// ErrMissingRequiredField is returned when a required listing field
	// (address, zpid, url, propertyType) is absent from the payload
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrCacheMiss is returned when a key is not in the session cache
	ErrCacheMiss = errors.New("cache miss")
)

// Failure kinds carried on Outcomes, one per taxonomy entry
const (
	FailInvalidInput         = "InvalidInput"
	FailUnresolvableURL      = "UnresolvableURL"
	FailNoMatch              = "NoMatch"
	FailAmbiguousMatch       = "AmbiguousMatch"
	FailTimeout              = "Timeout"
	FailRateLimited          = "RateLimited"
	FailListingNotFound      = "ListingNotFound"
	FailTransportFailure     = "TransportFailure"
	FailMissingRequiredField = "MissingRequiredField"
)

// FailureKind maps an error to its taxonomy kind for the Outcome descriptor
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return FailInvalidInput
	case errors.Is(err, ErrUnresolvableURL):
		return FailUnresolvableURL
	case errors.Is(err, ErrNoMatch):
		return FailNoMatch
	case errors.Is(err, ErrAmbiguousMatch):
		return FailAmbiguousMatch
	case errors.Is(err, ErrTimeout):
		return FailTimeout
	case errors.Is(err, ErrRateLimited):
		return FailRateLimited
	case errors.Is(err, ErrListingNotFound):
		return FailListingNotFound
	case errors.Is(err, ErrMissingRequiredField):
		return FailMissingRequiredField
	default:
		return FailTransportFailure
	}
}

// NewFailure builds the structured failure descriptor for one input row
func NewFailure(err error, input string) *Failure {
	return &Failure{
		Kind:    FailureKind(err),
		Message: err.Error(),
		Input:   input,
	}
}
