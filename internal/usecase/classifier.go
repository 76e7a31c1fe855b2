package usecase

import (
	"net/url"
	"strings"

	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/domain"
)

// ZPIDs observed in the wild run 7-9 digits; the bounds leave headroom on
// both sides so short parcel numbers and long timestamps don't misclassify.
const (
	minZPIDDigits = 5
	maxZPIDDigits = 12
)

const listingDomain = "zillow.com"

// Classify tags a raw input line as one of the three accepted forms.
// Priority: listing URL, then all-digit ZPID of plausible length, then
// address. Pure and deterministic; empty input is the only failure.
func Classify(raw string) (domain.LookupKey, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return domain.LookupKey{}, domain.ErrInvalidInput
	}

	if isListingURL(cleaned) {
		return domain.LookupKey{Kind: domain.KeyURL, Value: cleaned}, nil
	}

	if isPlausibleZPID(cleaned) {
		return domain.LookupKey{Kind: domain.KeyZPID, Value: cleaned}, nil
	}

	return domain.LookupKey{Kind: domain.KeyAddress, Value: cleaned}, nil
}

// isListingURL checks for an http(s) URL whose host belongs to the listing
// domain. URLs pointing elsewhere fall through to address classification.
func isListingURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == listingDomain || strings.HasSuffix(host, "."+listingDomain)
}

// isPlausibleZPID checks for an all-digit string of plausible identifier length
func isPlausibleZPID(s string) bool {
	if len(s) < minZPIDDigits || len(s) > maxZPIDDigits {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
