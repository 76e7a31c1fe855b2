package usecase

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/domain"
)

// zpidPathPattern matches the ZPID segment of a listing detail URL,
// e.g. /homedetails/7254-Wisteria-Ln/110083637_zpid/
var zpidPathPattern = regexp.MustCompile(`(\d+)_zpid`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// streetAbbreviations maps common USPS street-suffix and directional
// abbreviations to their expanded forms for normalized address comparison
var streetAbbreviations = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"av":   "avenue",
	"ln":   "lane",
	"rd":   "road",
	"dr":   "drive",
	"blvd": "boulevard",
	"ct":   "court",
	"cir":  "circle",
	"pl":   "place",
	"ter":  "terrace",
	"hwy":  "highway",
	"pkwy": "parkway",
	"sq":   "square",
	"n":    "north",
	"s":    "south",
	"e":    "east",
	"w":    "west",
	"ne":   "northeast",
	"nw":   "northwest",
	"se":   "southeast",
	"sw":   "southwest",
}

// ResolverConfig holds configuration for the resolver
type ResolverConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

// Resolver converts lookup keys into canonical listing references.
// ZPID and URL keys resolve locally; address keys issue one upstream search.
// Resolved references are memoized per session so the same key always yields
// the same reference.
type Resolver struct {
	source   domain.ListingSource
	cache    domain.CacheRepository
	baseURL  string
	cacheTTL time.Duration
}

// NewResolver creates a resolver backed by the given listing source and
// session cache. The cache may be nil, in which case memoization is skipped.
func NewResolver(source domain.ListingSource, cache domain.CacheRepository, config ResolverConfig) *Resolver {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.zillow.com"
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	return &Resolver{
		source:   source,
		cache:    cache,
		baseURL:  baseURL,
		cacheTTL: cacheTTL,
	}
}

// Resolve turns a lookup key into a canonical listing reference
func (r *Resolver) Resolve(ctx context.Context, key domain.LookupKey) (domain.ListingReference, error) {
	cacheKey := fmt.Sprintf("resolve:%s:%s", key.Kind, NormalizeAddress(key.Value))

	if zpid, ok := r.cachedZPID(ctx, cacheKey); ok {
		return r.referenceForZPID(zpid), nil
	}

	var zpid string
	var err error

	switch key.Kind {
	case domain.KeyZPID:
		zpid = key.Value
	case domain.KeyURL:
		zpid, err = extractZPIDFromURL(key.Value)
	case domain.KeyAddress:
		zpid, err = r.resolveAddress(ctx, key.Value)
	default:
		return domain.ListingReference{}, domain.ErrInvalidInput
	}

	if err != nil {
		return domain.ListingReference{}, err
	}

	if r.cache != nil {
		if cacheErr := r.cache.Set(ctx, cacheKey, zpid, r.cacheTTL); cacheErr != nil {
			log.Debug().Err(cacheErr).Str("key", cacheKey).Msg("failed to memoize resolved reference")
		}
	}

	return r.referenceForZPID(zpid), nil
}

// cachedZPID looks up a previously resolved ZPID for the same lookup key
func (r *Resolver) cachedZPID(ctx context.Context, cacheKey string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	value, err := r.cache.Get(ctx, cacheKey)
	if err != nil {
		return "", false
	}
	zpid, ok := value.(string)
	return zpid, ok && zpid != ""
}

// referenceForZPID builds the canonical reference for a ZPID
func (r *Resolver) referenceForZPID(zpid string) domain.ListingReference {
	return domain.ListingReference{
		ZPID: zpid,
		URL:  fmt.Sprintf("%s/homedetails/%s_zpid/", r.baseURL, zpid),
	}
}

// extractZPIDFromURL pulls the embedded numeric identifier out of a listing
// URL path or query
func extractZPIDFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnresolvableURL, err)
	}

	if m := zpidPathPattern.FindStringSubmatch(u.Path); m != nil {
		return m[1], nil
	}
	if m := zpidPathPattern.FindStringSubmatch(u.RawQuery); m != nil {
		return m[1], nil
	}
	if zpid := u.Query().Get("zpid"); zpid != "" && isPlausibleZPID(zpid) {
		return zpid, nil
	}

	return "", fmt.Errorf("%w: %s", domain.ErrUnresolvableURL, raw)
}

// resolveAddress issues one upstream search and picks the best candidate.
// Tie-break: an exact normalized match wins; a lone candidate wins by default;
// anything else is ambiguous rather than silently guessed.
func (r *Resolver) resolveAddress(ctx context.Context, address string) (string, error) {
	candidates, err := r.source.SearchByAddress(ctx, address)
	if err != nil {
		return "", err
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrNoMatch, address)
	}

	wanted := NormalizeAddress(address)

	var unique, exact []domain.SearchCandidate
	seen := make(map[string]bool)
	for _, c := range candidates {
		if c.ZPID == "" || seen[c.ZPID] {
			continue
		}
		seen[c.ZPID] = true
		unique = append(unique, c)
		if NormalizeAddress(c.Address) == wanted {
			exact = append(exact, c)
		}
	}

	switch {
	case len(exact) == 1:
		return exact[0].ZPID, nil
	case len(exact) > 1:
		return "", fmt.Errorf("%w: %d exact candidates for %s", domain.ErrAmbiguousMatch, len(exact), address)
	case len(unique) == 0:
		return "", fmt.Errorf("%w: %s", domain.ErrNoMatch, address)
	case len(unique) == 1:
		return unique[0].ZPID, nil
	}

	return "", fmt.Errorf("%w: %d candidates for %s", domain.ErrAmbiguousMatch, len(unique), address)
}

// NormalizeAddress canonicalizes an address for comparison: lowercase,
// punctuation stripped, whitespace collapsed, street-suffix and directional
// abbreviations expanded.
func NormalizeAddress(address string) string {
	lowered := strings.ToLower(strings.TrimSpace(address))
	lowered = strings.NewReplacer(",", " ", ".", " ", "#", " ").Replace(lowered)
	lowered = whitespacePattern.ReplaceAllString(lowered, " ")

	words := strings.Fields(lowered)
	for i, word := range words {
		if expanded, ok := streetAbbreviations[word]; ok {
			words[i] = expanded
		}
	}
	return strings.Join(words, " ")
}
