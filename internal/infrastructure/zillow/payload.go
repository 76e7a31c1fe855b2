package zillow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/domain"
)

var (
	scriptPattern     = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)
	slugStripPattern  = regexp.MustCompile(`[^0-9a-zA-Z\s-]`)
	slugSpacesPattern = regexp.MustCompile(`\s+`)
)

var errNoPayload = errors.New("no listing payload found in response")

// parseListingBody extracts the raw listing payload from a detail-page
// response. The response is either plain JSON or an HTML page with the
// listing data embedded in a script tag; either way the first JSON object
// carrying a zpid is taken as the payload. Pages without a usable JSON blob
// fall back to scraping the visible HTML text.
func parseListingBody(body []byte, pageURL string) (*domain.RawListing, error) {
	if root, err := decodeEmbeddedJSON(body); err == nil {
		if payload := findListingObject(root); payload != nil {
			listing := listingFromMap(payload)
			if listing.URL == "" {
				listing.URL = pageURL
			}
			return listing, nil
		}
	}

	listing := listingFromHTML(body)
	if listing == nil {
		return nil, errNoPayload
	}
	if listing.URL == "" {
		listing.URL = pageURL
	}
	return listing, nil
}

// parseSearchBody extracts address-search candidates from a search-page
// response, preserving source order where the source provides one
func parseSearchBody(body []byte) ([]domain.SearchCandidate, error) {
	root, err := decodeEmbeddedJSON(body)
	if err != nil {
		return nil, err
	}

	var candidates []domain.SearchCandidate
	seen := make(map[string]bool)
	collectCandidates(root, seen, &candidates)

	return candidates, nil
}

// decodeEmbeddedJSON decodes a response body that is either JSON itself or
// HTML with JSON embedded in script tags. Numbers are kept as json.Number so
// large ZPIDs and prices survive intact.
func decodeEmbeddedJSON(body []byte) (interface{}, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		if value, err := decodeJSONValue(trimmed); err == nil {
			return value, nil
		}
	}

	for _, match := range scriptPattern.FindAllSubmatch(body, -1) {
		script := match[1]
		if !bytes.Contains(script, []byte("zpid")) {
			continue
		}
		start := bytes.IndexByte(script, '{')
		end := bytes.LastIndexByte(script, '}')
		if start == -1 || end <= start {
			continue
		}
		if value, err := decodeJSONValue(script[start : end+1]); err == nil {
			return value, nil
		}
	}

	return nil, errNoPayload
}

func decodeJSONValue(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

// findListingObject walks the decoded JSON for the first object that carries
// a zpid. Map children are visited in sorted key order so the walk is
// deterministic.
func findListingObject(value interface{}) map[string]interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		if _, ok := v["zpid"]; ok {
			return v
		}
		for _, key := range sortedKeys(v) {
			if found := findListingObject(v[key]); found != nil {
				return found
			}
		}
	case []interface{}:
		for _, item := range v {
			if found := findListingObject(item); found != nil {
				return found
			}
		}
	}
	return nil
}

// collectCandidates gathers every object carrying both a zpid and an address
func collectCandidates(value interface{}, seen map[string]bool, out *[]domain.SearchCandidate) {
	switch v := value.(type) {
	case map[string]interface{}:
		zpid := asNumber(v["zpid"]).String()
		address := firstString(v, "address", "streetAddress", "formattedAddress")
		if zpid != "" && address != "" && !seen[zpid] {
			seen[zpid] = true
			*out = append(*out, domain.SearchCandidate{ZPID: zpid, Address: address})
		}
		for _, key := range sortedKeys(v) {
			collectCandidates(v[key], seen, out)
		}
	case []interface{}:
		for _, item := range v {
			collectCandidates(item, seen, out)
		}
	}
}

// listingFromMap copies the recognized listing fields out of the located
// payload object, tolerating the field-name aliases Zillow uses
func listingFromMap(m map[string]interface{}) *domain.RawListing {
	listing := &domain.RawListing{
		ZPID:             asNumber(m["zpid"]),
		Address:          asString(m["address"]),
		StreetAddress:    asString(m["streetAddress"]),
		FormattedAddress: asString(m["formattedAddress"]),
		URL:              asString(m["url"]),
		Zestimate:        asNumber(m["zestimate"]),
		Price:            asNumber(m["price"]),
		Bedrooms:         asNumber(m["bedrooms"]),
		Bathrooms:        asNumber(m["bathrooms"]),
		LivingArea:       asNumber(m["livingArea"]),
		LivingAreaValue:  asNumber(m["livingAreaValue"]),
		LotSize:          asNumber(m["lotSize"]),
		LotAreaValue:     asNumber(m["lotAreaValue"]),
		LotAreaUnits:     asString(m["lotAreaUnits"]),
		YearBuilt:        asNumber(m["yearBuilt"]),
		HomeType:         asString(m["homeType"]),
		PropertyType:     asString(m["propertyType"]),
	}

	// The address field is sometimes a nested object rather than a string
	if listing.Address == "" {
		if nested, ok := m["address"].(map[string]interface{}); ok {
			listing.Address = firstString(nested, "streetAddress", "formattedAddress")
		}
	}

	if history, ok := m["priceHistory"].([]interface{}); ok {
		for _, item := range history {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			listing.PriceHistory = append(listing.PriceHistory, domain.RawPriceEvent{
				Date:             asString(entry["date"]),
				EventDate:        asString(entry["eventDate"]),
				Event:            asString(entry["event"]),
				PriceChangeEvent: asString(entry["priceChangeEvent"]),
				Price:            asNumber(entry["price"]),
			})
		}
	}

	return listing
}

var (
	ogTitlePattern    = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']+)["']`)
	h1Pattern         = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	tagPattern        = regexp.MustCompile(`(?s)<[^>]*>`)
	zpidTextPattern   = regexp.MustCompile(`(?i)zpid["']?\s*[:=]\s*["']?(\d+)`)
	zestimatePattern  = regexp.MustCompile(`(?i)Zestimate[^0-9]*\$?\s*([\d,]+)`)
	yearBuiltPattern  = regexp.MustCompile(`\b(19[5-9]\d|20[0-4]\d)\b`)
	zipSnippetPattern = regexp.MustCompile(`\d{5}(?:-\d{4})?`)
)

// propertyTypeLabels are the human-readable type names looked for on the page
var propertyTypeLabels = []string{
	"Single Family",
	"Condo",
	"Townhouse",
	"Multi Family",
	"Apartment",
}

// listingFromHTML approximates a listing payload from page text when no
// embedded JSON blob is present. Best effort only: anything not found stays
// empty and the extraction stage decides whether the row survives. Returns
// nil when neither an address nor a zpid can be located.
func listingFromHTML(body []byte) *domain.RawListing {
	text := htmlToText(body)

	listing := &domain.RawListing{
		Address:      addressFromHTML(body, text),
		Zestimate:    labelledInt(text),
		Bedrooms:     numericFeature(text, "bd"),
		Bathrooms:    numericFeature(text, "ba"),
		LivingArea:   numericFeature(text, "sqft"),
		PropertyType: propertyTypeFromText(text),
	}

	if m := zpidTextPattern.FindStringSubmatch(text); m != nil {
		listing.ZPID = json.Number(m[1])
	}
	if m := yearBuiltPattern.FindStringSubmatch(text); m != nil {
		listing.YearBuilt = json.Number(m[1])
	}

	if listing.Address == "" && listing.ZPID == "" {
		return nil
	}
	return listing
}

// htmlToText strips tags and collapses whitespace for pattern matching
func htmlToText(body []byte) string {
	text := tagPattern.ReplaceAllString(string(body), " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// addressFromHTML tries the og:title meta tag, then the first h1, then a
// snippet of text ending in something that looks like a ZIP code
func addressFromHTML(body []byte, text string) string {
	if m := ogTitlePattern.FindSubmatch(body); m != nil {
		return strings.TrimSpace(html.UnescapeString(string(m[1])))
	}
	if m := h1Pattern.FindSubmatch(body); m != nil {
		if h1 := htmlToText(m[1]); h1 != "" {
			return h1
		}
	}
	if loc := zipSnippetPattern.FindStringIndex(text); loc != nil {
		start := loc[0] - 80
		if start < 0 {
			start = 0
		}
		return strings.TrimSpace(text[start:loc[1]])
	}
	return ""
}

// labelledInt pulls the first integer following the Zestimate label
func labelledInt(text string) json.Number {
	m := zestimatePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return asNumber(strings.ReplaceAll(m[1], ",", ""))
}

var featurePatterns = map[string]*regexp.Regexp{
	"bd":   regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*bd\b`),
	"ba":   regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*ba\b`),
	"sqft": regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*sqft\b`),
}

// numericFeature pulls the number immediately preceding a feature suffix,
// e.g. "3 bd", "2.5 ba", "1650 sqft"
func numericFeature(text, suffix string) json.Number {
	m := featurePatterns[suffix].FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return asNumber(m[1])
}

func propertyTypeFromText(text string) string {
	lowered := strings.ToLower(text)
	for _, label := range propertyTypeLabels {
		if strings.Contains(lowered, strings.ToLower(label)) {
			return label
		}
	}
	return ""
}

// slugifyAddress converts an address to the hyphenated segment Zillow search
// URLs use, e.g. "7254 Wisteria Ln, Lake Wales, FL 33898" ->
// "7254-Wisteria-Ln-Lake-Wales-FL-33898"
func slugifyAddress(address string) string {
	cleaned := strings.NewReplacer("#", " ", ",", " ", "/", " ").Replace(strings.TrimSpace(address))
	cleaned = slugStripPattern.ReplaceAllString(cleaned, "")
	cleaned = slugSpacesPattern.ReplaceAllString(strings.TrimSpace(cleaned), "-")
	return strings.Trim(cleaned, "-")
}

// readLimitedBody reads at most limit bytes from a response body
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s := asString(m[key]); s != "" {
			return s
		}
	}
	return ""
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// asNumber coerces a decoded JSON value into a json.Number; non-numeric
// values yield the empty number
func asNumber(v interface{}) json.Number {
	switch n := v.(type) {
	case json.Number:
		return n
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return ""
		}
		if _, err := json.Number(trimmed).Float64(); err != nil {
			return ""
		}
		return json.Number(trimmed)
	case float64:
		return json.Number(fmt.Sprintf("%g", n))
	default:
		return ""
	}
}
