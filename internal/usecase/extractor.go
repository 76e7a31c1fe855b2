package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/domain"
)

// SquareFeetPerAcre is the exact conversion factor for lot sizes
const SquareFeetPerAcre = 43560.0

// priceEventDateLayouts are the date formats price history entries show up in
var priceEventDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
}

// Extract parses a raw listing payload into a canonical property record.
// Required fields (address, zpid, url, propertyType) fail the whole record;
// optional numerics degrade to nil. The int return is the number of price
// history entries dropped for unparseable dates or invalid prices, surfaced
// as a warning annotation on the row's outcome.
func Extract(payload *domain.RawListing) (*domain.PropertyRecord, int, error) {
	if payload == nil {
		return nil, 0, fmt.Errorf("%w: empty payload", domain.ErrMissingRequiredField)
	}

	address := firstNonEmpty(payload.Address, payload.StreetAddress, payload.FormattedAddress)
	if address == "" {
		return nil, 0, fmt.Errorf("%w: address", domain.ErrMissingRequiredField)
	}

	zpid := payload.ZPID.String()
	if zpid == "" {
		return nil, 0, fmt.Errorf("%w: zpid", domain.ErrMissingRequiredField)
	}

	if payload.URL == "" {
		return nil, 0, fmt.Errorf("%w: url", domain.ErrMissingRequiredField)
	}

	propertyType := firstNonEmpty(payload.HomeType, payload.PropertyType)
	if propertyType == "" {
		return nil, 0, fmt.Errorf("%w: propertyType", domain.ErrMissingRequiredField)
	}

	record := &domain.PropertyRecord{
		Address:      address,
		ZPID:         zpid,
		URL:          payload.URL,
		PropertyType: propertyType,
		Zestimate:    intValue(payload.Zestimate, payload.Price),
		Bedrooms:     floatValue(payload.Bedrooms),
		Bathrooms:    floatValue(payload.Bathrooms),
		LivingArea:   floatValue(payload.LivingArea, payload.LivingAreaValue),
		YearBuilt:    intValue(payload.YearBuilt),
		LotSize:      lotSizeSquareFeet(payload),
	}

	history, dropped := extractPriceHistory(payload.PriceHistory)
	record.PriceHistory = history

	return record, dropped, nil
}

// lotSizeSquareFeet normalizes the lot size to square feet. lotSize is always
// square feet already; lotAreaUnits tags only the lotAreaValue pair, so the
// acre conversion (exactly 43,560 sq ft) applies to that value alone.
func lotSizeSquareFeet(payload *domain.RawListing) *float64 {
	if value := floatValue(payload.LotSize); value != nil {
		return value
	}

	value := floatValue(payload.LotAreaValue)
	if value == nil {
		return nil
	}

	units := strings.ToLower(strings.TrimSpace(payload.LotAreaUnits))
	switch units {
	case "acre", "acres":
		converted := *value * SquareFeetPerAcre
		return &converted
	default:
		// sqft, "square feet", or untagged values pass through as-is
		return value
	}
}

// extractPriceHistory parses, filters, sorts, and deduplicates price history.
// Entries without a parseable date or with a negative price are dropped
// individually; the drop count is returned alongside the surviving entries.
// Output is sorted ascending by date for a stable ordering, with identical
// (date, event, price) tuples collapsed.
func extractPriceHistory(raw []domain.RawPriceEvent) ([]domain.PriceEvent, int) {
	events := make([]domain.PriceEvent, 0, len(raw))
	dropped := 0

	for _, item := range raw {
		date, ok := parseEventDate(firstNonEmpty(item.Date, item.EventDate))
		if !ok {
			dropped++
			continue
		}

		price, err := item.Price.Int64()
		if err != nil || price < 0 {
			dropped++
			continue
		}

		events = append(events, domain.PriceEvent{
			Date:  date,
			Event: firstNonEmpty(item.Event, item.PriceChangeEvent),
			Price: int(price),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})

	// Identical tuples may be separated by other same-date events, so a
	// seen-set is needed rather than comparing neighbours.
	seen := make(map[domain.PriceEvent]bool, len(events))
	deduped := events[:0]
	for _, e := range events {
		if seen[e] {
			continue
		}
		seen[e] = true
		deduped = append(deduped, e)
	}

	return deduped, dropped
}

// parseEventDate normalizes a source date string to YYYY-MM-DD
func parseEventDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, layout := range priceEventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// firstNonEmpty returns the first value that is not empty after trimming
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// intValue returns the first of the given numbers that parses as an integer,
// rounding float-typed values, or nil when none do
func intValue(numbers ...json.Number) *int {
	for _, n := range numbers {
		if n.String() == "" {
			continue
		}
		if i, err := n.Int64(); err == nil {
			v := int(i)
			return &v
		}
		if f, err := n.Float64(); err == nil {
			v := int(math.Round(f))
			return &v
		}
	}
	return nil
}

// floatValue returns the first of the given numbers that parses as a float,
// or nil when none do
func floatValue(numbers ...json.Number) *float64 {
	for _, n := range numbers {
		if n.String() == "" {
			continue
		}
		if f, err := n.Float64(); err == nil {
			return &f
		}
	}
	return nil
}
