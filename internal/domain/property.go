package domain

// KeyKind identifies which of the three accepted input forms a lookup key holds
type KeyKind string

const (
	KeyAddress KeyKind = "address"
	KeyZPID    KeyKind = "zpid"
	KeyURL     KeyKind = "url"
)

// LookupKey is the typed representation of one raw input line.
// Exactly one interpretation applies; Value is never empty after trimming.
type LookupKey struct {
	Kind  KeyKind `json:"kind"`
	Value string  `json:"value"`
}

// ListingReference is the canonical, resolved locator for a single listing.
// The ZPID alone is sufficient to fetch; URL is the derived detail-page URL.
type ListingReference struct {
	ZPID string `json:"zpid"`
	URL  string `json:"url"`
}

// PriceEvent is one entry of a listing's price history
type PriceEvent struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Event string `json:"event"`
	Price int    `json:"price"`
}

// Known price history event names as Zillow reports them
const (
	EventSold         = "Sold"
	EventListed       = "Listed for sale"
	EventPriceChanged = "Price change"
)

// PropertyRecord is the canonical output schema for one property.
// Optional numeric fields are nil when the source omits or mangles them.
// livingArea and lotSize are always square feet.
type PropertyRecord struct {
	Address      string       `json:"address"`
	ZPID         string       `json:"zpid"`
	URL          string       `json:"url"`
	Zestimate    *int         `json:"zestimate"`
	Bedrooms     *float64     `json:"bedrooms"`
	Bathrooms    *float64     `json:"bathrooms"`
	LivingArea   *float64     `json:"livingArea"`
	LotSize      *float64     `json:"lotSize"`
	YearBuilt    *int         `json:"yearBuilt"`
	PropertyType string       `json:"propertyType"`
	PriceHistory []PriceEvent `json:"priceHistory"`
}

// Failure describes why one input row could not produce a record
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Input   string `json:"input"`
}

// Outcome is the per-row result: either Record or Failure is set, never both.
// DroppedPriceEvents counts price history entries discarded during extraction;
// it is a warning-level annotation, not an error.
type Outcome struct {
	Input              string          `json:"input"`
	Record             *PropertyRecord `json:"record,omitempty"`
	Failure            *Failure        `json:"failure,omitempty"`
	DroppedPriceEvents int             `json:"droppedPriceEvents,omitempty"`
}

// OK reports whether the row produced a record
func (o Outcome) OK() bool {
	return o.Record != nil
}
