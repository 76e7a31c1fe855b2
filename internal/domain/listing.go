package domain

import "encoding/json"

// RawListing is the unparsed listing payload as Zillow embeds it.
// Field names vary between page generations, so most concepts have aliases;
// the extractor owns the precedence rules. Ownership is transient: the payload
// lives only between fetch and extraction and is never persisted.
type RawListing struct {
	ZPID             json.Number     `json:"zpid"`
	Address          string          `json:"address"`
	StreetAddress    string          `json:"streetAddress"`
	FormattedAddress string          `json:"formattedAddress"`
	URL              string          `json:"url"`
	Zestimate        json.Number     `json:"zestimate"`
	Price            json.Number     `json:"price"`
	Bedrooms         json.Number     `json:"bedrooms"`
	Bathrooms        json.Number     `json:"bathrooms"`
	LivingArea       json.Number     `json:"livingArea"`
	LivingAreaValue  json.Number     `json:"livingAreaValue"`
	LotSize          json.Number     `json:"lotSize"`
	LotAreaValue     json.Number     `json:"lotAreaValue"`
	LotAreaUnits     string          `json:"lotAreaUnits"`
	YearBuilt        json.Number     `json:"yearBuilt"`
	HomeType         string          `json:"homeType"`
	PropertyType     string          `json:"propertyType"`
	PriceHistory     []RawPriceEvent `json:"priceHistory"`
}

// RawPriceEvent is one unparsed price history entry
type RawPriceEvent struct {
	Date             string      `json:"date"`
	EventDate        string      `json:"eventDate"`
	Event            string      `json:"event"`
	PriceChangeEvent string      `json:"priceChangeEvent"`
	Price            json.Number `json:"price"`
}

// SearchCandidate is one hit from an address search
type SearchCandidate struct {
	ZPID    string `json:"zpid"`
	Address string `json:"address"`
}
