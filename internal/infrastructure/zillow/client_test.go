package zillow

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/domain"
)

const listingJSON = `{
	"zpid": 110083637,
	"streetAddress": "7254 Wisteria Ln, Lake Wales, FL 33898",
	"url": "https://www.zillow.com/homedetails/110083637_zpid/",
	"zestimate": 239900,
	"bedrooms": 3,
	"bathrooms": 2.5,
	"homeType": "SINGLE_FAMILY"
}`

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		BaseURL:       serverURL,
		Timeout:       2 * time.Second,
		RetryMax:      3,
		BackoffBase:   time.Millisecond,
		BackoffCap:    5 * time.Millisecond,
		RatePerSecond: 1000,
	})
}

func TestGetListingByID_Success(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/homedetails/110083637_zpid/", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, listingJSON)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	listing, err := client.GetListingByID(context.Background(), "110083637")

	require.NoError(t, err)
	assert.Equal(t, "110083637", listing.ZPID.String())
	assert.Equal(t, "7254 Wisteria Ln, Lake Wales, FL 33898", listing.StreetAddress)
	assert.Equal(t, int32(1), requests.Load())
}

func TestGetListingByID_EmbeddedHTMLPayload(t *testing.T) {
	page := `<html><head><script>window.bootstrap = 1;</script></head><body>
		<script id="hdpApolloPreloadedData" type="application/json">` + listingJSON + `</script>
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	listing, err := client.GetListingByID(context.Background(), "110083637")

	require.NoError(t, err)
	assert.Equal(t, "110083637", listing.ZPID.String())
	assert.Equal(t, "SINGLE_FAMILY", listing.HomeType)
}

func TestGetListingByID_NotFoundDoesNotRetry(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetListingByID(context.Background(), "999999999")

	assert.ErrorIs(t, err, domain.ErrListingNotFound)
	assert.Equal(t, int32(1), requests.Load(), "not-found must fail without retrying")
}

func TestGetListingByID_RetriesServerErrors(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, listingJSON)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	listing, err := client.GetListingByID(context.Background(), "110083637")

	require.NoError(t, err)
	assert.Equal(t, "110083637", listing.ZPID.String())
	assert.Equal(t, int32(3), requests.Load())
}

func TestGetListingByID_RetriesRateLimited(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, listingJSON)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetListingByID(context.Background(), "110083637")

	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
}

func TestGetListingByID_RetryCapExhausted(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		time.Sleep(200 * time.Millisecond) // always slower than the per-attempt timeout
		fmt.Fprint(w, listingJSON)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:       server.URL,
		Timeout:       20 * time.Millisecond,
		RetryMax:      3,
		BackoffBase:   time.Millisecond,
		BackoffCap:    5 * time.Millisecond,
		RatePerSecond: 1000,
	})

	_, err := client.GetListingByID(context.Background(), "110083637")

	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, int32(3), requests.Load(), "the attempt budget is three total attempts")
}

func TestGetListingByID_OtherClientErrorsAreTerminal(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetListingByID(context.Background(), "110083637")

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrListingNotFound)
	assert.Equal(t, int32(1), requests.Load())
}

func TestGetListingByID_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingJSON)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(server.URL)
	_, err := client.GetListingByID(ctx, "110083637")

	assert.Error(t, err)
}

func TestSearchByAddress(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"searchResults": {"listResults": [
			{"zpid": 110083637, "address": "7254 Wisteria Ln, Lake Wales, FL 33898"},
			{"zpid": 110083640, "address": "7256 Wisteria Ln, Lake Wales, FL 33898"}
		]}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	candidates, err := client.SearchByAddress(context.Background(), "7254 Wisteria Ln, Lake Wales, FL 33898")

	require.NoError(t, err)
	assert.Equal(t, "/homes/7254-Wisteria-Ln-Lake-Wales-FL-33898_rb/", gotPath)
	require.Len(t, candidates, 2)
	assert.Equal(t, "110083637", candidates[0].ZPID)
	assert.Equal(t, "7254 Wisteria Ln, Lake Wales, FL 33898", candidates[0].Address)
}

func TestBackoffDelay(t *testing.T) {
	base := 500 * time.Millisecond
	cap := 8 * time.Second

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, time.Second},
		{3, 2 * time.Second},
		{4, 4 * time.Second},
		{5, 8 * time.Second},
		{6, 8 * time.Second}, // capped
		{10, 8 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, backoffDelay(tt.attempt, base, cap), "attempt %d", tt.attempt)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{})

	assert.Equal(t, defaultBaseURL, client.baseURL)
	assert.Equal(t, defaultTimeout, client.timeout)
	assert.Equal(t, defaultRetryMax, client.retryMax)
	assert.Equal(t, defaultBackoffBase, client.backoffBase)
	assert.Equal(t, defaultBackoffCap, client.backoffCap)
}
