package zillow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/domain"
)

const (
	defaultBaseURL   = "https://www.zillow.com"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultTimeout     = 15 * time.Second
	defaultRetryMax    = 3
	defaultBackoffBase = 500 * time.Millisecond
	defaultBackoffCap  = 8 * time.Second

	maxResponseBytes = 4 << 20
)

// Config holds client configuration; zero values fall back to defaults
type Config struct {
	BaseURL       string
	UserAgent     string
	Timeout       time.Duration // per-attempt timeout
	RetryMax      int           // total attempts, not retries after the first
	BackoffBase   time.Duration
	BackoffCap    time.Duration
	RatePerSecond float64
}

// Client fetches listing data from Zillow pages. It implements
// domain.ListingSource. The rate limiter is process-wide state shared by all
// pipeline workers through this client; the embedded http.Client connection
// pool is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	timeout     time.Duration
	retryMax    int
	backoffBase time.Duration
	backoffCap  time.Duration
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a Zillow client with the given configuration
func NewClient(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryMax := config.RetryMax
	if retryMax <= 0 {
		retryMax = defaultRetryMax
	}
	backoffBase := config.BackoffBase
	if backoffBase <= 0 {
		backoffBase = defaultBackoffBase
	}
	backoffCap := config.BackoffCap
	if backoffCap <= 0 {
		backoffCap = defaultBackoffCap
	}
	ratePerSecond := config.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 2.0
	}

	return &Client{
		httpClient:  &http.Client{},
		baseURL:     trimTrailingSlash(baseURL),
		userAgent:   userAgent,
		timeout:     timeout,
		retryMax:    retryMax,
		backoffBase: backoffBase,
		backoffCap:  backoffCap,
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// GetListingByID retrieves the raw listing payload for one ZPID
func (c *Client) GetListingByID(ctx context.Context, zpid string) (*domain.RawListing, error) {
	detailURL := fmt.Sprintf("%s/homedetails/%s_zpid/", c.baseURL, zpid)

	body, err := c.getWithRetry(ctx, detailURL)
	if err != nil {
		return nil, err
	}

	payload, err := parseListingBody(body, detailURL)
	if err != nil {
		return nil, fmt.Errorf("zpid %s: %w", zpid, err)
	}
	return payload, nil
}

// SearchByAddress retrieves candidate listings for an address search
func (c *Client) SearchByAddress(ctx context.Context, text string) ([]domain.SearchCandidate, error) {
	searchURL := fmt.Sprintf("%s/homes/%s_rb/", c.baseURL, url.PathEscape(slugifyAddress(text)))

	body, err := c.getWithRetry(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	candidates, err := parseSearchBody(body)
	if err != nil {
		return nil, fmt.Errorf("address %q: %w", text, err)
	}
	return candidates, nil
}

// getWithRetry issues one logical retrieval: up to retryMax attempts with
// exponential backoff on transient failures (timeout, 429, 5xx). Not-found
// responses fail immediately.
func (c *Client) getWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryMax; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, mapContextError(err)
		}

		body, err := c.doAttempt(ctx, reqURL)
		if err == nil {
			return body, nil
		}

		c.debugLog("attempt %d/%d for %s failed: %v", attempt, c.retryMax, reqURL, err)

		if !isTransient(err) {
			return nil, err
		}
		lastErr = err

		if attempt < c.retryMax {
			select {
			case <-time.After(backoffDelay(attempt, c.backoffBase, c.backoffCap)):
			case <-ctx.Done():
				return nil, mapContextError(ctx.Err())
			}
		}
	}

	log.Debug().Str("url", reqURL).Int("attempts", c.retryMax).Msg("all retries exhausted")
	return nil, lastErr
}

// doAttempt issues a single GET with the per-request timeout applied
func (c *Client) doAttempt(ctx context.Context, reqURL string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransportFailure, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeoutError(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: status %d", domain.ErrListingNotFound, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", domain.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", domain.ErrTransportFailure, resp.StatusCode)
	default:
		// Other 4xx responses are terminal but carry no retry semantics
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := readLimitedBody(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransportFailure, err)
	}
	return body, nil
}

// isTransient reports whether an attempt error qualifies for a retry
func isTransient(err error) bool {
	return errors.Is(err, domain.ErrTimeout) ||
		errors.Is(err, domain.ErrRateLimited) ||
		errors.Is(err, domain.ErrTransportFailure)
}

// isTimeoutError detects per-attempt deadline hits from the transport
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// mapContextError folds outer-context termination into the error taxonomy
func mapContextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrTransportFailure, err)
}

// backoffDelay doubles the base delay each attempt, capped
func backoffDelay(attempt int, base, cap time.Duration) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= cap {
			return cap
		}
	}
	if delay > cap {
		return cap
	}
	return delay
}

// debugLog logs a message only when debug mode is enabled
func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Debug().Msgf(format, args...)
	}
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
