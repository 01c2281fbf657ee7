package hubsdk

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Rate limit and token cache parameters. These mirror the ceiling the
// Content Hub applies server-side; they are compile-time constants rather
// than configuration so every consumer of the SDK stays under the same
// ceiling.
const (
	// maxRequestsPerWindow is the number of requests permitted per window.
	maxRequestsPerWindow = 13

	// requestWindow is the length of the fixed rate-limit window.
	requestWindow = time.Second

	// tokenExpirySkew is subtracted from the advertised token lifetime.
	// The cached token is treated as expired this long before the server
	// would actually invalidate it, absorbing clock drift and the latency
	// of requests already in flight.
	tokenExpirySkew = 300 * time.Second
)

// Supported grant types for the token exchange. Deployments differ in
// which grant the hub's token endpoint accepts, so the grant is explicit
// client configuration rather than a constant.
const (
	GrantPassword          = "password"
	GrantClientCredentials = "client_credentials"
)

// DefaultTokenPath is the token endpoint path used when Client.TokenPath
// is empty. Some hub deployments serve the endpoint under /api instead;
// set TokenPath to "/api/oauth/token" for those.
const DefaultTokenPath = "/oauth/token"

// Client is a rate-limited, token-caching Content Hub API client.
//
// The zero value is not usable; construct with NewClient and fill in the
// credential fields before issuing requests. Exported fields must not be
// mutated after the first request.
type Client struct {
	// BaseURL is the root of the hub deployment, without a trailing slash.
	BaseURL string

	// TokenPath overrides the token endpoint path (DefaultTokenPath).
	TokenPath string

	// GrantType selects the token exchange grant (GrantPassword by
	// default; set GrantClientCredentials for machine accounts).
	GrantType string

	// Credentials for the token exchange. ClientID and ClientSecret are
	// always sent; Username and Password only for the password grant.
	ClientID     string
	ClientSecret string
	Username     string
	Password     string

	// Scope is an optional space-delimited scope list to request.
	Scope string

	// HTTPClient is the underlying transport. NewClient installs one with
	// a 10 second timeout.
	HTTPClient *http.Client

	// Logger receives debug-level records for token refreshes and
	// rate-limit waits. Nil disables client logging entirely.
	Logger *slog.Logger

	// mu guards every field below it: the token cache and the window
	// counter. Serialising on one mutex is deliberate. Slot acquisition
	// and token refresh are thereby totally ordered, so concurrent
	// callers can neither under-count the window nor race duplicate
	// token exchanges.
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	tokenExpiry  time.Time

	windowStart  time.Time
	requestCount int

	// now and sleep are test seams; NewClient installs the real clock.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewClient returns a Client for the hub at baseURL with defaults applied.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		GrantType: GrantPassword,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now:   time.Now,
		sleep: sleepContext,
	}
}

// ResetRateLimit zeroes the window counter and timestamp. The cached
// token is unaffected. Intended for test scenarios that need a clean
// window boundary.
func (c *Client) ResetRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestCount = 0
	c.windowStart = time.Time{}
}

// ClearAuth discards the cached access token, refresh token and expiry
// deadline. The next authenticated call performs a fresh token exchange.
func (c *Client) ClearAuth() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearAuthLocked()
}

func (c *Client) clearAuthLocked() {
	c.accessToken = ""
	c.refreshToken = ""
	c.tokenExpiry = time.Time{}
}

// RefreshToken returns the refresh token from the last successful
// exchange, if the hub issued one. The client does not currently use it;
// it is exposed for callers that persist sessions externally.
func (c *Client) RefreshToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshToken
}

func (c *Client) tokenURL() string {
	path := c.TokenPath
	if path == "" {
		path = DefaultTokenPath
	}
	return c.BaseURL + path
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) debugf(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Debug(msg, args...)
	}
}

// sleepContext pauses for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
