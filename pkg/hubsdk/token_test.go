package hubsdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type tokenServer struct {
	*httptest.Server

	exchanges atomic.Int64
	lastForm  url.Values
	lastPath  string
}

// newTokenServer serves a token endpoint on every path and records the
// exchange count, path and submitted form.
func newTokenServer(t *testing.T, status int, body string) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())

		ts.exchanges.Add(1)
		ts.lastForm = r.PostForm
		ts.lastPath = r.URL.Path

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

const validTokenBody = `{"access_token":"tok-1","token_type":"bearer","expires_in":600,"refresh_token":"ref-1"}`

func TestGetAuthTokenCachesUntilExpiry(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, validTokenBody)
	c, clk := newTestClient(t, ts.URL)
	c.ClientID = "cid"
	c.ClientSecret = "secret"
	c.Username = "user"
	c.Password = "pass"
	ctx := context.Background()

	tok, err := c.GetAuthToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)
	require.Equal(t, "ref-1", c.RefreshToken())

	// Repeated calls within the buffered lifetime hit the cache.
	for i := 0; i < 5; i++ {
		tok, err = c.GetAuthToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "tok-1", tok)
	}
	require.Equal(t, int64(1), ts.exchanges.Load())

	// The expiry deadline sits tokenExpirySkew before the advertised
	// lifetime: 600s issued, usable for 300s.
	issued := clk.t
	require.Equal(t, issued.Add(600*time.Second-tokenExpirySkew), c.tokenExpiry)

	// One second short of the deadline the cache still serves.
	clk.Advance(299 * time.Second)
	_, err = c.GetAuthToken(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), ts.exchanges.Load())

	// At the deadline the token is treated as expired and re-fetched.
	clk.Advance(time.Second)
	_, err = c.GetAuthToken(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), ts.exchanges.Load())
}

func TestGetAuthTokenShortLifetimeNeverCaches(t *testing.T) {
	// An advertised lifetime at or below the safety buffer puts the
	// deadline in the past, so every call performs a fresh exchange.
	ts := newTokenServer(t, http.StatusOK,
		`{"access_token":"tok-short","token_type":"bearer","expires_in":120}`)
	c, _ := newTestClient(t, ts.URL)
	c.ClientID = "cid"
	c.ClientSecret = "secret"
	c.Username = "user"
	c.Password = "pass"
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		tok, err := c.GetAuthToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "tok-short", tok)
		require.Equal(t, int64(i), ts.exchanges.Load())
	}
}

func TestGetAuthTokenPasswordGrantForm(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, validTokenBody)
	c, _ := newTestClient(t, ts.URL)
	c.ClientID = "cid"
	c.ClientSecret = "secret"
	c.Username = "user"
	c.Password = "pass"
	c.Scope = "entries.read entries.write"

	_, err := c.GetAuthToken(context.Background())
	require.NoError(t, err)

	require.Equal(t, "/oauth/token", ts.lastPath)
	require.Equal(t, "password", ts.lastForm.Get("grant_type"))
	require.Equal(t, "cid", ts.lastForm.Get("client_id"))
	require.Equal(t, "secret", ts.lastForm.Get("client_secret"))
	require.Equal(t, "user", ts.lastForm.Get("username"))
	require.Equal(t, "pass", ts.lastForm.Get("password"))
	require.Equal(t, "entries.read entries.write", ts.lastForm.Get("scope"))
}

func TestGetAuthTokenClientCredentialsGrantForm(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, validTokenBody)
	c, _ := newTestClient(t, ts.URL)
	c.GrantType = GrantClientCredentials
	c.ClientID = "cid"
	c.ClientSecret = "secret"

	_, err := c.GetAuthToken(context.Background())
	require.NoError(t, err)

	require.Equal(t, "client_credentials", ts.lastForm.Get("grant_type"))
	require.Equal(t, "cid", ts.lastForm.Get("client_id"))
	require.NotContains(t, ts.lastForm, "username")
	require.NotContains(t, ts.lastForm, "password")
}

func TestGetAuthTokenCustomTokenPath(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, validTokenBody)
	c, _ := newTestClient(t, ts.URL)
	c.TokenPath = "/api/oauth/token"

	_, err := c.GetAuthToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/api/oauth/token", ts.lastPath)
}

func TestGetAuthTokenRejectedCredentials(t *testing.T) {
	ts := newTokenServer(t, http.StatusUnauthorized, `{"error":"invalid_client"}`)
	c, _ := newTestClient(t, ts.URL)

	_, err := c.GetAuthToken(context.Background())

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	require.Contains(t, authErr.Body, "invalid_client")
	require.Contains(t, err.Error(), "401")

	// A failed exchange must not leave anything cached.
	require.Empty(t, c.accessToken)
}

func TestGetAuthTokenMalformedResponse(t *testing.T) {
	cases := map[string]string{
		"empty object": `{}`,
		"blank token":  `{"access_token":"","expires_in":600}`,
		"not json":     `<html>oops</html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			ts := newTokenServer(t, http.StatusOK, body)
			c, _ := newTestClient(t, ts.URL)

			_, err := c.GetAuthToken(context.Background())

			var malformed *MalformedTokenResponseError
			require.ErrorAs(t, err, &malformed)
			require.Empty(t, c.accessToken)
		})
	}
}

func TestGetAuthTokenChargesRateLimitSlot(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, validTokenBody)
	c, _ := newTestClient(t, ts.URL)
	ctx := context.Background()

	_, err := c.GetAuthToken(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, c.requestCount)

	// Cache hits are free.
	_, err = c.GetAuthToken(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, c.requestCount)
}

func TestClearAuthForcesReExchange(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, validTokenBody)
	c, _ := newTestClient(t, ts.URL)
	ctx := context.Background()

	_, err := c.GetAuthToken(ctx)
	require.NoError(t, err)

	c.ClearAuth()
	require.Empty(t, c.RefreshToken())

	_, err = c.GetAuthToken(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), ts.exchanges.Load())
}

func TestGetAuthTokenSingleFlight(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, validTokenBody)
	c := NewClient(ts.URL)
	ctx := context.Background()

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := c.GetAuthToken(ctx)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}

	require.Equal(t, int64(1), ts.exchanges.Load(),
		"concurrent cold-cache callers must coalesce into one exchange")
}
