package hubsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// tokenResponse is the token endpoint's success payload per RFC 6749.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// GetAuthToken returns a currently-valid bearer token.
//
// A cached token that has not reached its (buffered) expiry deadline is
// returned immediately with no network call and no rate-limit charge.
// Otherwise the cached state is discarded and one credential exchange is
// performed, charged against the rate-limit window like any other request.
//
// The exchange happens with the client mutex held, so concurrent callers
// that all observe an expired token coalesce: the first performs the
// exchange, the rest block on the mutex and then hit the refreshed cache.
func (c *Client) GetAuthToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	c.clearAuthLocked()

	if err := c.takeSlotLocked(ctx); err != nil {
		return "", err
	}

	tok, err := c.exchangeCredentials(ctx)
	if err != nil {
		return "", err
	}

	c.accessToken = tok.AccessToken
	c.refreshToken = tok.RefreshToken
	c.tokenExpiry = c.now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenExpirySkew)

	c.debugf("obtained access token",
		"token_type", tok.TokenType,
		"expires_in", tok.ExpiresIn,
		"expiry_deadline", c.tokenExpiry,
	)

	return c.accessToken, nil
}

// exchangeCredentials performs the OAuth2 token exchange for the
// configured grant type. Callers hold c.mu.
func (c *Client) exchangeCredentials(ctx context.Context) (*tokenResponse, error) {
	grant := c.GrantType
	if grant == "" {
		grant = GrantPassword
	}

	form := url.Values{
		"grant_type":    {grant},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
	}
	if grant == GrantPassword {
		form.Set("username", c.Username)
		form.Set("password", c.Password)
	}
	if c.Scope != "" {
		form.Set("scope", c.Scope)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.tokenURL(),
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("hubsdk: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("hubsdk: token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hubsdk: read token response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &AuthenticationError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, &MalformedTokenResponseError{Body: strings.TrimSpace(string(body))}
	}
	if tok.AccessToken == "" {
		return nil, &MalformedTokenResponseError{Body: strings.TrimSpace(string(body))}
	}

	return &tok, nil
}
