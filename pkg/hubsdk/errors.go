package hubsdk

import "fmt"

// AuthenticationError reports a non-2xx response from the token endpoint.
// It carries the HTTP status and the raw response body so the caller can
// decide whether to retry or fail; the client never retries it.
type AuthenticationError struct {
	// StatusCode is the HTTP status returned by the token endpoint.
	StatusCode int

	// Body is the raw response body, typically an RFC 6749 error JSON
	// such as {"error":"invalid_client"}.
	Body string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("hubsdk: token endpoint returned %d: %s", e.StatusCode, e.Body)
}

// MalformedTokenResponseError reports a 2xx token response that did not
// contain an access token.
type MalformedTokenResponseError struct {
	// Body is the raw response body that failed to yield a token.
	Body string
}

func (e *MalformedTokenResponseError) Error() string {
	return fmt.Sprintf("hubsdk: token response missing access_token: %s", e.Body)
}
