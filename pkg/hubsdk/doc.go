// Package hubsdk is a small client for the Content Hub REST API.
//
// The client wraps plain HTTP verb calls with two concerns the remote
// service imposes on every consumer:
//
//  1. Authentication. Every request carries a bearer token obtained from
//     the hub's OAuth2 token endpoint. The client caches the token and
//     transparently re-authenticates once the cached token approaches its
//     expiry (a safety buffer is subtracted from the advertised lifetime so
//     a token is never presented close to its server-side cutoff).
//
//  2. Rate limiting. The hub throttles callers at a fixed ceiling of
//     requests per second. The client enforces that ceiling locally with a
//     fixed-window counter: it delays the request that would exceed the
//     window rather than rejecting it, so callers never need to handle 429
//     responses from their own traffic.
//
// The client deliberately does not interpret resource responses. A 404 or
// 500 from an entries endpoint is returned to the caller as an ordinary
// Response carrying the status code and raw body; only failures of the
// token exchange itself surface as errors (AuthenticationError,
// MalformedTokenResponseError). The client performs no retries.
//
// Basic usage:
//
//	client := hubsdk.NewClient("https://hub.example.com")
//	client.ClientID = "ci-suite"
//	client.ClientSecret = "..."
//	client.Username = "e2e-bot"
//	client.Password = "..."
//
//	resp, err := client.Get(ctx, "/api/entries")
//	if err != nil {
//		// transport or authentication failure
//	}
//	if resp.StatusCode != http.StatusOK {
//		// remote outcome, caller's decision
//	}
//
// A single Client is safe for concurrent use. Concurrent requests
// serialise on the internal window counter, and concurrent token refreshes
// coalesce into one exchange (later callers wait and reuse the result).
package hubsdk
