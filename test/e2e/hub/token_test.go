package hub_test

import (
	"errors"
	"testing"

	"github.com/hubcheck/hubcheck/pkg/hubsdk"
	"github.com/stretchr/testify/require"
)

func TestPasswordGrant(t *testing.T) {
	baseURL, cleanup := setupHubContainer(t)
	defer cleanup()

	client := newPasswordClient(baseURL)

	token, err := client.GetAuthToken(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// The password grant hands back a refresh token alongside the access
	// token. The SDK only stores it.
	require.NotEmpty(t, client.RefreshToken())

	// A second call must reuse the cached token, not exchange again.
	again, err := client.GetAuthToken(t.Context())
	require.NoError(t, err)
	require.Equal(t, token, again)
}

func TestClientCredentialsGrant(t *testing.T) {
	baseURL, cleanup := setupHubContainer(t)
	defer cleanup()

	client := newClientCredentialsClient(baseURL)

	token, err := client.GetAuthToken(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// No refresh token for client_credentials.
	require.Empty(t, client.RefreshToken())
}

func TestTokenEndpointUnderAPIPrefix(t *testing.T) {
	baseURL, cleanup := setupHubContainer(t)
	defer cleanup()

	client := newPasswordClient(baseURL)
	client.TokenPath = "/api/oauth/token"

	token, err := client.GetAuthToken(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestWrongPasswordIsAuthenticationError(t *testing.T) {
	baseURL, cleanup := setupHubContainer(t)
	defer cleanup()

	client := newPasswordClient(baseURL)
	client.Password = "not-the-password"

	_, err := client.GetAuthToken(t.Context())
	require.Error(t, err)

	var authErr *hubsdk.AuthenticationError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, 401, authErr.StatusCode)
}

func TestWrongClientSecretIsAuthenticationError(t *testing.T) {
	baseURL, cleanup := setupHubContainer(t)
	defer cleanup()

	client := newClientCredentialsClient(baseURL)
	client.ClientSecret = "not-the-secret"

	_, err := client.GetAuthToken(t.Context())
	require.Error(t, err)

	var authErr *hubsdk.AuthenticationError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, 401, authErr.StatusCode)
}

func TestScopeNarrowing(t *testing.T) {
	baseURL, cleanup := setupHubContainer(t)
	defer cleanup()

	// Request only the read scope. Writes must then be refused.
	client := newPasswordClient(baseURL)
	client.Scope = "entries.read"

	resp, err := client.Get(t.Context(), "/api/entries")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	resp, err = client.Post(t.Context(), "/api/entries", []byte(`{"title":"nope","body":"nope"}`))
	require.NoError(t, err)
	require.Equal(t, 403, resp.StatusCode)
}

func TestClearAuthForcesReExchange(t *testing.T) {
	baseURL, cleanup := setupHubContainer(t)
	defer cleanup()

	client := newPasswordClient(baseURL)

	first, err := client.GetAuthToken(t.Context())
	require.NoError(t, err)

	client.ClearAuth()

	second, err := client.GetAuthToken(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, second)
	require.NotEqual(t, first, second)
}
