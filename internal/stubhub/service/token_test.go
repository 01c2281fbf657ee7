package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/hubcheck/hubcheck/internal/stubhub/domain"
	"github.com/hubcheck/hubcheck/internal/stubhub/store/drivers/sqlite"
	"github.com/hubcheck/hubcheck/pkg/cryptox"
	"github.com/hubcheck/hubcheck/pkg/idx"
)

const (
	testClientSecret = "client-secret"
	testUserPassword = "user-password"
)

func newTokenService(t *testing.T) (*TokenService, domain.Client, domain.User) {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	secretHash, err := cryptox.HashPassword(testClientSecret)
	require.NoError(t, err)
	client := domain.Client{
		ID:         "e2e-client",
		Name:       "e2e-client",
		SecretHash: secretHash,
		Scopes:     []string{"entries.read", "entries.write"},
	}
	require.NoError(t, st.Clients().CreateClient(ctx, client))

	passHash, err := cryptox.HashPassword(testUserPassword)
	require.NoError(t, err)
	user := domain.User{
		ID:           idx.New().String(),
		Username:     "alice",
		DisplayName:  "Alice",
		PasswordHash: passHash,
	}
	require.NoError(t, st.Users().CreateUser(ctx, user))

	svc := &TokenService{
		Store:      st,
		Secret:     []byte("test-signing-secret"),
		Issuer:     "stubhub-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
	return svc, client, user
}

func TestExchangePassword(t *testing.T) {
	svc, client, user := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.ExchangePassword(ctx, client.ID, testClientSecret, user.Username, testUserPassword, nil)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "bearer", pair.TokenType)
	require.Equal(t, time.Hour, pair.ExpiresIn)
	require.Equal(t, "entries.read entries.write", pair.Scope)

	// The access token must verify against the signing secret and carry
	// the user as subject.
	parsed, err := jwt.Parse(pair.AccessToken, func(token *jwt.Token) (any, error) {
		return svc.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	require.Equal(t, user.ID, sub)
}

func TestExchangePasswordRejectsBadCredentials(t *testing.T) {
	svc, client, user := newTokenService(t)
	ctx := context.Background()

	_, err := svc.ExchangePassword(ctx, client.ID, testClientSecret, user.Username, "wrong", nil)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.ExchangePassword(ctx, client.ID, testClientSecret, "nobody", testUserPassword, nil)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.ExchangePassword(ctx, client.ID, "wrong", user.Username, testUserPassword, nil)
	require.ErrorIs(t, err, ErrInvalidClient)

	_, err = svc.ExchangePassword(ctx, "ghost", testClientSecret, user.Username, testUserPassword, nil)
	require.ErrorIs(t, err, ErrInvalidClient)
}

func TestExchangePasswordScopeNarrowing(t *testing.T) {
	svc, client, user := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.ExchangePassword(ctx, client.ID, testClientSecret, user.Username, testUserPassword,
		[]string{"entries.read", "admin.everything"})
	require.NoError(t, err)
	require.Equal(t, "entries.read", pair.Scope)

	_, err = svc.ExchangePassword(ctx, client.ID, testClientSecret, user.Username, testUserPassword,
		[]string{"admin.everything"})
	require.ErrorIs(t, err, ErrInvalidScope)
}

func TestExchangeClientCredentials(t *testing.T) {
	svc, client, _ := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.ExchangeClientCredentials(ctx, client.ID, testClientSecret, nil)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.Empty(t, pair.RefreshToken, "client_credentials issues no refresh token")

	parsed, err := jwt.Parse(pair.AccessToken, func(token *jwt.Token) (any, error) {
		return svc.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	require.Equal(t, client.ID, sub, "client is the subject of its own token")
}

func TestExchangeRefreshTokenRotates(t *testing.T) {
	svc, client, user := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.ExchangePassword(ctx, client.ID, testClientSecret, user.Username, testUserPassword, nil)
	require.NoError(t, err)

	rotated, err := svc.ExchangeRefreshToken(ctx, client.ID, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, rotated.AccessToken)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The original refresh token is revoked by the rotation.
	_, err = svc.ExchangeRefreshToken(ctx, client.ID, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	// The rotated one still works.
	_, err = svc.ExchangeRefreshToken(ctx, client.ID, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestExchangeRefreshTokenWrongClient(t *testing.T) {
	svc, client, user := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.ExchangePassword(ctx, client.ID, testClientSecret, user.Username, testUserPassword, nil)
	require.NoError(t, err)

	_, err = svc.ExchangeRefreshToken(ctx, "other-client", pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidClient)

	_, err = svc.ExchangeRefreshToken(ctx, client.ID, "not-a-token")
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRevokeRefreshToken(t *testing.T) {
	svc, client, user := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.ExchangePassword(ctx, client.ID, testClientSecret, user.Username, testUserPassword, nil)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeRefreshToken(ctx, pair.RefreshToken))

	_, err = svc.ExchangeRefreshToken(ctx, client.ID, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestEffectiveScopes(t *testing.T) {
	t.Parallel()

	t.Run("defaults to client scopes", func(t *testing.T) {
		require.Equal(t, []string{"a", "b"}, effectiveScopes(nil, []string{"a", "b", "b"}))
	})

	t.Run("intersects and dedupes", func(t *testing.T) {
		result := effectiveScopes([]string{"a", "a", "c"}, []string{"a", "b"})
		require.Equal(t, []string{"a"}, result)
	})

	t.Run("empty when no overlap", func(t *testing.T) {
		require.Empty(t, effectiveScopes([]string{"x"}, []string{"a"}))
	})
}
