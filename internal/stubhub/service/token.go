package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hubcheck/hubcheck/internal/stubhub/domain"
	"github.com/hubcheck/hubcheck/internal/stubhub/store"
	"github.com/hubcheck/hubcheck/pkg/cryptox"
	"github.com/hubcheck/hubcheck/pkg/idx"
	"github.com/hubcheck/hubcheck/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidClient      = errors.New("invalid_client")
	ErrInvalidScope       = errors.New("invalid_scope")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrInvalidGrant       = errors.New("invalid_grant")
)

// TokenService implements the token endpoint grants: password,
// client_credentials and refresh_token. Access tokens are HS256 JWTs
// signed with Secret; refresh tokens are opaque and stored by fingerprint.
type TokenService struct {
	Store      store.Store
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ExchangePassword implements the OAuth2 password grant. The client
// authenticates with its secret and the user with username/password; both
// are argon2-verified against stored hashes.
func (s *TokenService) ExchangePassword(
	ctx context.Context,
	clientID, clientSecret, username, password string,
	requestedScopes []string,
) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	client, err := s.verifyClient(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a verification anyway so missing users cost the same
			// as wrong passwords.
			_ = cryptox.VerifyPassword(password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("password verification failed", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	effective := effectiveScopes(requestedScopes, client.Scopes)
	if len(effective) == 0 {
		return nil, ErrInvalidScope
	}

	accessToken, err := s.signAccess(user.ID, client.ID, effective, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	refresh := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		ClientID:  client.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		Scopes:    effective,
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		TokenType:    "bearer",
		ExpiresIn:    s.AccessTTL,
		Scope:        strings.Join(effective, " "),
	}, nil
}

// ExchangeClientCredentials implements the OAuth2 client_credentials grant.
// The client is the subject and no refresh token is issued; a client can
// always re-authenticate with its credentials.
func (s *TokenService) ExchangeClientCredentials(
	ctx context.Context,
	clientID, clientSecret string,
	requestedScopes []string,
) (*domain.TokenPair, error) {
	now := time.Now()

	client, err := s.verifyClient(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	effective := effectiveScopes(requestedScopes, client.Scopes)
	if len(effective) == 0 {
		return nil, ErrInvalidScope
	}

	accessToken, err := s.signAccess(client.ID, client.ID, effective, now)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   s.AccessTTL,
		Scope:       strings.Join(effective, " "),
	}, nil
}

// ExchangeRefreshToken implements the OAuth2 refresh_token grant with
// rotation: the presented token is revoked and a new one issued in the
// same transaction.
func (s *TokenService) ExchangeRefreshToken(
	ctx context.Context,
	clientID, refreshOpaque string,
) (*domain.TokenPair, error) {
	now := time.Now()

	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	if rt.Revoked || now.After(rt.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}
	if rt.ClientID != clientID {
		return nil, ErrInvalidClient
	}

	subject := rt.UserID
	if subject == "" {
		subject = rt.ClientID
	}

	accessToken, err := s.signAccess(subject, rt.ClientID, rt.Scopes, now)
	if err != nil {
		return nil, err
	}

	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	newRT := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    rt.UserID,
		ClientID:  rt.ClientID,
		TokenHash: cryptox.FingerprintToken(newOpaque),
		Scopes:    rt.Scopes,
		ExpiresAt: now.Add(s.RefreshTTL),
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newOpaque,
		TokenType:    "bearer",
		ExpiresIn:    s.AccessTTL,
		Scope:        strings.Join(rt.Scopes, " "),
	}, nil
}

// RevokeRefreshToken revokes a single refresh token by its opaque value.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, refreshOpaque string) error {
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(refreshOpaque))
}

func (s *TokenService) verifyClient(ctx context.Context, clientID, clientSecret string) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrInvalidClient
		}
		return domain.Client{}, err
	}

	if clientSecret == "" || cryptox.VerifyPassword(clientSecret, client.SecretHash) != nil {
		l.Info("client secret verification failed", slog.String("client_id", clientID))
		return domain.Client{}, ErrInvalidClient
	}

	return client, nil
}

func (s *TokenService) signAccess(subject, clientID string, scopes []string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"jti": idx.New().String(),
		"sub": subject,
		"cid": clientID,
		"scp": scopes,
		"iss": s.Issuer,
		"iat": now.Unix(),
		"exp": now.Add(s.AccessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// dummyHash is a valid argon2id hash of a random value, used to equalise
// timing when the user does not exist.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$paW7HjQQCkRo8aFCvGzhSkaXJSH828ZL0NBrZSdGsNE"

// effectiveScopes returns the scopes to grant: the client's full scope set
// when none were requested, otherwise the intersection of the two.
func effectiveScopes(requested, clientScopes []string) []string {
	if len(requested) == 0 {
		return dedupe(clientScopes)
	}
	return intersectScopes(requested, clientScopes)
}

func intersectScopes(a, b []string) []string {
	set := map[string]struct{}{}
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
