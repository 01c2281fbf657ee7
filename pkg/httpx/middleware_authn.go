package httpx

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hubcheck/hubcheck/pkg/slogx"
)

// AuthTokenHeader carries the access token on resource requests.
const AuthTokenHeader = "X-Auth-Token"

// AuthnMiddleware verifies the X-Auth-Token header as an HS256 JWT signed
// with secret and injects the subject and scopes into the request context.
func AuthnMiddleware(secret []byte) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := r.Header.Get(AuthTokenHeader)
			if raw == "" {
				writeAuthError(w, "missing auth token")
				return
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
			if err != nil {
				log.Warn("token verification failed", "err", err)
				writeAuthError(w, "token verification failed")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeAuthError(w, "malformed claims")
				return
			}

			sub, _ := claims.GetSubject()
			ctx = contextWithAuth(ctx, sub, scopesFromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, subject string, scopes []string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, subject)
	ctx = context.WithValue(ctx, CtxKeyScopes, scopes)
	return ctx
}

func scopesFromClaims(claims jwt.MapClaims) []string {
	raw, ok := claims["scp"].([]any)
	if !ok {
		return nil
	}
	scopes := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func writeAuthError(w http.ResponseWriter, desc string) {
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
