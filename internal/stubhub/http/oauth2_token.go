package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/hubcheck/hubcheck/internal/stubhub/domain"
	"github.com/hubcheck/hubcheck/internal/stubhub/service"
	"github.com/hubcheck/hubcheck/pkg/httpx"
	"github.com/hubcheck/hubcheck/pkg/slogx"
)

// TokenHandler serves the token endpoint.
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework.
type TokenHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Endpoint
//	@Description	Issues access and refresh tokens using OAuth2 grant types (password, client_credentials, refresh_token).
//	@Description	The same handler is mounted at /oauth/token and /api/oauth/token since deployments differ in where they expose it.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string			true	"Grant type"	Enums(password, client_credentials, refresh_token)
//	@Param			client_id		formData	string			true	"Client identifier (required for all grants)"
//	@Param			client_secret	formData	string			true	"Client secret"
//	@Param			username		formData	string			false	"Username (required for password grant)"
//	@Param			password		formData	string			false	"Password (required for password grant)"
//	@Param			refresh_token	formData	string			false	"Refresh token (required for refresh_token grant)"
//	@Param			scope			formData	string			false	"Space-delimited list of scopes"
//	@Success		200				{object}	TokenResponse	"access_token, refresh_token, token_type, expires_in, scope"
//	@Failure		400				{object}	OAuth2Error		"error, error_description"
//	@Failure		401				{object}	OAuth2Error		"error, error_description"
//	@Header			200				{string}	Cache-Control	"no-store"
//	@Router			/oauth/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		ErrInvalidContentType.WriteError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		ErrInvalidFormBody.WriteError(w)
		return
	}

	switch r.Form.Get("grant_type") {
	case "password":
		h.handlePasswordGrant(w, r, r.Form)
	case "client_credentials":
		h.handleClientCredentialsGrant(w, r, r.Form)
	case "refresh_token":
		h.handleRefreshGrant(w, r, r.Form)
	default:
		ErrUnsupportedGrantType.WriteError(w)
	}
}

func (h *TokenHandler) handlePasswordGrant(w http.ResponseWriter, r *http.Request, form url.Values) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clientID := strings.TrimSpace(form.Get("client_id"))
	clientSecret := form.Get("client_secret")
	username := strings.TrimSpace(form.Get("username"))
	password := form.Get("password")
	requested := httpx.ParseSpaceDelimitedFields(form.Get("scope"))

	if clientID == "" || username == "" || password == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.ExchangePassword(ctx, clientID, clientSecret, username, password, requested)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClient):
			ErrInvalidClient.WriteError(w)
		case errors.Is(err, service.ErrInvalidCredentials):
			ErrInvalidGrant.WriteError(w)
		case errors.Is(err, service.ErrInvalidScope):
			ErrInvalidScope.WriteError(w)
		default:
			log.Error("password grant failed", "err", err)
			ErrServerError.WriteError(w)
		}
		return
	}

	writeTokenPair(w, pair)
}

func (h *TokenHandler) handleClientCredentialsGrant(w http.ResponseWriter, r *http.Request, form url.Values) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clientID := strings.TrimSpace(form.Get("client_id"))
	clientSecret := form.Get("client_secret")
	requested := httpx.ParseSpaceDelimitedFields(form.Get("scope"))

	if clientID == "" || clientSecret == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.ExchangeClientCredentials(ctx, clientID, clientSecret, requested)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClient):
			ErrInvalidClient.WriteError(w)
		case errors.Is(err, service.ErrInvalidScope):
			ErrInvalidScope.WriteError(w)
		default:
			log.Error("client_credentials grant failed", "err", err)
			ErrServerError.WriteError(w)
		}
		return
	}

	writeTokenPair(w, pair)
}

func (h *TokenHandler) handleRefreshGrant(w http.ResponseWriter, r *http.Request, form url.Values) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clientID := strings.TrimSpace(form.Get("client_id"))
	refresh := form.Get("refresh_token")

	if clientID == "" || refresh == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.ExchangeRefreshToken(ctx, clientID, refresh)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefresh):
			ErrInvalidGrant.WriteError(w)
		case errors.Is(err, service.ErrInvalidClient):
			ErrInvalidClient.WriteError(w)
		default:
			log.Error("refresh grant failed", "err", err)
			ErrServerError.WriteError(w)
		}
		return
	}

	writeTokenPair(w, pair)
}

func writeTokenPair(w http.ResponseWriter, pair *domain.TokenPair) {
	response := TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
		Scope:        strings.TrimSpace(pair.Scope),
	}
	httpx.WriteJSON(w, http.StatusOK, response)
}
