package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hubcheck/hubcheck/internal/stubhub/service"
	"github.com/hubcheck/hubcheck/internal/stubhub/store"
	"github.com/hubcheck/hubcheck/pkg/httpx"
	"github.com/hubcheck/hubcheck/pkg/slogx"

	_ "github.com/hubcheck/hubcheck/api/stubhub" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signingSecret []byte
	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger

	store        store.Store
	TokenService *service.TokenService
	EntryService *service.EntryService
}

func NewRouter(
	signingSecret []byte,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		signingSecret: signingSecret,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		store:         st,
		logger:        logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerEntries()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Content Hub Stub API
//	@version		0.1.0
//	@description	A self-hostable stand-in for the Content Hub REST API used by the end-to-end suite.
//	@description	Issues OAuth2 tokens (password and client_credentials grants) and serves a small
//	@description	content entry resource behind X-Auth-Token authentication and a fixed request ceiling.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	AuthToken
//	@in							header
//	@name						X-Auth-Token
//	@description				HS256-signed access token obtained from the token endpoint.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	// The token endpoint counts against the same per-caller ceiling as
	// resource calls, keyed by IP + client_id so parallel suites with
	// distinct clients don't starve each other.
	tokenHandler := httpx.Chain(&TokenHandler{TokenService: r.TokenService},
		httpx.RateLimitByIPAndFormField(httpx.APILimit, "client_id"),
	)

	// Both path shapes are real; deployments differ in whether the token
	// endpoint sits under the API prefix.
	r.Mux.Handle("POST /oauth/token", tokenHandler)
	r.Mux.Handle("POST /api/oauth/token", tokenHandler)
}

func (r *Router) registerEntries() {
	h := &EntriesHandler{EntryService: r.EntryService}

	read := func(next http.HandlerFunc) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.signingSecret),
			httpx.RequireAnyScope("entries.read", "entries.write"),
			httpx.RateLimitByUser(httpx.APILimit),
		)
	}
	write := func(next http.HandlerFunc) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.signingSecret),
			httpx.RequireAnyScope("entries.write"),
			httpx.RateLimitByUser(httpx.APILimit),
		)
	}

	r.Mux.Handle("GET /api/entries", read(h.HandleList))
	r.Mux.Handle("GET /api/entries/{id}", read(h.HandleGet))
	r.Mux.Handle("POST /api/entries", write(h.HandleCreate))
	r.Mux.Handle("PUT /api/entries/{id}", write(h.HandleUpdate))
	r.Mux.Handle("DELETE /api/entries/{id}", write(h.HandleDelete))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient limits (monitoring systems poll often)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.HealthLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.HealthLimit),
		),
	)
}
