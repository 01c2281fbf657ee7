package http

import (
	"net/http"

	"github.com/hubcheck/hubcheck/pkg/httpx"
)

// OAuth2Error is an RFC 6749 style error payload with an associated HTTP
// status code.
type OAuth2Error struct {
	Status      int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *OAuth2Error) Error() string { return e.Code + ": " + e.Description }

// WriteError writes the error as a JSON response with its status code.
func (e *OAuth2Error) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.Status, e)
}

func NewOAuth2Error(status int, code, description string) *OAuth2Error {
	return &OAuth2Error{Status: status, Code: code, Description: description}
}

// Canned token endpoint errors.
var (
	ErrInvalidRequest       = NewOAuth2Error(http.StatusBadRequest, "invalid_request", "The request is missing a required parameter.")
	ErrInvalidContentType   = NewOAuth2Error(http.StatusBadRequest, "invalid_request", "Content-Type must be application/x-www-form-urlencoded.")
	ErrInvalidFormBody      = NewOAuth2Error(http.StatusBadRequest, "invalid_request", "Malformed form body.")
	ErrInvalidClient        = NewOAuth2Error(http.StatusUnauthorized, "invalid_client", "Client authentication failed.")
	ErrInvalidGrant         = NewOAuth2Error(http.StatusUnauthorized, "invalid_grant", "The provided grant is invalid, expired or revoked.")
	ErrInvalidScope         = NewOAuth2Error(http.StatusBadRequest, "invalid_scope", "The requested scope is invalid or exceeds the granted scope.")
	ErrUnsupportedGrantType = NewOAuth2Error(http.StatusBadRequest, "unsupported_grant_type", "The grant type is not supported by this server.")
	ErrServerError          = NewOAuth2Error(http.StatusInternalServerError, "server_error", "The server encountered an unexpected condition.")
)

// Canned resource errors.
var (
	ErrNotFound   = NewOAuth2Error(http.StatusNotFound, "not_found", "The requested resource does not exist.")
	ErrBadPayload = NewOAuth2Error(http.StatusBadRequest, "invalid_payload", "The request body could not be parsed or failed validation.")
)
