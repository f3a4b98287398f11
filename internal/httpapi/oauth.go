package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/wire"
)

// tokenLifetime of internally issued tokens.
const tokenLifetime = 30 * 24 * time.Hour

// Token implements POST /auth/token: the RFC 6749 client-credentials grant.
// Client credentials may come from HTTP Basic auth or from the form body,
// but not both.
func (s *Server) Token(w http.ResponseWriter, r *http.Request) {
	if !s.OAuthEnabled {
		// The endpoint does not exist when internal OAuth is disabled.
		writeProblem(w, r, wire.Problem{Status: http.StatusNotFound, Title: "Not Found"})
		return
	}

	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		writeProblem(w, r, wire.Problem{
			Status: http.StatusUnsupportedMediaType,
			Title:  "Unsupported Media Type",
			Detail: "token requests must be application/x-www-form-urlencoded",
		})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, wire.NewOAuthError(wire.OAuthInvalidRequest).
			WithDescription("could not parse form body"))
		return
	}

	if r.PostForm.Get("grant_type") != "client_credentials" {
		writeOAuthError(w, wire.NewOAuthError(wire.OAuthUnsupportedGrant).
			WithDescription("only client_credentials grant type is supported"))
		return
	}

	var headerID, headerSecret string
	headerPresent := false
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, _, _ := strings.Cut(h, " ")
		if strings.EqualFold(scheme, "Basic") {
			headerID, headerSecret, headerPresent = r.BasicAuth()
		} else if strings.EqualFold(scheme, "Bearer") {
			log.Trace().Msg("login request contained Bearer token which got ignored")
		}
	}

	bodyID := r.PostForm.Get("client_id")
	bodySecret := r.PostForm.Get("client_secret")
	bodyPresent := bodyID != "" || bodySecret != ""

	if headerPresent && bodyPresent {
		writeOAuthError(w, wire.NewOAuthError(wire.OAuthInvalidRequest).
			WithDescription("both header and body authentication provided"))
		return
	}

	clientID, clientSecret := bodyID, bodySecret
	if headerPresent {
		clientID, clientSecret = headerID, headerSecret
	}
	if clientID == "" && clientSecret == "" {
		writeOAuthError(w, wire.NewOAuthError(wire.OAuthInvalidClient).
			WithDescription("no valid authentication data provided, client_id and client_secret required"))
		return
	}

	creds, ok := s.Store.Credentials().CheckCredentials(r.Context(), clientID, clientSecret)
	if !ok {
		writeOAuthError(w, wire.NewOAuthError(wire.OAuthInvalidClient).
			WithDescription("invalid client_id or client_secret"))
		return
	}

	token, err := s.JWT.Issue(string(creds.ClientID), creds.Scopes, tokenLifetime)
	if err != nil {
		if oauthErr, isOAuth := err.(*wire.OAuthError); isOAuth {
			writeOAuthError(w, oauthErr)
			return
		}
		writeOAuthError(w, wire.NewOAuthError(wire.OAuthServerError).
			WithDescription("could not issue a new token"))
		return
	}

	log.Ctx(r.Context()).Info().Str("client_id", string(creds.ClientID)).Msg("access token issued")
	writeJSON(w, http.StatusOK, wire.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(tokenLifetime.Seconds()),
	})
}

// writeOAuthError maps OAuth error codes onto their response shapes:
// invalid_client carries a WWW-Authenticate challenge with 401,
// server_error maps to 500, oauth_not_enabled renders as plain 404, and
// everything else is a 400.
func writeOAuthError(w http.ResponseWriter, e *wire.OAuthError) {
	switch e.ErrorType {
	case wire.OAuthInvalidClient:
		w.Header().Set("WWW-Authenticate", `Basic realm="VTN"`)
		writeJSON(w, http.StatusUnauthorized, e)
	case wire.OAuthServerError:
		writeJSON(w, http.StatusInternalServerError, e)
	case wire.OAuthNotEnabled:
		writeJSON(w, http.StatusNotFound, wire.Problem{Status: http.StatusNotFound, Title: "Not Found"})
	default:
		writeJSON(w, http.StatusBadRequest, e)
	}
}
