package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// ProblemWriter renders an authorization failure. It is injected by the
// HTTP layer to keep the problem-details encoding in one place.
type ProblemWriter func(w http.ResponseWriter, r *http.Request, status int, detail string)

// Middleware authenticates every request with a bearer token and stores the
// resulting Claims in the request context. Requests without a usable token
// are rejected with 401.
func Middleware(manager *Manager, writeProblem ProblemWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeProblem(w, r, http.StatusUnauthorized,
					"authorization via Bearer token in Authorization header required")
				return
			}

			claims, err := manager.Validate(r.Context(), token)
			if err != nil {
				log.Warn().Err(err).Msg("bearer token validation failed")
				writeProblem(w, r, http.StatusUnauthorized, "invalid authentication token provided")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
