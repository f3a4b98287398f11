package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/wire"
)

// Manager issues and validates the VTN's bearer tokens.
//
// With a symmetric secret configured, tokens are minted and verified with
// HS256. Without one, verification fetches the key set from a remote JWKS
// location and tries each usable key in turn; issuance is then disabled.
type Manager struct {
	secret   []byte
	jwksURL  string
	keyType  KeyType
	client   *http.Client
	cacheTTL time.Duration

	mu      sync.RWMutex
	cached  []decodingKey
	fetched time.Time
}

// NewManagerWithSecret builds a manager around a shared HMAC secret. The
// secret must be at least 32 bytes per RFC 7518 §3.2.
func NewManagerWithSecret(secret []byte) (*Manager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("HMAC secret must have at least 32 bytes, got %d", len(secret))
	}
	return &Manager{secret: secret}, nil
}

// NewManagerWithJWKS builds a manager that verifies against the key set at
// jwksURL, using only keys of the given type.
func NewManagerWithJWKS(jwksURL string, keyType KeyType) *Manager {
	return &Manager{
		jwksURL:  jwksURL,
		keyType:  keyType,
		client:   &http.Client{Timeout: 10 * time.Second},
		cacheTTL: time.Hour,
	}
}

type tokenClaims struct {
	Sub   string `json:"sub"`
	Exp   int64  `json:"exp"`
	Iat   *int64 `json:"iat,omitempty"`
	Nbf   *int64 `json:"nbf,omitempty"`
	Scope string `json:"scope,omitempty"`
	// Some identity providers put the scope string in a "roles" claim.
	Roles string `json:"roles,omitempty"`
}

// The jwt library requires claim accessors; time handling is done in
// checkTime instead, so these only surface raw values.
func (c tokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}
func (c tokenClaims) GetIssuedAt() (*jwt.NumericDate, error)  { return nil, nil }
func (c tokenClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c tokenClaims) GetIssuer() (string, error)              { return "", nil }
func (c tokenClaims) GetSubject() (string, error)             { return c.Sub, nil }
func (c tokenClaims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

// Issue mints a signed token for the given client with the given scopes.
// Only possible when a symmetric secret is configured.
func (m *Manager) Issue(clientID string, scopes Scopes, expiresIn time.Duration) (string, error) {
	if m.secret == nil {
		return "", wire.NewOAuthError(wire.OAuthNotEnabled)
	}
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"sub":   clientID,
		"exp":   now + int64(expiresIn.Seconds()),
		"iat":   now,
		"nbf":   now,
		"scope": scopes.String(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", wire.NewOAuthError(wire.OAuthServerError).WithDescription("could not issue a new token")
	}
	return token, nil
}

// Validate decodes and validates a bearer token, returning its claims.
func (m *Manager) Validate(ctx context.Context, token string) (Claims, error) {
	if m.secret != nil {
		claims, err := m.tryKey(token, m.secret)
		if err != nil {
			return Claims{}, wire.NewOAuthError(wire.OAuthInvalidGrant).
				WithDescription("JWT validation failed: " + err.Error())
		}
		return checkTime(claims)
	}

	keys, err := m.keysWithKid(ctx)
	if err != nil {
		return Claims{}, err
	}
	if len(keys) == 0 {
		return Claims{}, wire.NewOAuthError(wire.OAuthNoAvailableKeys).
			WithDescription("no usable keys returned from the OAuth server")
	}

	for _, key := range keys {
		claims, err := m.tryKey(token, key.key)
		if err == nil {
			return checkTime(claims)
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			// Wrong key; the next one may match.
			log.Warn().Str("kid", key.kid).Err(err).Msg("JWT signature check failed")
			continue
		}
		log.Error().Str("kid", key.kid).Err(err).Msg("JWT validation failed")
		return Claims{}, wire.NewOAuthError(wire.OAuthInvalidGrant).
			WithDescription("JWT validation failed: " + err.Error())
	}

	return Claims{}, wire.NewOAuthError(wire.OAuthInvalidGrant).
		WithDescription("no key matched the token signature")
}

func (m *Manager) tryKey(token string, key any) (tokenClaims, error) {
	var claims tokenClaims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if secret, ok := key.([]byte); ok {
				return secret, nil
			}
			return nil, fmt.Errorf("token requires an HMAC secret")
		default:
			return key, nil
		}
	})
	return claims, err
}

// checkTime applies the nbf and exp checks explicitly. iat is informational.
func checkTime(c tokenClaims) (Claims, error) {
	now := time.Now().Unix()
	if c.Nbf != nil && now < *c.Nbf {
		return Claims{}, wire.NewOAuthError(wire.OAuthTokenNotYetValid).
			WithDescription("the 'nbf' claim disallows using this token already")
	}
	if c.Exp < now {
		return Claims{}, wire.NewOAuthError(wire.OAuthTokenExpired).
			WithDescription("the 'exp' claim disallows using this token anymore")
	}

	scope := c.Scope
	if scope == "" {
		scope = c.Roles
	}
	return Claims{
		Sub:    c.Sub,
		Exp:    c.Exp,
		Iat:    c.Iat,
		Nbf:    c.Nbf,
		Scopes: ParseScopes(scope),
	}, nil
}

// keysWithKid returns the cached JWKS keys, refreshing when stale.
// Last-write-wins on concurrent refresh is acceptable here.
func (m *Manager) keysWithKid(ctx context.Context) ([]decodingKey, error) {
	if m.keyType == KeyTypeHMAC {
		// HMAC secrets are never distributed via JWKS.
		return nil, nil
	}

	m.mu.RLock()
	fresh := time.Since(m.fetched) < m.cacheTTL && len(m.cached) > 0
	keys := m.cached
	m.mu.RUnlock()
	if fresh {
		return keys, nil
	}

	fetched, err := fetchJWKS(m.client, m.jwksURL, m.keyType)
	if err != nil {
		log.Warn().Err(err).Str("jwks_url", m.jwksURL).Msg("JWKS refresh failed")
		if len(keys) > 0 {
			// Stale keys beat no keys.
			return keys, nil
		}
		return nil, wire.NewOAuthError(wire.OAuthNoAvailableKeys).WithDescription(err.Error())
	}

	m.mu.Lock()
	m.cached = fetched
	m.fetched = time.Now()
	m.mu.Unlock()

	log.Info().Int("key_count", len(fetched)).Msg("refreshed JWKS cache")
	return fetched, nil
}
