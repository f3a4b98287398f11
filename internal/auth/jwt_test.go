package auth

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openleadr/openleadr-go/wire"
)

var testSecret = bytes.Repeat([]byte("k"), 32)

func TestIssueAndValidateRoundTrip(t *testing.T) {
	manager, err := NewManagerWithSecret(testSecret)
	require.NoError(t, err)

	token, err := manager.Issue("client-1", Scopes{ScopeReadAll, ScopeWritePrograms}, time.Minute)
	require.NoError(t, err)

	claims, err := manager.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.Sub)
	assert.True(t, claims.Scopes.Has(ScopeReadAll))
	assert.True(t, claims.Scopes.Has(ScopeWritePrograms))
	assert.False(t, claims.Scopes.Has(ScopeWriteVens))
}

func TestSecretTooShort(t *testing.T) {
	_, err := NewManagerWithSecret([]byte("short"))
	require.Error(t, err)
}

func signedToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func TestValidateExpired(t *testing.T) {
	manager, err := NewManagerWithSecret(testSecret)
	require.NoError(t, err)

	token := signedToken(t, testSecret, jwt.MapClaims{
		"sub": "client-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	_, err = manager.Validate(context.Background(), token)
	require.Error(t, err)

	var oauthErr *wire.OAuthError
	require.True(t, errors.As(err, &oauthErr))
	assert.Equal(t, wire.OAuthTokenExpired, oauthErr.ErrorType)
}

func TestValidateNotYetValid(t *testing.T) {
	manager, err := NewManagerWithSecret(testSecret)
	require.NoError(t, err)

	token := signedToken(t, testSecret, jwt.MapClaims{
		"sub": "client-1",
		"exp": time.Now().Add(time.Hour).Unix(),
		"nbf": time.Now().Add(time.Minute).Unix(),
	})
	_, err = manager.Validate(context.Background(), token)
	require.Error(t, err)

	var oauthErr *wire.OAuthError
	require.True(t, errors.As(err, &oauthErr))
	assert.Equal(t, wire.OAuthTokenNotYetValid, oauthErr.ErrorType)
}

func TestValidateWrongSecret(t *testing.T) {
	manager, err := NewManagerWithSecret(testSecret)
	require.NoError(t, err)

	token := signedToken(t, bytes.Repeat([]byte("x"), 32), jwt.MapClaims{
		"sub": "client-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = manager.Validate(context.Background(), token)
	require.Error(t, err)
}

func TestScopesFromRolesClaim(t *testing.T) {
	manager, err := NewManagerWithSecret(testSecret)
	require.NoError(t, err)

	token := signedToken(t, testSecret, jwt.MapClaims{
		"sub":   "client-1",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"roles": "read_all write_vens",
	})
	claims, err := manager.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, claims.Scopes.Has(ScopeReadAll))
	assert.True(t, claims.Scopes.Has(ScopeWriteVens))
}

func TestUnknownScopesIgnored(t *testing.T) {
	scopes := ParseScopes("read_all bogus_scope write_events")
	assert.Equal(t, Scopes{ScopeReadAll, ScopeWriteEvents}, scopes)
	assert.Empty(t, ParseScopes(""))
}

// jwksServer serves a JWKS document for one RSA key pair.
func jwksServer(t *testing.T, pub *rsa.PublicKey, kid string) *httptest.Server {
	t.Helper()
	doc := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": kid,
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
			// A malformed entry that must be skipped, not fatal.
			{"kty": "RSA", "kid": "broken", "n": "!!!", "e": "AQAB"},
		},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(doc)
	}))
}

func TestValidateAgainstJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := jwksServer(t, &key.PublicKey, "test-key")
	defer server.Close()

	manager := NewManagerWithJWKS(server.URL, KeyTypeRSA)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":   "ven-1",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"scope": "read_targets write_reports",
	})
	token.Header["kid"] = "test-key"
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	claims, err := manager.Validate(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "ven-1", claims.Sub)
	assert.True(t, claims.Scopes.Has(ScopeReadTargets))
}

func TestValidateJWKSWrongKey(t *testing.T) {
	serverKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	attackerKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := jwksServer(t, &serverKey.PublicKey, "test-key")
	defer server.Close()

	manager := NewManagerWithJWKS(server.URL, KeyTypeRSA)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "ven-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(attackerKey)
	require.NoError(t, err)

	_, err = manager.Validate(context.Background(), signed)
	require.Error(t, err)
}

func TestBearerTokenExtraction(t *testing.T) {
	newRequest := func(header string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/programs", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return r
	}

	token, ok := BearerToken(newRequest("Bearer abc"))
	require.True(t, ok)
	assert.Equal(t, "abc", token)

	token, ok = BearerToken(newRequest("bearer xyz"))
	require.True(t, ok)
	assert.Equal(t, "xyz", token)

	_, ok = BearerToken(newRequest(""))
	assert.False(t, ok)
	_, ok = BearerToken(newRequest("Basic dXNlcjpwYXNz"))
	assert.False(t, ok)
	_, ok = BearerToken(newRequest("Bearer "))
	assert.False(t, ok)
}
