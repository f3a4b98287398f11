package auth

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/rs/zerolog/log"
)

// KeyType selects which keys of a JWKS document the VTN will use.
type KeyType string

// Supported OAUTH_KEY_TYPE values.
const (
	KeyTypeHMAC KeyType = "HMAC"
	KeyTypeRSA  KeyType = "RSA"
	KeyTypeEC   KeyType = "EC"
	KeyTypeED   KeyType = "ED"
)

// ParseKeyType validates an OAUTH_KEY_TYPE value.
func ParseKeyType(s string) (KeyType, error) {
	switch KeyType(s) {
	case KeyTypeHMAC, KeyTypeRSA, KeyTypeEC, KeyTypeED:
		return KeyType(s), nil
	}
	return "", fmt.Errorf("invalid key type %q, allowed are HMAC, RSA, EC, and ED", s)
}

// decodingKey is one usable verification key from a JWKS document.
type decodingKey struct {
	kid string
	key any
}

// jwk is the superset of JWK fields the supported key types read.
type jwk struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	// RSA
	N string `json:"n"`
	E string `json:"e"`
	// EC / OKP
	X   string `json:"x"`
	Y   string `json:"y"`
	Crv string `json:"crv"`
}

type jwksDocument struct {
	Keys []json.RawMessage `json:"keys"`
}

// fetchJWKS downloads and parses the key set at url, keeping only keys of
// the requested type. Entries that fail to parse are skipped with a warning,
// so one malformed key does not take the whole set down.
func fetchJWKS(client *http.Client, url string, keyType KeyType) ([]decodingKey, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("could not reach JWKS location: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS location returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read JWKS response: %w", err)
	}

	var doc jwksDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("could not parse JWKS document: %w", err)
	}

	var keys []decodingKey
	for _, raw := range doc.Keys {
		var entry jwk
		if err := json.Unmarshal(raw, &entry); err != nil {
			log.Warn().Err(err).Msg("ignoring invalid JWK")
			continue
		}
		if !ktyMatches(entry.Kty, keyType) {
			continue
		}
		key, err := parseJWK(entry, keyType)
		if err != nil {
			log.Warn().Err(err).Str("kid", entry.Kid).Msg("ignoring invalid JWK")
			continue
		}
		keys = append(keys, decodingKey{kid: entry.Kid, key: key})
	}
	return keys, nil
}

func ktyMatches(kty string, keyType KeyType) bool {
	switch keyType {
	case KeyTypeRSA:
		return kty == "RSA"
	case KeyTypeEC:
		return kty == "EC"
	case KeyTypeED:
		return kty == "OKP" || kty == "ED"
	case KeyTypeHMAC:
		return kty == "oct"
	}
	return false
}

func parseJWK(entry jwk, keyType KeyType) (any, error) {
	switch keyType {
	case KeyTypeRSA:
		return parseRSAKey(entry)
	case KeyTypeEC:
		return parseECKey(entry)
	case KeyTypeED:
		return parseEdKey(entry)
	}
	return nil, fmt.Errorf("key type %s has no JWKS representation", keyType)
}

func parseRSAKey(entry jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(entry.N)
	if err != nil {
		return nil, fmt.Errorf("cannot decode RSA modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(entry.E)
	if err != nil {
		return nil, fmt.Errorf("cannot decode RSA exponent: %w", err)
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("RSA exponent is zero")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}

func parseECKey(entry jwk) (*ecdsa.PublicKey, error) {
	var curve elliptic.Curve
	switch entry.Crv {
	case "P-256":
		curve = elliptic.P256()
	case "P-384":
		curve = elliptic.P384()
	case "P-521":
		curve = elliptic.P521()
	default:
		return nil, fmt.Errorf("unsupported EC curve %q", entry.Crv)
	}
	xBytes, err := base64.RawURLEncoding.DecodeString(entry.X)
	if err != nil {
		return nil, fmt.Errorf("cannot decode EC x coordinate: %w", err)
	}
	yBytes, err := base64.RawURLEncoding.DecodeString(entry.Y)
	if err != nil {
		return nil, fmt.Errorf("cannot decode EC y coordinate: %w", err)
	}
	return &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}, nil
}

func parseEdKey(entry jwk) (ed25519.PublicKey, error) {
	if entry.Crv != "" && entry.Crv != "Ed25519" {
		return nil, fmt.Errorf("unsupported Ed curve %q", entry.Crv)
	}
	xBytes, err := base64.RawURLEncoding.DecodeString(entry.X)
	if err != nil {
		return nil, fmt.Errorf("cannot decode Ed public key: %w", err)
	}
	if len(xBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("Ed public key must be %d bytes, got %d", ed25519.PublicKeySize, len(xBytes))
	}
	return ed25519.PublicKey(xBytes), nil
}
