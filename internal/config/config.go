// Package config loads the VTN configuration from the environment.
package config

import (
	"encoding/base64"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full VTN process configuration.
type Config struct {
	// Port the HTTP listener binds to.
	Port int `envconfig:"PORT" default:"3000"`
	// DatabaseURL is the postgres connection string.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// OAuthBase64Secret is the symmetric JWT key, base64-encoded and at
	// least 32 bytes after decoding. When absent, a random per-process
	// secret is generated (and external tokens cannot be verified across
	// restarts).
	OAuthBase64Secret string `envconfig:"OAUTH_BASE64_SECRET"`
	// OAuthKeyType selects JWKS parsing for an external OAuth provider:
	// HMAC, RSA, EC, or ED.
	OAuthKeyType string `envconfig:"OAUTH_KEY_TYPE"`
	// OAuthJWKSLocation is the JWKS URL of the external OAuth provider.
	OAuthJWKSLocation string `envconfig:"OAUTH_JWKS_LOCATION"`

	Mdns MdnsConfig
}

// MdnsConfig configures the discovery advertisement.
type MdnsConfig struct {
	ServiceType string `envconfig:"MDNS_SERVICE_TYPE" default:"_openadr3._tcp"`
	ServerName  string `envconfig:"MDNS_SERVER_NAME" default:"openleadr-vtn"`
	HostName    string `envconfig:"MDNS_HOST_NAME"`
	IPAddress   string `envconfig:"MDNS_IP_ADDRESS"`
	BasePath    string `envconfig:"MDNS_BASE_PATH"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}

// DecodeSecret decodes and bounds-checks OAUTH_BASE64_SECRET. ok is false
// when the variable is unset.
func (c Config) DecodeSecret() (secret []byte, ok bool, err error) {
	if c.OAuthBase64Secret == "" {
		return nil, false, nil
	}
	secret, err = base64.StdEncoding.DecodeString(c.OAuthBase64Secret)
	if err != nil {
		return nil, false, fmt.Errorf("OAUTH_BASE64_SECRET contains invalid base64: %w", err)
	}
	if len(secret) < 32 {
		// https://datatracker.ietf.org/doc/html/rfc7518#section-3.2
		return nil, false, fmt.Errorf("OAUTH_BASE64_SECRET must have at least 32 bytes, got %d", len(secret))
	}
	return secret, true, nil
}
