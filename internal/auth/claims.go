package auth

import (
	"context"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/wire"
)

// Claims are the validated contents of a bearer token.
type Claims struct {
	// Sub is the OAuth2 subject, interpreted as the OpenADR client id.
	Sub string
	// Exp is the expiration time as a Unix timestamp.
	Exp int64
	// Iat is the issued-at time, informational only.
	Iat *int64
	// Nbf is the not-before time.
	Nbf *int64
	// Scopes granted to the client.
	Scopes Scopes
}

// ClientID parses the subject as an OpenADR client id.
func (c Claims) ClientID() (wire.Identifier, error) {
	id, err := wire.ParseIdentifier(c.Sub)
	if err != nil {
		return "", apperr.Auth("OAuth2 subject cannot be used as OpenADR clientID: " + err.Error())
	}
	return id, nil
}

type claimsKey struct{}

// WithClaims stores claims in the request context.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom retrieves the claims the middleware stored.
func ClaimsFrom(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}
