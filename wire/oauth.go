package wire

import "fmt"

// OAuthErrorType enumerates the error codes the token endpoint returns.
type OAuthErrorType string

// Token endpoint error codes. invalid_request, invalid_client,
// invalid_grant, unsupported_grant_type and server_error come from RFC 6749;
// oauth_not_enabled reports that no signing secret is configured for token
// issuance, and the last three
// describe JWT validation outcomes.
const (
	OAuthNotEnabled          OAuthErrorType = "oauth_not_enabled"
	OAuthInvalidRequest      OAuthErrorType = "invalid_request"
	OAuthInvalidClient       OAuthErrorType = "invalid_client"
	OAuthInvalidGrant        OAuthErrorType = "invalid_grant"
	OAuthUnsupportedGrant    OAuthErrorType = "unsupported_grant_type"
	OAuthServerError         OAuthErrorType = "server_error"
	OAuthNoAvailableKeys     OAuthErrorType = "no_available_keys"
	OAuthTokenNotYetValid    OAuthErrorType = "not_yet_valid"
	OAuthTokenExpired        OAuthErrorType = "expired"
)

// OAuthError is the error body of the token endpoint, per RFC 6749 §5.2.
type OAuthError struct {
	ErrorType        OAuthErrorType `json:"error"`
	ErrorDescription string         `json:"error_description,omitempty"`
	ErrorURI         string         `json:"error_uri,omitempty"`
}

// NewOAuthError builds an error with the given code.
func NewOAuthError(t OAuthErrorType) *OAuthError {
	return &OAuthError{ErrorType: t}
}

// WithDescription attaches a human-readable description.
func (e *OAuthError) WithDescription(desc string) *OAuthError {
	e.ErrorDescription = desc
	return e
}

func (e *OAuthError) Error() string {
	if e.ErrorDescription == "" {
		return string(e.ErrorType)
	}
	return fmt.Sprintf("%s: %s", e.ErrorType, e.ErrorDescription)
}

// TokenResponse is the success body of the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}
