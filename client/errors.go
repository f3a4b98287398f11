// Package client is the OpenADR 3 client library used by VENs and business
// logic systems to interact with a VTN: typed access to programs, events,
// reports, VENs, resources, and subscriptions, automatic bearer-token
// handling, pagination, timeline composition, and mDNS discovery.
package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/openleadr/openleadr-go/wire"
)

// ErrTokenNotBearer is returned when the token endpoint answers with a
// token_type other than "Bearer" (compared case-insensitively).
var ErrTokenNotBearer = errors.New("token response is not a Bearer token")

// ProblemError wraps the problem-details body of a non-2xx VTN response.
type ProblemError struct {
	Problem wire.Problem
}

func (e *ProblemError) Error() string {
	return fmt.Sprintf("VTN returned a problem: %s", e.Problem.Error())
}

// AuthError wraps an OAuth error returned by the token endpoint.
type AuthError struct {
	OAuth wire.OAuthError
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.OAuth.Error())
}

// statusOf extracts the HTTP status of a problem error, or 0.
func statusOf(err error) int {
	var problemErr *ProblemError
	if errors.As(err, &problemErr) {
		return problemErr.Problem.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 problem.
func IsNotFound(err error) bool { return statusOf(err) == http.StatusNotFound }

// IsConflict reports whether err is a 409 problem.
func IsConflict(err error) bool { return statusOf(err) == http.StatusConflict }

// IsUnauthorized reports whether err is a 401 problem.
func IsUnauthorized(err error) bool { return statusOf(err) == http.StatusUnauthorized }
