// Package auth implements the VTN authorization engine: OAuth scopes, JWT
// issuance and validation (symmetric secret or remote JWKS), and the HTTP
// middleware that turns bearer tokens into request claims.
package auth

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Scope is one OAuth2 scope the VTN understands.
type Scope string

// Known scopes. Unknown scope tokens are logged and ignored.
const (
	ScopeReadAll            Scope = "read_all"
	ScopeReadTargets        Scope = "read_targets"
	ScopeReadVenObjects     Scope = "read_ven_objects"
	ScopeWritePrograms      Scope = "write_programs"
	ScopeWriteEvents        Scope = "write_events"
	ScopeWriteReports       Scope = "write_reports"
	ScopeWriteSubscriptions Scope = "write_subscriptions"
	ScopeWriteVens          Scope = "write_vens"
)

var knownScopes = map[Scope]struct{}{
	ScopeReadAll:            {},
	ScopeReadTargets:        {},
	ScopeReadVenObjects:     {},
	ScopeWritePrograms:      {},
	ScopeWriteEvents:        {},
	ScopeWriteReports:       {},
	ScopeWriteSubscriptions: {},
	ScopeWriteVens:          {},
}

// Scopes is the set of scopes granted to a client.
type Scopes []Scope

// ParseScopes splits a space-delimited scope claim. Unknown tokens are
// ignored with a log line, per the reference behavior.
func ParseScopes(s string) Scopes {
	var scopes Scopes
	for _, part := range strings.Fields(s) {
		scope := Scope(part)
		if _, ok := knownScopes[scope]; !ok {
			log.Trace().Str("scope", part).Msg("unknown scope encountered")
			continue
		}
		scopes = append(scopes, scope)
	}
	return scopes
}

// Has reports whether the set contains scope.
func (s Scopes) Has(scope Scope) bool {
	for _, cur := range s {
		if cur == scope {
			return true
		}
	}
	return false
}

// HasAny reports whether the set contains any of the given scopes.
func (s Scopes) HasAny(scopes ...Scope) bool {
	for _, scope := range scopes {
		if s.Has(scope) {
			return true
		}
	}
	return false
}

// String renders the set as a space-delimited claim value.
func (s Scopes) String() string {
	parts := make([]string, len(s))
	for i, scope := range s {
		parts[i] = string(scope)
	}
	return strings.Join(parts, " ")
}
