package httpapi

import (
	"net/http"
	"strconv"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

// parsePagination validates skip and limit query parameters. skip must be
// non-negative; limit must be in [1, 50] and defaults to 50.
func parsePagination(r *http.Request) (storage.Pagination, error) {
	p := storage.Pagination{Limit: storage.DefaultLimit}

	if v := r.URL.Query().Get("skip"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return p, apperr.Validation("skip must be a non-negative integer, got %q", v)
		}
		p.Skip = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 || n > storage.DefaultLimit {
			return p, apperr.Validation("limit must be between 1 and %d, got %q", storage.DefaultLimit, v)
		}
		p.Limit = n
	}
	return p, nil
}

// parseTargetFilter reads the targetType/targetValues query parameters into
// a target list. Every value is paired with the single type.
func parseTargetFilter(r *http.Request) (wire.Targets, error) {
	q := r.URL.Query()
	targetType := q.Get("targetType")
	values := q["targetValues"]

	if targetType == "" && len(values) == 0 {
		return nil, nil
	}
	if targetType == "" || len(values) == 0 {
		return nil, apperr.Validation("targetType and targetValues must be provided together")
	}

	var targets wire.Targets
	for _, v := range values {
		t := wire.NewTarget(targetType, v)
		if err := t.Validate(); err != nil {
			return nil, apperr.Validation("%s", err.Error())
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// claims pulls the authenticated claims out of the request context. The
// auth middleware guarantees their presence on protected routes.
func claims(r *http.Request) (auth.Claims, error) {
	c, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		return auth.Claims{}, apperr.Auth("authorization via Bearer token in Authorization header required")
	}
	return c, nil
}

// targetReadPermission resolves the caller's read permission for targeted
// objects (programs, events): read_all bypasses filtering, read_targets
// applies the privacy envelope.
func targetReadPermission(c auth.Claims) (storage.Permission, error) {
	if c.Scopes.Has(auth.ScopeReadAll) {
		return storage.Unrestricted, nil
	}
	if c.Scopes.Has(auth.ScopeReadTargets) {
		clientID, err := c.ClientID()
		if err != nil {
			return storage.Permission{}, err
		}
		return storage.ForClient(clientID), nil
	}
	return storage.Permission{}, errMissingScope(auth.ScopeReadAll, auth.ScopeReadTargets)
}

// venObjectReadPermission resolves the caller's read permission for
// VEN-owned objects (reports, VENs, resources, subscriptions).
func venObjectReadPermission(c auth.Claims) (storage.Permission, error) {
	if c.Scopes.Has(auth.ScopeReadAll) {
		return storage.Unrestricted, nil
	}
	if c.Scopes.Has(auth.ScopeReadVenObjects) {
		clientID, err := c.ClientID()
		if err != nil {
			return storage.Permission{}, err
		}
		return storage.ForClient(clientID), nil
	}
	return storage.Permission{}, errMissingScope(auth.ScopeReadAll, auth.ScopeReadVenObjects)
}

// isVenCaller reports whether the caller looks like a VEN client rather
// than a BL system. Used to reject BL_* request bodies from VENs.
func isVenCaller(c auth.Claims) bool {
	return c.Scopes.Has(auth.ScopeReadVenObjects) && !c.Scopes.Has(auth.ScopeReadAll)
}

// pathID validates an id path parameter.
func pathID(r *http.Request, name string) (wire.Identifier, error) {
	id, err := wire.ParseIdentifier(pathParam(r, name))
	if err != nil {
		return "", apperr.NotFound()
	}
	return id, nil
}
