package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/wire"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode json response")
	}
}

// writeProblem writes an RFC 7807 problem-details body.
func writeProblem(w http.ResponseWriter, r *http.Request, p wire.Problem) {
	if p.Status >= 500 {
		log.Ctx(r.Context()).Error().Int("status", p.Status).Str("detail", p.Detail).Msg("request failed")
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("failed to encode problem response")
	}
}

// writeError classifies err and writes it as a problem.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal || appErr.Kind == apperr.KindStorage {
		log.Ctx(r.Context()).Error().Err(err).Msg("internal error")
	}
	writeProblem(w, r, appErr.Problem())
}

// writeAuthProblem adapts the problem writer to the auth middleware.
func writeAuthProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	title := "Unauthorized"
	if status == http.StatusForbidden {
		title = "Forbidden"
	}
	writeProblem(w, r, wire.Problem{Status: status, Title: title, Detail: detail})
}

// errMissingScope builds the 403 returned when a scope check fails.
func errMissingScope(scopes ...auth.Scope) error {
	detail := "missing scope"
	for i, s := range scopes {
		if i == 0 {
			detail = "missing '" + string(s) + "'"
		} else {
			detail += " or '" + string(s) + "'"
		}
	}
	detail += " scope"
	return apperr.Forbidden(detail)
}

// decodeJSON decodes a request body, mapping syntax errors to 400 and a
// non-JSON content type or an empty body to 415. A request without a
// Content-Type header is decoded as JSON.
func decodeJSON(r *http.Request, out any) error {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !hasJSONContentType(ct) {
		return apperr.UnsupportedMedia("request body must be application/json")
	}
	if r.Body == nil || r.ContentLength == 0 {
		return apperr.UnsupportedMedia("request body required")
	}
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return apperr.Validation("invalid JSON body: %s", err.Error())
	}
	return nil
}

func hasJSONContentType(ct string) bool {
	for i := 0; i < len(ct); i++ {
		if ct[i] == ';' {
			ct = ct[:i]
			break
		}
	}
	return ct == "application/json"
}
