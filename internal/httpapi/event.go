package httpapi

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

// ListEvents handles GET /events.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	perm, err := targetReadPermission(c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pagination, err := parsePagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	targets, err := parseTargetFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter := storage.EventFilter{Targets: targets, Pagination: pagination}
	if v := r.URL.Query().Get("programID"); v != "" {
		id, err := wire.ParseIdentifier(v)
		if err != nil {
			writeError(w, r, apperr.Validation("programID: %s", err.Error()))
			return
		}
		filter.ProgramID = id
	}

	events, err := s.Store.Events().RetrieveAll(r.Context(), filter, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if events == nil {
		events = []wire.Event{}
	}

	log.Ctx(r.Context()).Debug().Str("client_id", c.Sub).Int("count", len(events)).Msg("events retrieved")
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}.
func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	perm, err := targetReadPermission(c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := s.Store.Events().Retrieve(r.Context(), id, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// CreateEvent handles POST /events.
func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !c.Scopes.Has(auth.ScopeWriteEvents) {
		writeError(w, r, errMissingScope(auth.ScopeWriteEvents))
		return
	}

	var req wire.EventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, apperr.Validation("%s", err.Error()))
		return
	}

	event, err := s.Store.Events().Create(r.Context(), req, storage.Unrestricted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("event_id", string(event.ID)).
		Str("program_id", string(event.ProgramID)).
		Str("client_id", c.Sub).
		Msg("event added")
	s.notify(r, wire.OperationPost, event)
	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PUT /events/{id}.
func (s *Server) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !c.Scopes.Has(auth.ScopeWriteEvents) {
		writeError(w, r, errMissingScope(auth.ScopeWriteEvents))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req wire.EventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, apperr.Validation("%s", err.Error()))
		return
	}

	event, err := s.Store.Events().Update(r.Context(), id, req, storage.Unrestricted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("event_id", string(event.ID)).
		Str("client_id", c.Sub).
		Msg("event updated")
	s.notify(r, wire.OperationPut, event)
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/{id}.
func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !c.Scopes.Has(auth.ScopeWriteEvents) {
		writeError(w, r, errMissingScope(auth.ScopeWriteEvents))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := s.Store.Events().Delete(r.Context(), id, storage.Unrestricted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("event_id", string(id)).
		Str("client_id", c.Sub).
		Msg("event deleted")
	s.notify(r, wire.OperationDelete, event)
	writeJSON(w, http.StatusOK, event)
}
