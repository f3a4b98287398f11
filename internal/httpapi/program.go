package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// ListPrograms handles GET /programs.
func (s *Server) ListPrograms(w http.ResponseWriter, r *http.Request) {
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

	programs, err := s.Store.Programs().RetrieveAll(r.Context(),
		storage.ProgramFilter{Targets: targets, Pagination: pagination}, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if programs == nil {
		programs = []wire.Program{}
	}

	log.Ctx(r.Context()).Debug().Str("client_id", c.Sub).Int("count", len(programs)).Msg("programs retrieved")
	writeJSON(w, http.StatusOK, programs)
}

// GetProgram handles GET /programs/{id}.
func (s *Server) GetProgram(w http.ResponseWriter, r *http.Request) {
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

	program, err := s.Store.Programs().Retrieve(r.Context(), id, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// CreateProgram handles POST /programs.
func (s *Server) CreateProgram(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !c.Scopes.Has(auth.ScopeWritePrograms) {
		writeError(w, r, errMissingScope(auth.ScopeWritePrograms))
		return
	}

	var req wire.ProgramRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, apperr.Validation("%s", err.Error()))
		return
	}

	program, err := s.Store.Programs().Create(r.Context(), req, storage.Unrestricted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("program_id", string(program.ID)).
		Str("program_name", program.ProgramName).
		Str("client_id", c.Sub).
		Msg("program added")
	s.notify(r, wire.OperationPost, program)
	writeJSON(w, http.StatusCreated, program)
}

// UpdateProgram handles PUT /programs/{id}.
func (s *Server) UpdateProgram(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !c.Scopes.Has(auth.ScopeWritePrograms) {
		writeError(w, r, errMissingScope(auth.ScopeWritePrograms))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req wire.ProgramRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, apperr.Validation("%s", err.Error()))
		return
	}

	program, err := s.Store.Programs().Update(r.Context(), id, req, storage.Unrestricted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("program_id", string(program.ID)).
		Str("client_id", c.Sub).
		Msg("program updated")
	s.notify(r, wire.OperationPut, program)
	writeJSON(w, http.StatusOK, program)
}

// DeleteProgram handles DELETE /programs/{id}.
func (s *Server) DeleteProgram(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !c.Scopes.Has(auth.ScopeWritePrograms) {
		writeError(w, r, errMissingScope(auth.ScopeWritePrograms))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	program, err := s.Store.Programs().Delete(r.Context(), id, storage.Unrestricted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("program_id", string(id)).
		Str("client_id", c.Sub).
		Msg("program deleted")
	s.notify(r, wire.OperationDelete, program)
	writeJSON(w, http.StatusOK, program)
}
