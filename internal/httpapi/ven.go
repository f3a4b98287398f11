package httpapi

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

// ListVens handles GET /vens.
func (s *Server) ListVens(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	perm, err := venObjectReadPermission(c)
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

	vens, err := s.Store.Vens().RetrieveAll(r.Context(), storage.VenFilter{
		VenName:    r.URL.Query().Get("venName"),
		Targets:    targets,
		Pagination: pagination,
	}, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if vens == nil {
		vens = []wire.Ven{}
	}

	log.Ctx(r.Context()).Debug().Str("client_id", c.Sub).Int("count", len(vens)).Msg("VENs retrieved")
	writeJSON(w, http.StatusOK, vens)
}

// GetVen handles GET /vens/{id}.
func (s *Server) GetVen(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	perm, err := venObjectReadPermission(c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	ven, err := s.Store.Vens().Retrieve(r.Context(), id, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ven)
}

// resolveVenRequest turns the tagged request body into a storage.NewVen.
// VEN_VEN_REQUEST callers get their client id from the token and, on
// update, keep the targets of the stored VEN (VENs may not edit targets).
func (s *Server) resolveVenRequest(r *http.Request, c auth.Claims, req wire.VenRequest, existing *wire.Ven) (storage.NewVen, error) {
	if err := req.Validate(); err != nil {
		return storage.NewVen{}, apperr.Validation("%s", err.Error())
	}

	if req.IsBL() {
		if isVenCaller(c) {
			return storage.NewVen{}, apperr.Forbidden("VEN clients must submit a " + wire.ObjectTypeVenVenRequest)
		}
		return storage.NewVen{
			ClientID:   req.ClientID,
			VenName:    req.VenName,
			Attributes: req.Attributes,
			Targets:    req.Targets,
		}, nil
	}

	clientID, err := c.ClientID()
	if err != nil {
		return storage.NewVen{}, err
	}
	new := storage.NewVen{
		ClientID:   clientID,
		VenName:    req.VenName,
		Attributes: req.Attributes,
	}
	if existing != nil {
		new.ClientID = existing.ClientID
		new.Targets = existing.Targets
	}
	return new, nil
}

// CreateVen handles POST /vens.
func (s *Server) CreateVen(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.VenWritePolicy(c); err != nil {
		writeError(w, r, err)
		return
	}

	var req wire.VenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	new, err := s.resolveVenRequest(r, c, req, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ven, err := s.Store.Vens().Create(r.Context(), new, storage.Unrestricted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("ven_id", string(ven.ID)).
		Str("ven_name", ven.VenName).
		Str("client_id", c.Sub).
		Msg("VEN added")
	s.notify(r, wire.OperationPost, ven)
	writeJSON(w, http.StatusCreated, ven)
}

// UpdateVen handles PUT /vens/{id}.
func (s *Server) UpdateVen(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.VenWritePolicy(c); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req wire.VenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var existing *wire.Ven
	if !req.IsBL() {
		// A VEN keeps its stored clientID and targets on self-update.
		clientID, err := c.ClientID()
		if err != nil {
			writeError(w, r, err)
			return
		}
		stored, err := s.Store.Vens().Retrieve(r.Context(), id, storage.ForClient(clientID))
		if err != nil {
			writeError(w, r, err)
			return
		}
		existing = &stored
	}

	new, err := s.resolveVenRequest(r, c, req, existing)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ven, err := s.Store.Vens().Update(r.Context(), id, new, storage.Unrestricted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("ven_id", string(ven.ID)).
		Str("ven_name", ven.VenName).
		Str("client_id", c.Sub).
		Msg("VEN updated")
	s.notify(r, wire.OperationPut, ven)
	writeJSON(w, http.StatusOK, ven)
}

// DeleteVen handles DELETE /vens/{id}.
func (s *Server) DeleteVen(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.VenWritePolicy(c); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	ven, err := s.Store.Vens().Delete(r.Context(), id, storage.Unrestricted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("ven_id", string(id)).
		Str("client_id", c.Sub).
		Msg("VEN deleted")
	s.notify(r, wire.OperationDelete, ven)
	writeJSON(w, http.StatusOK, ven)
}
