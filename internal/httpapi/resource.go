package httpapi

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

// ListResources handles GET /vens/{venID}/resources.
func (s *Server) ListResources(w http.ResponseWriter, r *http.Request) {
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
	venID, err := pathID(r, "venID")
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

	resources, err := s.Store.Resources().RetrieveAll(r.Context(), storage.ResourceFilter{
		VenID:        venID,
		ResourceName: r.URL.Query().Get("resourceName"),
		Targets:      targets,
		Pagination:   pagination,
	}, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if resources == nil {
		resources = []wire.Resource{}
	}
	writeJSON(w, http.StatusOK, resources)
}

// GetResource handles GET /vens/{venID}/resources/{id}.
func (s *Server) GetResource(w http.ResponseWriter, r *http.Request) {
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
	venID, err := pathID(r, "venID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	resource, err := s.Store.Resources().Retrieve(r.Context(), id, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if resource.VenID != venID {
		writeError(w, r, apperr.NotFound())
		return
	}
	writeJSON(w, http.StatusOK, resource)
}

// resourceWrite applies the VEN write policy and resolves the permission a
// resource mutation runs under: unrestricted for BL callers, owner-bound
// for VEN callers.
func (s *Server) resourceWrite(r *http.Request) (auth.Claims, storage.Permission, error) {
	c, err := claims(r)
	if err != nil {
		return auth.Claims{}, storage.Permission{}, err
	}
	if err := s.VenWritePolicy(c); err != nil {
		return auth.Claims{}, storage.Permission{}, err
	}
	if isVenCaller(c) {
		clientID, err := c.ClientID()
		if err != nil {
			return auth.Claims{}, storage.Permission{}, err
		}
		return c, storage.ForClient(clientID), nil
	}
	return c, storage.Unrestricted, nil
}

func (s *Server) resolveResourceRequest(c auth.Claims, venID wire.Identifier, req wire.ResourceRequest, existing *wire.Resource) (storage.NewResource, error) {
	if err := req.Validate(); err != nil {
		return storage.NewResource{}, apperr.Validation("%s", err.Error())
	}
	if req.IsBL() && isVenCaller(c) {
		return storage.NewResource{}, apperr.Forbidden("VEN clients must submit a " + wire.ObjectTypeVenResourceRequest)
	}

	new := storage.NewResource{
		VenID:        venID,
		ResourceName: req.ResourceName,
		Attributes:   req.Attributes,
		Targets:      req.Targets,
	}
	if !req.IsBL() && existing != nil {
		// VENs may not edit targets; keep the stored ones.
		new.Targets = existing.Targets
	}
	return new, nil
}

// CreateResource handles POST /vens/{venID}/resources.
func (s *Server) CreateResource(w http.ResponseWriter, r *http.Request) {
	c, perm, err := s.resourceWrite(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	venID, err := pathID(r, "venID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req wire.ResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	new, err := s.resolveResourceRequest(c, venID, req, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resource, err := s.Store.Resources().Create(r.Context(), new, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("resource_id", string(resource.ID)).
		Str("ven_id", string(venID)).
		Str("client_id", c.Sub).
		Msg("resource added")
	s.notify(r, wire.OperationPost, resource)
	writeJSON(w, http.StatusCreated, resource)
}

// UpdateResource handles PUT /vens/{venID}/resources/{id}.
func (s *Server) UpdateResource(w http.ResponseWriter, r *http.Request) {
	c, perm, err := s.resourceWrite(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	venID, err := pathID(r, "venID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req wire.ResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	stored, err := s.Store.Resources().Retrieve(r.Context(), id, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stored.VenID != venID {
		writeError(w, r, apperr.NotFound())
		return
	}

	new, err := s.resolveResourceRequest(c, venID, req, &stored)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resource, err := s.Store.Resources().Update(r.Context(), id, new, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("resource_id", string(resource.ID)).
		Str("client_id", c.Sub).
		Msg("resource updated")
	s.notify(r, wire.OperationPut, resource)
	writeJSON(w, http.StatusOK, resource)
}

// DeleteResource handles DELETE /vens/{venID}/resources/{id}.
func (s *Server) DeleteResource(w http.ResponseWriter, r *http.Request) {
	c, perm, err := s.resourceWrite(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	venID, err := pathID(r, "venID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	stored, err := s.Store.Resources().Retrieve(r.Context(), id, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stored.VenID != venID {
		writeError(w, r, apperr.NotFound())
		return
	}

	resource, err := s.Store.Resources().Delete(r.Context(), id, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("resource_id", string(id)).
		Str("client_id", c.Sub).
		Msg("resource deleted")
	s.notify(r, wire.OperationDelete, resource)
	writeJSON(w, http.StatusOK, resource)
}
