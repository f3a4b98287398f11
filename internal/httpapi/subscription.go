package httpapi

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

// ListSubscriptions handles GET /subscriptions.
func (s *Server) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
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

	filter := storage.SubscriptionFilter{Pagination: pagination}
	if v := r.URL.Query().Get("programID"); v != "" {
		id, err := wire.ParseIdentifier(v)
		if err != nil {
			writeError(w, r, apperr.Validation("programID: %s", err.Error()))
			return
		}
		filter.ProgramID = id
	}

	subscriptions, err := s.Store.Subscriptions().RetrieveAll(r.Context(), filter, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if subscriptions == nil {
		subscriptions = []wire.Subscription{}
	}
	writeJSON(w, http.StatusOK, subscriptions)
}

// GetSubscription handles GET /subscriptions/{id}.
func (s *Server) GetSubscription(w http.ResponseWriter, r *http.Request) {
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

	subscription, err := s.Store.Subscriptions().Retrieve(r.Context(), id, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subscription)
}

// subscriptionWrite resolves the caller for subscription mutations; the
// authenticated subject owns the subscription.
func (s *Server) subscriptionWrite(r *http.Request) (auth.Claims, storage.Permission, error) {
	c, err := claims(r)
	if err != nil {
		return auth.Claims{}, storage.Permission{}, err
	}
	if !c.Scopes.Has(auth.ScopeWriteSubscriptions) {
		return auth.Claims{}, storage.Permission{}, errMissingScope(auth.ScopeWriteSubscriptions)
	}
	clientID, err := c.ClientID()
	if err != nil {
		return auth.Claims{}, storage.Permission{}, err
	}
	return c, storage.ForClient(clientID), nil
}

// CreateSubscription handles POST /subscriptions.
func (s *Server) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	c, perm, err := s.subscriptionWrite(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req wire.SubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, apperr.Validation("%s", err.Error()))
		return
	}

	subscription, err := s.Store.Subscriptions().Create(r.Context(),
		storage.NewSubscription{SubscriptionRequest: req, ClientID: perm.ClientID}, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("subscription_id", string(subscription.ID)).
		Str("client_id", c.Sub).
		Msg("subscription added")
	s.notify(r, wire.OperationPost, subscription)
	writeJSON(w, http.StatusCreated, subscription)
}

// UpdateSubscription handles PUT /subscriptions/{id}.
func (s *Server) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	c, perm, err := s.subscriptionWrite(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req wire.SubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, apperr.Validation("%s", err.Error()))
		return
	}

	subscription, err := s.Store.Subscriptions().Update(r.Context(), id,
		storage.NewSubscription{SubscriptionRequest: req, ClientID: perm.ClientID}, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("subscription_id", string(subscription.ID)).
		Str("client_id", c.Sub).
		Msg("subscription updated")
	s.notify(r, wire.OperationPut, subscription)
	writeJSON(w, http.StatusOK, subscription)
}

// DeleteSubscription handles DELETE /subscriptions/{id}.
func (s *Server) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	c, perm, err := s.subscriptionWrite(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	subscription, err := s.Store.Subscriptions().Delete(r.Context(), id, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("subscription_id", string(id)).
		Str("client_id", c.Sub).
		Msg("subscription deleted")
	s.notify(r, wire.OperationDelete, subscription)
	writeJSON(w, http.StatusOK, subscription)
}
