// Package httpapi implements the VTN's HTTP surface: routing, request
// validation, scope checks, and problem-details error rendering.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/internal/notifier"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

// VenWritePolicy decides whether a VEN-scoped caller may perform a given
// write on VEN objects. The default mirrors the reference implementation:
// write_vens gates both BL and VEN-owner writes. Deployments with stricter
// requirements can swap this in.
type VenWritePolicy func(claims auth.Claims) error

// DefaultVenWritePolicy is the reference behavior.
func DefaultVenWritePolicy(claims auth.Claims) error {
	if !claims.Scopes.Has(auth.ScopeWriteVens) {
		return errMissingScope(auth.ScopeWriteVens)
	}
	return nil
}

// Server holds the dependencies of all HTTP handlers.
type Server struct {
	Store          storage.Provider
	JWT            *auth.Manager
	Notifier       *notifier.Notifier
	OAuthEnabled   bool
	VenWritePolicy VenWritePolicy
}

// Routes builds the chi router with the full OpenADR route table.
func (s *Server) Routes() http.Handler {
	if s.VenWritePolicy == nil {
		s.VenWritePolicy = DefaultVenWritePolicy
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(CorrelationMiddleware)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, wire.Problem{Status: http.StatusNotFound, Title: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, wire.Problem{Status: http.StatusMethodNotAllowed, Title: "Method Not Allowed"})
	})

	// Unauthenticated endpoints.
	r.Get("/health", s.Health)
	r.Post("/auth/token", s.Token)

	// Everything else requires a bearer token.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.JWT, writeAuthProblem))

		r.Get("/programs", s.ListPrograms)
		r.Post("/programs", s.CreateProgram)
		r.Get("/programs/{id}", s.GetProgram)
		r.Put("/programs/{id}", s.UpdateProgram)
		r.Delete("/programs/{id}", s.DeleteProgram)

		r.Get("/events", s.ListEvents)
		r.Post("/events", s.CreateEvent)
		r.Get("/events/{id}", s.GetEvent)
		r.Put("/events/{id}", s.UpdateEvent)
		r.Delete("/events/{id}", s.DeleteEvent)

		r.Get("/reports", s.ListReports)
		r.Post("/reports", s.CreateReport)
		r.Get("/reports/{id}", s.GetReport)
		r.Put("/reports/{id}", s.UpdateReport)
		r.Delete("/reports/{id}", s.DeleteReport)

		r.Get("/vens", s.ListVens)
		r.Post("/vens", s.CreateVen)
		r.Get("/vens/{id}", s.GetVen)
		r.Put("/vens/{id}", s.UpdateVen)
		r.Delete("/vens/{id}", s.DeleteVen)

		r.Get("/vens/{venID}/resources", s.ListResources)
		r.Post("/vens/{venID}/resources", s.CreateResource)
		r.Get("/vens/{venID}/resources/{id}", s.GetResource)
		r.Put("/vens/{venID}/resources/{id}", s.UpdateResource)
		r.Delete("/vens/{venID}/resources/{id}", s.DeleteResource)

		r.Get("/subscriptions", s.ListSubscriptions)
		r.Post("/subscriptions", s.CreateSubscription)
		r.Get("/subscriptions/{id}", s.GetSubscription)
		r.Put("/subscriptions/{id}", s.UpdateSubscription)
		r.Delete("/subscriptions/{id}", s.DeleteSubscription)

		r.Get("/notifiers/websocket", s.NotifierWebsocket)
	})

	log.Info().Msg("HTTP routes registered")
	return r
}

// Health implements GET /health. Storage connectivity is the only check.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if !s.Store.ConnectionActive() {
		writeProblem(w, r, wire.Problem{
			Status: http.StatusServiceUnavailable,
			Title:  "Storage Unavailable",
			Detail: "database connection is not active",
		})
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// notify enqueues a notification for a committed write. Failures only log;
// the write itself has already succeeded.
func (s *Server) notify(r *http.Request, op wire.Operation, object any) {
	if s.Notifier == nil {
		return
	}
	n, err := wire.NewNotification(op, object)
	if err != nil {
		log.Error().Err(err).Msg("could not compose notification")
		return
	}
	s.Notifier.Publish(r.Context(), n)
}
