package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// NotifierWebsocket handles GET /notifiers/websocket. It upgrades the
// connection and drains the caller's notification channel into JSON text
// frames until the client disconnects or the channel closes.
func (s *Server) NotifierWebsocket(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !c.Scopes.HasAny(auth.ScopeReadAll, auth.ScopeReadTargets, auth.ScopeReadVenObjects) {
		writeError(w, r, errMissingScope(auth.ScopeReadAll, auth.ScopeReadTargets, auth.ScopeReadVenObjects))
		return
	}
	clientID, err := c.ClientID()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if s.Notifier == nil {
		writeError(w, r, apperr.Validation("notifications are not enabled on this VTN"))
		return
	}

	// Claim the channel before upgrading so a second connection is refused
	// with a regular 409 response.
	ch, err := s.Notifier.Register(clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Notifier.Unregister(clientID)
		log.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	logger := log.With().Str("client_id", string(clientID)).Logger()

	// Reader: only there to observe the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			s.Notifier.Unregister(clientID)
			conn.Close()
		}()
		for {
			select {
			case notification, ok := <-ch:
				if !ok {
					logger.Debug().Msg("notification channel closed")
					return
				}
				if err := conn.WriteJSON(notification); err != nil {
					logger.Warn().Err(err).Msg("websocket send failed, closing")
					return
				}
			case <-done:
				logger.Debug().Msg("websocket client disconnected")
				return
			}
		}
	}()
}
