package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/wire"
)

func dialNotifier(t *testing.T, server *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := strings.Replace(server.URL, "http://", "ws://", 1) + "/notifiers/websocket"
	header := http.Header{"Authorization": {"Bearer " + token}}
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	return dialer.Dial(wsURL, header)
}

func TestWebsocketDoubleOpenConflict(t *testing.T) {
	test := newAPITest(t, "clientA", auth.Scopes{auth.ScopeReadAll})
	server := httptest.NewServer(test.handler)
	defer server.Close()

	conn, resp, err := dialNotifier(t, server, test.token)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	defer conn.Close()

	// Second connection for the same client while the first is alive.
	_, resp2, err := dialNotifier(t, server, test.token)
	require.Error(t, err)
	require.NotNil(t, resp2)
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
}

func TestWebsocketReceivesSubscribedNotification(t *testing.T) {
	test := newAPITest(t, "bl-client",
		auth.Scopes{auth.ScopeReadAll, auth.ScopeWritePrograms, auth.ScopeWriteSubscriptions})
	server := httptest.NewServer(test.handler)
	defer server.Close()

	// Subscribe to program creations.
	var subscription wire.Subscription
	status := test.request(http.MethodPost, "/subscriptions", wire.SubscriptionRequest{
		ClientName: "bl-client",
		ObjectOperations: []wire.SubscriptionOperation{{
			Objects:    []wire.ObjectType{wire.ObjectProgram},
			Operations: []wire.Operation{wire.OperationPost},
			Mechanism:  wire.MechanismWebsocket,
		}},
	}, &subscription)
	require.Equal(t, http.StatusCreated, status)

	conn, _, err := dialNotifier(t, server, test.token)
	require.NoError(t, err)
	defer conn.Close()

	var program wire.Program
	status = test.request(http.MethodPost, "/programs",
		wire.ProgramRequest{ProgramName: "notify-me"}, &program)
	require.Equal(t, http.StatusCreated, status)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var notification wire.Notification
	require.NoError(t, conn.ReadJSON(&notification))
	assert.Equal(t, wire.OperationPost, notification.Operation)
	assert.Equal(t, wire.ObjectProgram, notification.ObjectType)

	object, err := notification.DecodeObject()
	require.NoError(t, err)
	received, ok := object.(wire.Program)
	require.True(t, ok)
	assert.Equal(t, program.ID, received.ID)
}

func TestWebsocketIgnoresUnsubscribedOperations(t *testing.T) {
	test := newAPITest(t, "bl-client",
		auth.Scopes{auth.ScopeReadAll, auth.ScopeWritePrograms, auth.ScopeWriteSubscriptions})
	server := httptest.NewServer(test.handler)
	defer server.Close()

	// Subscribed to deletes only.
	var subscription wire.Subscription
	status := test.request(http.MethodPost, "/subscriptions", wire.SubscriptionRequest{
		ClientName: "bl-client",
		ObjectOperations: []wire.SubscriptionOperation{{
			Objects:    []wire.ObjectType{wire.ObjectProgram},
			Operations: []wire.Operation{wire.OperationDelete},
			Mechanism:  wire.MechanismWebsocket,
		}},
	}, &subscription)
	require.Equal(t, http.StatusCreated, status)

	conn, _, err := dialNotifier(t, server, test.token)
	require.NoError(t, err)
	defer conn.Close()

	var program wire.Program
	require.Equal(t, http.StatusCreated, test.request(http.MethodPost, "/programs",
		wire.ProgramRequest{ProgramName: "quiet"}, &program))

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var notification wire.Notification
	err = conn.ReadJSON(&notification)
	require.Error(t, err, "create must not be delivered to a delete-only subscription")
}

func TestWebsocketRequiresReadScope(t *testing.T) {
	test := newAPITest(t, "clientA", auth.Scopes{auth.ScopeWriteReports})
	server := httptest.NewServer(test.handler)
	defer server.Close()

	_, resp, err := dialNotifier(t, server, test.token)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebsocketReconnectAfterClose(t *testing.T) {
	test := newAPITest(t, "clientA", auth.Scopes{auth.ScopeReadAll})
	server := httptest.NewServer(test.handler)
	defer server.Close()

	conn, _, err := dialNotifier(t, server, test.token)
	require.NoError(t, err)
	conn.Close()

	// The registry entry is removed once the loop notices the close.
	require.Eventually(t, func() bool {
		conn2, _, err := dialNotifier(t, server, test.token)
		if err != nil {
			return false
		}
		conn2.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond)
}
