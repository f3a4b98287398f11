package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/internal/notifier"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/internal/storage/memory"
	"github.com/openleadr/openleadr-go/wire"
)

var testSecret = bytes.Repeat([]byte("s"), 32)

// apiTest drives the full request pipeline against the in-memory store.
type apiTest struct {
	t       *testing.T
	handler http.Handler
	store   *memory.Store
	jwt     *auth.Manager
	token   string
}

func newAPITest(t *testing.T, clientID string, scopes auth.Scopes) *apiTest {
	t.Helper()

	manager, err := auth.NewManagerWithSecret(testSecret)
	require.NoError(t, err)

	store := memory.New()
	server := &Server{
		Store:        store,
		JWT:          manager,
		Notifier:     notifier.New(store.Subscriptions()),
		OAuthEnabled: true,
	}

	token, err := manager.Issue(clientID, scopes, time.Minute)
	require.NoError(t, err)

	return &apiTest{
		t:       t,
		handler: server.Routes(),
		store:   store,
		jwt:     manager,
		token:   token,
	}
}

// as returns a sibling test handle with a different identity against the
// same store and router.
func (a *apiTest) as(clientID string, scopes auth.Scopes) *apiTest {
	a.t.Helper()
	token, err := a.jwt.Issue(clientID, scopes, time.Minute)
	require.NoError(a.t, err)
	return &apiTest{t: a.t, handler: a.handler, store: a.store, jwt: a.jwt, token: token}
}

func (a *apiTest) request(method, path string, body any, out any) int {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+a.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), out),
			"body: %s", rec.Body.String())
	}
	return rec.Code
}

func (a *apiTest) seedProgram(name string, targets wire.Targets) wire.Program {
	a.t.Helper()
	program, err := a.store.Programs().Create(context.Background(),
		wire.ProgramRequest{ProgramName: name, Targets: targets}, storage.Unrestricted)
	require.NoError(a.t, err)
	return program
}

func (a *apiTest) seedEvent(programID wire.Identifier, name string, targets wire.Targets) wire.Event {
	a.t.Helper()
	event, err := a.store.Events().Create(context.Background(), wire.EventRequest{
		ProgramID: programID,
		EventName: name,
		Targets:   targets,
		Intervals: []wire.Interval{priceInterval(0, 1.23)},
	}, storage.Unrestricted)
	require.NoError(a.t, err)
	return event
}

func (a *apiTest) seedVen(clientID, venName string, targets wire.Targets) wire.Ven {
	a.t.Helper()
	ven, err := a.store.Vens().Create(context.Background(), storage.NewVen{
		ClientID: wire.Identifier(clientID),
		VenName:  venName,
		Targets:  targets,
	}, storage.Unrestricted)
	require.NoError(a.t, err)
	return ven
}

func (a *apiTest) seedResource(venID wire.Identifier, name string, targets wire.Targets) wire.Resource {
	a.t.Helper()
	resource, err := a.store.Resources().Create(context.Background(), storage.NewResource{
		VenID:        venID,
		ResourceName: name,
		Targets:      targets,
	}, storage.Unrestricted)
	require.NoError(a.t, err)
	return resource
}

func priceInterval(id int32, price float64) wire.Interval {
	return wire.Interval{
		ID: id,
		IntervalPeriod: &wire.IntervalPeriod{
			Start: time.Date(2023, 6, 15, 9, 30, 0, 0, time.UTC),
			Duration: &wire.Duration{
				Hours: 1,
			},
		},
		Payloads: []wire.ValuesMap{{
			Type:   wire.ValueTypePrice,
			Values: []wire.Value{wire.NumberValue(price)},
		}},
	}
}
