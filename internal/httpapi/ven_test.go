package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/wire"
)

func TestVenEnrollmentCapturesClientID(t *testing.T) {
	test := newAPITest(t, "ven-1-client-id",
		auth.Scopes{auth.ScopeReadVenObjects, auth.ScopeWriteVens})

	var ven wire.Ven
	status := test.request(http.MethodPost, "/vens", wire.VenRequest{
		ObjectType: wire.ObjectTypeVenVenRequest,
		VenName:    "ven-1",
	}, &ven)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, wire.Identifier("ven-1-client-id"), ven.ClientID)

	// Second enrollment under the same client id conflicts.
	var problem wire.Problem
	status = test.request(http.MethodPost, "/vens", wire.VenRequest{
		ObjectType: wire.ObjectTypeVenVenRequest,
		VenName:    "ven-1-again",
	}, &problem)
	require.Equal(t, http.StatusConflict, status)
}

func TestVenRequestRejectsClientIDFromVen(t *testing.T) {
	test := newAPITest(t, "ven-1-client-id",
		auth.Scopes{auth.ScopeReadVenObjects, auth.ScopeWriteVens})

	var problem wire.Problem
	status := test.request(http.MethodPost, "/vens", wire.VenRequest{
		ObjectType: wire.ObjectTypeVenVenRequest,
		ClientID:   "spoofed",
		VenName:    "ven-1",
	}, &problem)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestVenBlRequestRejectedForVenCaller(t *testing.T) {
	test := newAPITest(t, "ven-1-client-id",
		auth.Scopes{auth.ScopeReadVenObjects, auth.ScopeWriteVens})

	var problem wire.Problem
	status := test.request(http.MethodPost, "/vens", wire.VenRequest{
		ObjectType: wire.ObjectTypeBlVenRequest,
		ClientID:   "someone-else",
		VenName:    "ven-x",
	}, &problem)
	require.Equal(t, http.StatusForbidden, status)
}

func TestVenNameUnique(t *testing.T) {
	test := newAPITest(t, "bl-client", auth.Scopes{auth.ScopeReadAll, auth.ScopeWriteVens})

	var ven wire.Ven
	status := test.request(http.MethodPost, "/vens", wire.VenRequest{
		ObjectType: wire.ObjectTypeBlVenRequest,
		ClientID:   "client-a",
		VenName:    "shared-name",
	}, &ven)
	require.Equal(t, http.StatusCreated, status)

	var problem wire.Problem
	status = test.request(http.MethodPost, "/vens", wire.VenRequest{
		ObjectType: wire.ObjectTypeBlVenRequest,
		ClientID:   "client-b",
		VenName:    "shared-name",
	}, &problem)
	require.Equal(t, http.StatusConflict, status)
}

func TestVenDeleteBlockedByResources(t *testing.T) {
	test := newAPITest(t, "bl-client", auth.Scopes{auth.ScopeReadAll, auth.ScopeWriteVens})

	ven := test.seedVen("client-a", "ven-a", nil)
	test.seedResource(ven.ID, "res-1", nil)

	var problem wire.Problem
	status := test.request(http.MethodDelete, "/vens/"+string(ven.ID), nil, &problem)
	require.Equal(t, http.StatusConflict, status)

	// After removing the resource the delete goes through.
	var resources []wire.Resource
	require.Equal(t, http.StatusOK,
		test.request(http.MethodGet, "/vens/"+string(ven.ID)+"/resources", nil, &resources))
	require.Len(t, resources, 1)

	var deleted wire.Resource
	status = test.request(http.MethodDelete,
		"/vens/"+string(ven.ID)+"/resources/"+string(resources[0].ID), nil, &deleted)
	require.Equal(t, http.StatusOK, status)

	var gone wire.Ven
	status = test.request(http.MethodDelete, "/vens/"+string(ven.ID), nil, &gone)
	require.Equal(t, http.StatusOK, status)
}

func TestVenReadScopedToOwnVen(t *testing.T) {
	admin := newAPITest(t, "bl-client", auth.Scopes{auth.ScopeReadAll, auth.ScopeWriteVens})
	mine := admin.seedVen("ven-1-client-id", "ven-1", nil)
	admin.seedVen("other-client-id", "ven-2", nil)

	ven1 := admin.as("ven-1-client-id", auth.Scopes{auth.ScopeReadVenObjects})
	var vens []wire.Ven
	status := ven1.request(http.MethodGet, "/vens", nil, &vens)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, vens, 1)
	assert.Equal(t, mine.ID, vens[0].ID)
}

func TestResourceNameUniquePerVen(t *testing.T) {
	test := newAPITest(t, "bl-client", auth.Scopes{auth.ScopeReadAll, auth.ScopeWriteVens})

	venA := test.seedVen("client-a", "ven-a", nil)
	venB := test.seedVen("client-b", "ven-b", nil)

	body := wire.ResourceRequest{
		ObjectType:   wire.ObjectTypeBlResourceRequest,
		ResourceName: "meter",
	}

	var resource wire.Resource
	status := test.request(http.MethodPost, "/vens/"+string(venA.ID)+"/resources", body, &resource)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, venA.ID, resource.VenID)

	var problem wire.Problem
	status = test.request(http.MethodPost, "/vens/"+string(venA.ID)+"/resources", body, &problem)
	require.Equal(t, http.StatusConflict, status)

	// The same name under another VEN is fine.
	status = test.request(http.MethodPost, "/vens/"+string(venB.ID)+"/resources", body, &resource)
	require.Equal(t, http.StatusCreated, status)
}

func TestResourceVenMismatchIs404(t *testing.T) {
	test := newAPITest(t, "bl-client", auth.Scopes{auth.ScopeReadAll, auth.ScopeWriteVens})

	venA := test.seedVen("client-a", "ven-a", nil)
	venB := test.seedVen("client-b", "ven-b", nil)
	resource := test.seedResource(venA.ID, "meter", nil)

	var problem wire.Problem
	status := test.request(http.MethodGet,
		"/vens/"+string(venB.ID)+"/resources/"+string(resource.ID), nil, &problem)
	require.Equal(t, http.StatusNotFound, status)
}
