// Package storage defines the repository contracts of the VTN. The postgres
// sub-package implements them against a relational store; the memory
// sub-package provides a hermetic implementation for tests.
package storage

import (
	"context"

	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/wire"
)

// Permission restricts what a query may see or touch.
//
// An unrestricted permission (read_all, or BL writes) bypasses privacy
// filtering entirely. A restricted permission limits reads to the caller's
// privacy envelope and writes to the caller's own objects.
type Permission struct {
	ClientID   wire.Identifier
	Restricted bool
}

// Unrestricted is the permission used by read_all callers.
var Unrestricted = Permission{}

// ForClient builds a restricted permission for the given caller.
func ForClient(clientID wire.Identifier) Permission {
	return Permission{ClientID: clientID, Restricted: true}
}

// Crud is the polymorphic CRUD contract every entity repository satisfies,
// parameterized by entity, id, request, and filter types.
type Crud[T any, ID comparable, Req any, F any] interface {
	Create(ctx context.Context, new Req, perm Permission) (T, error)
	Retrieve(ctx context.Context, id ID, perm Permission) (T, error)
	RetrieveAll(ctx context.Context, filter F, perm Permission) ([]T, error)
	Update(ctx context.Context, id ID, new Req, perm Permission) (T, error)
	Delete(ctx context.Context, id ID, perm Permission) (T, error)
}

// Pagination bounds list queries. The HTTP edge rejects a Limit outside
// [1, 50] and a negative Skip.
type Pagination struct {
	Skip  int64
	Limit int64
}

// DefaultLimit is applied when a list request does not specify one.
const DefaultLimit int64 = 50

// ProgramFilter selects programs.
type ProgramFilter struct {
	Targets wire.Targets
	Pagination
}

// EventFilter selects events.
type EventFilter struct {
	ProgramID wire.Identifier
	Targets   wire.Targets
	Pagination
}

// ReportFilter selects reports.
type ReportFilter struct {
	ProgramID  wire.Identifier
	EventID    wire.Identifier
	ClientName string
	Pagination
}

// VenFilter selects VENs.
type VenFilter struct {
	VenName string
	Targets wire.Targets
	Pagination
}

// ResourceFilter selects resources beneath one VEN.
type ResourceFilter struct {
	VenID        wire.Identifier
	ResourceName string
	Targets      wire.Targets
	Pagination
}

// SubscriptionFilter selects subscriptions.
type SubscriptionFilter struct {
	ProgramID wire.Identifier
	Pagination
}

// NewReport is a report request plus the owning client captured from the
// authenticated subject. The owner is immutable after creation.
type NewReport struct {
	wire.ReportRequest
	ClientID wire.Identifier
}

// NewVen is a VEN request with the client id already resolved: from the
// body for BL callers, from the token for VEN callers.
type NewVen struct {
	ClientID   wire.Identifier
	VenName    string
	Attributes []wire.ValuesMap
	Targets    wire.Targets
}

// NewResource is a resource request bound to its owning VEN.
type NewResource struct {
	VenID        wire.Identifier
	ResourceName string
	Attributes   []wire.ValuesMap
	Targets      wire.Targets
}

// NewSubscription is a subscription request plus its owning client.
type NewSubscription struct {
	wire.SubscriptionRequest
	ClientID wire.Identifier
}

// Repository contracts per entity. Listing orders are stable: programs,
// reports, VENs, resources, and subscriptions by createdDateTime descending;
// events by priority ascending (unspecified last) then createdDateTime
// descending.
type (
	ProgramRepository = Crud[wire.Program, wire.Identifier, wire.ProgramRequest, ProgramFilter]
	EventRepository   = Crud[wire.Event, wire.Identifier, wire.EventRequest, EventFilter]
	ReportRepository  = Crud[wire.Report, wire.Identifier, NewReport, ReportFilter]
	VenRepository     = Crud[wire.Ven, wire.Identifier, NewVen, VenFilter]
)

// SubscriptionRepository adds the owner index the notifier fans out over.
type SubscriptionRepository interface {
	Crud[wire.Subscription, wire.Identifier, NewSubscription, SubscriptionFilter]
	// RetrieveByOwner returns every subscription grouped by owning client.
	RetrieveByOwner(ctx context.Context) (map[wire.Identifier][]wire.Subscription, error)
}

// ResourceRepository adds an internal lookup of every resource of one VEN,
// with no permission filter. Not exposed over HTTP.
type ResourceRepository interface {
	Crud[wire.Resource, wire.Identifier, NewResource, ResourceFilter]
	RetrieveByVen(ctx context.Context, venID wire.Identifier) ([]wire.Resource, error)
}

// VenPrivacy computes the privacy target set of a VEN client: the union of
// the VEN's targets with the targets of every resource beneath it. found is
// false when no VEN carries the client id.
type VenPrivacy interface {
	TargetsByClientID(ctx context.Context, clientID wire.Identifier) (targets wire.Targets, found bool, err error)
}

// Credentials holds the client id and granted scopes of a registered client
// of the internal OAuth provider.
type Credentials struct {
	ClientID wire.Identifier
	Scopes   auth.Scopes
}

// CredentialStore verifies client credentials for the internal OAuth token
// endpoint.
type CredentialStore interface {
	CheckCredentials(ctx context.Context, clientID, clientSecret string) (Credentials, bool)
}

// Provider bundles the repositories of one storage backend.
type Provider interface {
	Programs() ProgramRepository
	Events() EventRepository
	Reports() ReportRepository
	Vens() VenRepository
	Resources() ResourceRepository
	Subscriptions() SubscriptionRepository
	VenPrivacy() VenPrivacy
	Credentials() CredentialStore
	// ConnectionActive reports whether the backend is reachable; exposed
	// through GET /health.
	ConnectionActive() bool
}
