// Package memory implements the storage contracts in process memory. It
// backs the unit tests; semantics mirror the
// postgres adapter, including privacy filtering, orderings, and uniqueness.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

// Store is an in-memory storage.Provider.
type Store struct {
	mu            sync.RWMutex
	programs      map[wire.Identifier]wire.Program
	events        map[wire.Identifier]wire.Event
	reports       map[wire.Identifier]wire.Report
	reportOwners  map[wire.Identifier]wire.Identifier
	vens          map[wire.Identifier]wire.Ven
	resources     map[wire.Identifier]wire.Resource
	subscriptions map[wire.Identifier]wire.Subscription
	subOwners     map[wire.Identifier]wire.Identifier
	credentials   map[string]credential

	now func() time.Time
}

type credential struct {
	secret string
	scopes auth.Scopes
}

// New creates an empty store.
func New() *Store {
	return &Store{
		programs:      make(map[wire.Identifier]wire.Program),
		events:        make(map[wire.Identifier]wire.Event),
		reports:       make(map[wire.Identifier]wire.Report),
		reportOwners:  make(map[wire.Identifier]wire.Identifier),
		vens:          make(map[wire.Identifier]wire.Ven),
		resources:     make(map[wire.Identifier]wire.Resource),
		subscriptions: make(map[wire.Identifier]wire.Subscription),
		subOwners:     make(map[wire.Identifier]wire.Identifier),
		credentials:   make(map[string]credential),
		now:           time.Now,
	}
}

// AddCredential registers a client for the internal OAuth provider.
func (s *Store) AddCredential(clientID, clientSecret string, scopes auth.Scopes) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[clientID] = credential{secret: clientSecret, scopes: scopes}
}

func (s *Store) Programs() storage.ProgramRepository           { return (*programStore)(s) }
func (s *Store) Events() storage.EventRepository               { return (*eventStore)(s) }
func (s *Store) Reports() storage.ReportRepository             { return (*reportStore)(s) }
func (s *Store) Vens() storage.VenRepository                   { return (*venStore)(s) }
func (s *Store) Resources() storage.ResourceRepository         { return (*resourceStore)(s) }
func (s *Store) Subscriptions() storage.SubscriptionRepository { return (*subscriptionStore)(s) }
func (s *Store) VenPrivacy() storage.VenPrivacy                { return (*privacyStore)(s) }
func (s *Store) Credentials() storage.CredentialStore          { return (*credentialStore)(s) }
func (s *Store) ConnectionActive() bool                        { return true }

func newID() wire.Identifier { return wire.Identifier(uuid.NewString()) }

func paginate[T any](items []T, p storage.Pagination) []T {
	limit := p.Limit
	if limit <= 0 {
		limit = storage.DefaultLimit
	}
	if p.Skip >= int64(len(items)) {
		return nil
	}
	items = items[p.Skip:]
	if int64(len(items)) > limit {
		items = items[:limit]
	}
	return items
}

// privacyTargets computes the privacy envelope of a client. Callers must
// hold at least the read lock.
func (s *Store) privacyTargets(clientID wire.Identifier) (wire.Targets, bool) {
	for _, ven := range s.vens {
		if ven.ClientID != clientID {
			continue
		}
		targets := ven.Targets
		for _, res := range s.resources {
			if res.VenID == ven.ID {
				targets = targets.Union(res.Targets)
			}
		}
		return targets, true
	}
	return nil, false
}

// visible applies the object-privacy rule: under a restricted permission an
// object is visible iff its targets are a subset of the caller's privacy
// envelope. With no envelope only untargeted objects remain visible.
func (s *Store) visible(targets wire.Targets, perm storage.Permission) bool {
	if !perm.Restricted {
		return true
	}
	envelope, _ := s.privacyTargets(perm.ClientID)
	return targets.SubsetOf(envelope)
}

// ---- programs ----

type programStore Store

func (p *programStore) Create(_ context.Context, new wire.ProgramRequest, _ storage.Permission) (wire.Program, error) {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.programs {
		if existing.ProgramName == new.ProgramName {
			return wire.Program{}, apperr.Conflict("program with name %q already exists", new.ProgramName)
		}
	}

	now := s.now().UTC()
	program := wire.Program{
		ID:                   newID(),
		CreatedDateTime:      now,
		ModificationDateTime: now,
		ProgramRequest:       new,
	}
	s.programs[program.ID] = program
	return program, nil
}

func (p *programStore) Retrieve(_ context.Context, id wire.Identifier, perm storage.Permission) (wire.Program, error) {
	s := (*Store)(p)
	s.mu.RLock()
	defer s.mu.RUnlock()

	program, ok := s.programs[id]
	if !ok || !s.visible(program.Targets, perm) {
		return wire.Program{}, apperr.NotFound()
	}
	return program, nil
}

func (p *programStore) RetrieveAll(_ context.Context, filter storage.ProgramFilter, perm storage.Permission) ([]wire.Program, error) {
	s := (*Store)(p)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []wire.Program
	for _, program := range s.programs {
		if !program.Targets.SupersetOf(filter.Targets) {
			continue
		}
		if !s.visible(program.Targets, perm) {
			continue
		}
		out = append(out, program)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedDateTime.After(out[j].CreatedDateTime)
	})
	return paginate(out, filter.Pagination), nil
}

func (p *programStore) Update(_ context.Context, id wire.Identifier, new wire.ProgramRequest, perm storage.Permission) (wire.Program, error) {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()

	program, ok := s.programs[id]
	if !ok {
		return wire.Program{}, apperr.NotFound()
	}
	for otherID, existing := range s.programs {
		if otherID != id && existing.ProgramName == new.ProgramName {
			return wire.Program{}, apperr.Conflict("program with name %q already exists", new.ProgramName)
		}
	}

	program.ProgramRequest = new
	program.ModificationDateTime = s.now().UTC()
	s.programs[id] = program
	return program, nil
}

func (p *programStore) Delete(_ context.Context, id wire.Identifier, _ storage.Permission) (wire.Program, error) {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()

	program, ok := s.programs[id]
	if !ok {
		return wire.Program{}, apperr.NotFound()
	}
	delete(s.programs, id)
	return program, nil
}

// ---- events ----

type eventStore Store

func (e *eventStore) Create(_ context.Context, new wire.EventRequest, _ storage.Permission) (wire.Event, error) {
	s := (*Store)(e)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.programs[new.ProgramID]; !ok {
		return wire.Event{}, apperr.Validation("programID %q does not refer to an existing program", new.ProgramID)
	}

	now := s.now().UTC()
	event := wire.Event{
		ID:                   newID(),
		CreatedDateTime:      now,
		ModificationDateTime: now,
		EventRequest:         new,
	}
	s.events[event.ID] = event
	return event, nil
}

func (e *eventStore) Retrieve(_ context.Context, id wire.Identifier, perm storage.Permission) (wire.Event, error) {
	s := (*Store)(e)
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok || !s.visible(event.Targets, perm) {
		return wire.Event{}, apperr.NotFound()
	}
	return event, nil
}

func (e *eventStore) RetrieveAll(_ context.Context, filter storage.EventFilter, perm storage.Permission) ([]wire.Event, error) {
	s := (*Store)(e)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []wire.Event
	for _, event := range s.events {
		if filter.ProgramID != "" && event.ProgramID != filter.ProgramID {
			continue
		}
		if !event.Targets.SupersetOf(filter.Targets) {
			continue
		}
		if !s.visible(event.Targets, perm) {
			continue
		}
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool {
		// priority ascending, unspecified last; ties newest-first
		if c := out[i].Priority.Compare(out[j].Priority); c != 0 {
			return c > 0
		}
		return out[i].CreatedDateTime.After(out[j].CreatedDateTime)
	})
	return paginate(out, filter.Pagination), nil
}

func (e *eventStore) Update(_ context.Context, id wire.Identifier, new wire.EventRequest, _ storage.Permission) (wire.Event, error) {
	s := (*Store)(e)
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return wire.Event{}, apperr.NotFound()
	}
	if _, ok := s.programs[new.ProgramID]; !ok {
		return wire.Event{}, apperr.Validation("programID %q does not refer to an existing program", new.ProgramID)
	}

	event.EventRequest = new
	event.ModificationDateTime = s.now().UTC()
	s.events[id] = event
	return event, nil
}

func (e *eventStore) Delete(_ context.Context, id wire.Identifier, _ storage.Permission) (wire.Event, error) {
	s := (*Store)(e)
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return wire.Event{}, apperr.NotFound()
	}
	delete(s.events, id)
	return event, nil
}

// ---- reports ----

type reportStore Store

func (r *reportStore) Create(_ context.Context, new storage.NewReport, _ storage.Permission) (wire.Report, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[new.EventID]; !ok {
		return wire.Report{}, apperr.Validation("eventID %q does not refer to an existing event", new.EventID)
	}

	now := s.now().UTC()
	report := wire.Report{
		ID:                   newID(),
		CreatedDateTime:      now,
		ModificationDateTime: now,
		ReportRequest:        new.ReportRequest,
	}
	s.reports[report.ID] = report
	s.reportOwners[report.ID] = new.ClientID
	return report, nil
}

func (r *reportStore) Retrieve(_ context.Context, id wire.Identifier, perm storage.Permission) (wire.Report, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	if !ok || (perm.Restricted && s.reportOwners[id] != perm.ClientID) {
		return wire.Report{}, apperr.NotFound()
	}
	return report, nil
}

func (r *reportStore) RetrieveAll(_ context.Context, filter storage.ReportFilter, perm storage.Permission) ([]wire.Report, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []wire.Report
	for id, report := range s.reports {
		if perm.Restricted && s.reportOwners[id] != perm.ClientID {
			continue
		}
		if filter.ProgramID != "" && report.ProgramID != filter.ProgramID {
			continue
		}
		if filter.EventID != "" && report.EventID != filter.EventID {
			continue
		}
		if filter.ClientName != "" && report.ClientName != filter.ClientName {
			continue
		}
		out = append(out, report)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedDateTime.After(out[j].CreatedDateTime)
	})
	return paginate(out, filter.Pagination), nil
}

func (r *reportStore) Update(_ context.Context, id wire.Identifier, new storage.NewReport, perm storage.Permission) (wire.Report, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[id]
	// Non-owners get NotFound, not Forbidden, to avoid leaking existence.
	if !ok || (perm.Restricted && s.reportOwners[id] != perm.ClientID) {
		return wire.Report{}, apperr.NotFound()
	}

	report.ReportRequest = new.ReportRequest
	report.ModificationDateTime = s.now().UTC()
	s.reports[id] = report
	return report, nil
}

func (r *reportStore) Delete(_ context.Context, id wire.Identifier, perm storage.Permission) (wire.Report, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[id]
	if !ok || (perm.Restricted && s.reportOwners[id] != perm.ClientID) {
		return wire.Report{}, apperr.NotFound()
	}
	delete(s.reports, id)
	delete(s.reportOwners, id)
	return report, nil
}

// ---- vens ----

type venStore Store

func (v *venStore) Create(_ context.Context, new storage.NewVen, _ storage.Permission) (wire.Ven, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.vens {
		if existing.VenName == new.VenName {
			return wire.Ven{}, apperr.Conflict("VEN with name %q already exists", new.VenName)
		}
		if existing.ClientID == new.ClientID {
			return wire.Ven{}, apperr.Conflict("VEN with clientID %q already exists", new.ClientID)
		}
	}

	now := s.now().UTC()
	ven := wire.Ven{
		ID:                   newID(),
		CreatedDateTime:      now,
		ModificationDateTime: now,
		ClientID:             new.ClientID,
		VenName:              new.VenName,
		Attributes:           new.Attributes,
		Targets:              new.Targets,
	}
	s.vens[ven.ID] = ven
	return ven, nil
}

func (v *venStore) Retrieve(_ context.Context, id wire.Identifier, perm storage.Permission) (wire.Ven, error) {
	s := (*Store)(v)
	s.mu.RLock()
	defer s.mu.RUnlock()

	ven, ok := s.vens[id]
	if !ok || (perm.Restricted && ven.ClientID != perm.ClientID) {
		return wire.Ven{}, apperr.NotFound()
	}
	return ven, nil
}

func (v *venStore) RetrieveAll(_ context.Context, filter storage.VenFilter, perm storage.Permission) ([]wire.Ven, error) {
	s := (*Store)(v)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []wire.Ven
	for _, ven := range s.vens {
		if perm.Restricted && ven.ClientID != perm.ClientID {
			continue
		}
		if filter.VenName != "" && ven.VenName != filter.VenName {
			continue
		}
		if !ven.Targets.SupersetOf(filter.Targets) {
			continue
		}
		out = append(out, ven)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedDateTime.After(out[j].CreatedDateTime)
	})
	return paginate(out, filter.Pagination), nil
}

func (v *venStore) Update(_ context.Context, id wire.Identifier, new storage.NewVen, perm storage.Permission) (wire.Ven, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()

	ven, ok := s.vens[id]
	if !ok || (perm.Restricted && ven.ClientID != perm.ClientID) {
		return wire.Ven{}, apperr.NotFound()
	}
	for otherID, existing := range s.vens {
		if otherID != id && existing.VenName == new.VenName {
			return wire.Ven{}, apperr.Conflict("VEN with name %q already exists", new.VenName)
		}
	}

	// clientID is immutable after enrollment.
	ven.VenName = new.VenName
	ven.Attributes = new.Attributes
	ven.Targets = new.Targets
	ven.ModificationDateTime = s.now().UTC()
	s.vens[id] = ven
	return ven, nil
}

func (v *venStore) Delete(_ context.Context, id wire.Identifier, perm storage.Permission) (wire.Ven, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()

	ven, ok := s.vens[id]
	if !ok || (perm.Restricted && ven.ClientID != perm.ClientID) {
		return wire.Ven{}, apperr.NotFound()
	}
	for _, res := range s.resources {
		if res.VenID == id {
			return wire.Ven{}, apperr.Conflict("VEN %q still has resources attached", id)
		}
	}
	delete(s.vens, id)
	return ven, nil
}

// ---- resources ----

type resourceStore Store

// resourceAccessible reports whether the caller may touch resources of the
// given VEN. Callers must hold at least the read lock.
func (s *Store) resourceAccessible(venID wire.Identifier, perm storage.Permission) bool {
	if !perm.Restricted {
		return true
	}
	ven, ok := s.vens[venID]
	return ok && ven.ClientID == perm.ClientID
}

func (r *resourceStore) Create(_ context.Context, new storage.NewResource, perm storage.Permission) (wire.Resource, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vens[new.VenID]; !ok {
		return wire.Resource{}, apperr.NotFound()
	}
	if !s.resourceAccessible(new.VenID, perm) {
		return wire.Resource{}, apperr.NotFound()
	}
	for _, existing := range s.resources {
		if existing.VenID == new.VenID && existing.ResourceName == new.ResourceName {
			return wire.Resource{}, apperr.Conflict("resource with name %q already exists under VEN %q",
				new.ResourceName, new.VenID)
		}
	}

	now := s.now().UTC()
	resource := wire.Resource{
		ID:                   newID(),
		CreatedDateTime:      now,
		ModificationDateTime: now,
		VenID:                new.VenID,
		ResourceName:         new.ResourceName,
		Attributes:           new.Attributes,
		Targets:              new.Targets,
	}
	s.resources[resource.ID] = resource
	return resource, nil
}

func (r *resourceStore) Retrieve(_ context.Context, id wire.Identifier, perm storage.Permission) (wire.Resource, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	resource, ok := s.resources[id]
	if !ok || !s.resourceAccessible(resource.VenID, perm) {
		return wire.Resource{}, apperr.NotFound()
	}
	return resource, nil
}

func (r *resourceStore) RetrieveAll(_ context.Context, filter storage.ResourceFilter, perm storage.Permission) ([]wire.Resource, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []wire.Resource
	for _, resource := range s.resources {
		if filter.VenID != "" && resource.VenID != filter.VenID {
			continue
		}
		if !s.resourceAccessible(resource.VenID, perm) {
			continue
		}
		if filter.ResourceName != "" && resource.ResourceName != filter.ResourceName {
			continue
		}
		if !resource.Targets.SupersetOf(filter.Targets) {
			continue
		}
		out = append(out, resource)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedDateTime.After(out[j].CreatedDateTime)
	})
	return paginate(out, filter.Pagination), nil
}

func (r *resourceStore) Update(_ context.Context, id wire.Identifier, new storage.NewResource, perm storage.Permission) (wire.Resource, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	resource, ok := s.resources[id]
	if !ok || !s.resourceAccessible(resource.VenID, perm) {
		return wire.Resource{}, apperr.NotFound()
	}
	for otherID, existing := range s.resources {
		if otherID != id && existing.VenID == resource.VenID && existing.ResourceName == new.ResourceName {
			return wire.Resource{}, apperr.Conflict("resource with name %q already exists under VEN %q",
				new.ResourceName, resource.VenID)
		}
	}

	// venID is immutable; the owning VEN comes from the URL on create only.
	resource.ResourceName = new.ResourceName
	resource.Attributes = new.Attributes
	resource.Targets = new.Targets
	resource.ModificationDateTime = s.now().UTC()
	s.resources[id] = resource
	return resource, nil
}

func (r *resourceStore) Delete(_ context.Context, id wire.Identifier, perm storage.Permission) (wire.Resource, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	resource, ok := s.resources[id]
	if !ok || !s.resourceAccessible(resource.VenID, perm) {
		return wire.Resource{}, apperr.NotFound()
	}
	delete(s.resources, id)
	return resource, nil
}

func (r *resourceStore) RetrieveByVen(_ context.Context, venID wire.Identifier) ([]wire.Resource, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []wire.Resource
	for _, resource := range s.resources {
		if resource.VenID == venID {
			out = append(out, resource)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedDateTime.After(out[j].CreatedDateTime)
	})
	return out, nil
}

// ---- subscriptions ----

type subscriptionStore Store

func (sub *subscriptionStore) Create(_ context.Context, new storage.NewSubscription, _ storage.Permission) (wire.Subscription, error) {
	s := (*Store)(sub)
	s.mu.Lock()
	defer s.mu.Unlock()

	if new.ProgramID != "" {
		if _, ok := s.programs[new.ProgramID]; !ok {
			return wire.Subscription{}, apperr.Validation("programID %q does not refer to an existing program", new.ProgramID)
		}
	}

	now := s.now().UTC()
	subscription := wire.Subscription{
		ID:                   newID(),
		CreatedDateTime:      now,
		ModificationDateTime: now,
		SubscriptionRequest:  new.SubscriptionRequest,
	}
	s.subscriptions[subscription.ID] = subscription
	s.subOwners[subscription.ID] = new.ClientID
	return subscription, nil
}

func (sub *subscriptionStore) Retrieve(_ context.Context, id wire.Identifier, perm storage.Permission) (wire.Subscription, error) {
	s := (*Store)(sub)
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscription, ok := s.subscriptions[id]
	if !ok || (perm.Restricted && s.subOwners[id] != perm.ClientID) {
		return wire.Subscription{}, apperr.NotFound()
	}
	return subscription, nil
}

func (sub *subscriptionStore) RetrieveAll(_ context.Context, filter storage.SubscriptionFilter, perm storage.Permission) ([]wire.Subscription, error) {
	s := (*Store)(sub)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []wire.Subscription
	for id, subscription := range s.subscriptions {
		if perm.Restricted && s.subOwners[id] != perm.ClientID {
			continue
		}
		if filter.ProgramID != "" && subscription.ProgramID != filter.ProgramID {
			continue
		}
		out = append(out, subscription)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedDateTime.After(out[j].CreatedDateTime)
	})
	return paginate(out, filter.Pagination), nil
}

func (sub *subscriptionStore) Update(_ context.Context, id wire.Identifier, new storage.NewSubscription, perm storage.Permission) (wire.Subscription, error) {
	s := (*Store)(sub)
	s.mu.Lock()
	defer s.mu.Unlock()

	subscription, ok := s.subscriptions[id]
	if !ok || (perm.Restricted && s.subOwners[id] != perm.ClientID) {
		return wire.Subscription{}, apperr.NotFound()
	}

	subscription.SubscriptionRequest = new.SubscriptionRequest
	subscription.ModificationDateTime = s.now().UTC()
	s.subscriptions[id] = subscription
	return subscription, nil
}

func (sub *subscriptionStore) Delete(_ context.Context, id wire.Identifier, perm storage.Permission) (wire.Subscription, error) {
	s := (*Store)(sub)
	s.mu.Lock()
	defer s.mu.Unlock()

	subscription, ok := s.subscriptions[id]
	if !ok || (perm.Restricted && s.subOwners[id] != perm.ClientID) {
		return wire.Subscription{}, apperr.NotFound()
	}
	delete(s.subscriptions, id)
	delete(s.subOwners, id)
	return subscription, nil
}

func (sub *subscriptionStore) RetrieveByOwner(_ context.Context) (map[wire.Identifier][]wire.Subscription, error) {
	s := (*Store)(sub)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[wire.Identifier][]wire.Subscription)
	for id, subscription := range s.subscriptions {
		owner := s.subOwners[id]
		out[owner] = append(out[owner], subscription)
	}
	return out, nil
}

// ---- privacy ----

type privacyStore Store

func (p *privacyStore) TargetsByClientID(_ context.Context, clientID wire.Identifier) (wire.Targets, bool, error) {
	s := (*Store)(p)
	s.mu.RLock()
	defer s.mu.RUnlock()

	targets, found := s.privacyTargets(clientID)
	return targets, found, nil
}

// ---- credentials ----

type credentialStore Store

func (c *credentialStore) CheckCredentials(_ context.Context, clientID, clientSecret string) (storage.Credentials, bool) {
	s := (*Store)(c)
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.credentials[clientID]
	if !ok || cred.secret != clientSecret {
		return storage.Credentials{}, false
	}
	return storage.Credentials{ClientID: wire.Identifier(clientID), Scopes: cred.scopes}, true
}
