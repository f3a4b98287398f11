package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

func TestProgramPaginationStableOrder(t *testing.T) {
	store := New()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i := 0; i < 7; i++ {
		_, err := store.Programs().Create(ctx,
			wire.ProgramRequest{ProgramName: fmt.Sprintf("p-%d", i)}, storage.Unrestricted)
		require.NoError(t, err)
	}

	var collected []string
	for skip := int64(0); ; skip += 3 {
		page, err := store.Programs().RetrieveAll(ctx, storage.ProgramFilter{
			Pagination: storage.Pagination{Skip: skip, Limit: 3},
		}, storage.Unrestricted)
		require.NoError(t, err)
		for _, p := range page {
			collected = append(collected, p.ProgramName)
		}
		if len(page) < 3 {
			break
		}
	}

	// created_date_time DESC: newest first, no duplicates across pages
	require.Len(t, collected, 7)
	assert.Equal(t, []string{"p-6", "p-5", "p-4", "p-3", "p-2", "p-1", "p-0"}, collected)
}

func TestPrivacyTargetsUnion(t *testing.T) {
	store := New()
	ctx := context.Background()

	ven, err := store.Vens().Create(ctx, storage.NewVen{
		ClientID: "ven-1-client-id",
		VenName:  "ven-1",
		Targets:  wire.Targets{"GROUP:a"},
	}, storage.Unrestricted)
	require.NoError(t, err)

	_, err = store.Resources().Create(ctx, storage.NewResource{
		VenID:        ven.ID,
		ResourceName: "res-1",
		Targets:      wire.Targets{"GROUP:b", "GROUP:a"},
	}, storage.Unrestricted)
	require.NoError(t, err)

	targets, found, err := store.VenPrivacy().TargetsByClientID(ctx, "ven-1-client-id")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, wire.Targets{"GROUP:a", "GROUP:b"}, targets)

	_, found, err = store.VenPrivacy().TargetsByClientID(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestVenClientIDImmutable(t *testing.T) {
	store := New()
	ctx := context.Background()

	ven, err := store.Vens().Create(ctx, storage.NewVen{
		ClientID: "client-a", VenName: "ven-a",
	}, storage.Unrestricted)
	require.NoError(t, err)

	updated, err := store.Vens().Update(ctx, ven.ID, storage.NewVen{
		ClientID: "client-b", VenName: "ven-a-renamed",
	}, storage.Unrestricted)
	require.NoError(t, err)
	assert.Equal(t, wire.Identifier("client-a"), updated.ClientID)
	assert.Equal(t, "ven-a-renamed", updated.VenName)
}

func TestResourceVenIDImmutable(t *testing.T) {
	store := New()
	ctx := context.Background()

	venA, err := store.Vens().Create(ctx, storage.NewVen{ClientID: "a", VenName: "ven-a"}, storage.Unrestricted)
	require.NoError(t, err)
	venB, err := store.Vens().Create(ctx, storage.NewVen{ClientID: "b", VenName: "ven-b"}, storage.Unrestricted)
	require.NoError(t, err)

	resource, err := store.Resources().Create(ctx, storage.NewResource{
		VenID: venA.ID, ResourceName: "meter",
	}, storage.Unrestricted)
	require.NoError(t, err)

	updated, err := store.Resources().Update(ctx, resource.ID, storage.NewResource{
		VenID: venB.ID, ResourceName: "meter-2",
	}, storage.Unrestricted)
	require.NoError(t, err)
	assert.Equal(t, venA.ID, updated.VenID)
}

func TestRetrieveByVen(t *testing.T) {
	store := New()
	ctx := context.Background()

	ven, err := store.Vens().Create(ctx, storage.NewVen{ClientID: "a", VenName: "ven-a"}, storage.Unrestricted)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := store.Resources().Create(ctx, storage.NewResource{
			VenID: ven.ID, ResourceName: fmt.Sprintf("res-%d", i),
		}, storage.Unrestricted)
		require.NoError(t, err)
	}

	resources, err := store.Resources().RetrieveByVen(ctx, ven.ID)
	require.NoError(t, err)
	assert.Len(t, resources, 3)
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.Programs().Delete(ctx, "missing", storage.Unrestricted)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = store.Events().Delete(ctx, "missing", storage.Unrestricted)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = store.Subscriptions().Delete(ctx, "missing", storage.ForClient("x"))
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
