package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/internal/storage/memory"
	"github.com/openleadr/openleadr-go/wire"
)

func subscribedStore(t *testing.T, owner string, objects []wire.ObjectType, operations []wire.Operation) *memory.Store {
	t.Helper()
	store := memory.New()
	_, err := store.Subscriptions().Create(context.Background(), storage.NewSubscription{
		SubscriptionRequest: wire.SubscriptionRequest{
			ClientName: owner,
			ObjectOperations: []wire.SubscriptionOperation{{
				Objects:    objects,
				Operations: operations,
				Mechanism:  wire.MechanismWebsocket,
			}},
		},
		ClientID: wire.Identifier(owner),
	}, storage.Unrestricted)
	require.NoError(t, err)
	return store
}

func programNotification(t *testing.T, name string) wire.Notification {
	t.Helper()
	n, err := wire.NewNotification(wire.OperationPost, wire.Program{
		ID:             "prog-1",
		ProgramRequest: wire.ProgramRequest{ProgramName: name},
	})
	require.NoError(t, err)
	return n
}

func TestRegisterConflict(t *testing.T) {
	n := New(memory.New().Subscriptions())

	_, err := n.Register("client-a")
	require.NoError(t, err)

	_, err = n.Register("client-a")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// After unregistering, the client may reconnect.
	n.Unregister("client-a")
	_, err = n.Register("client-a")
	require.NoError(t, err)
}

func TestPublishDeliversToMatchingSubscriber(t *testing.T) {
	store := subscribedStore(t, "client-a",
		[]wire.ObjectType{wire.ObjectProgram}, []wire.Operation{wire.OperationPost})
	n := New(store.Subscriptions())

	ch, err := n.Register("client-a")
	require.NoError(t, err)

	n.Publish(context.Background(), programNotification(t, "p1"))

	select {
	case got := <-ch:
		assert.Equal(t, wire.ObjectProgram, got.ObjectType)
		assert.Equal(t, wire.OperationPost, got.Operation)
	default:
		t.Fatal("expected a notification in the channel")
	}
}

func TestPublishSkipsNonMatchingOperation(t *testing.T) {
	store := subscribedStore(t, "client-a",
		[]wire.ObjectType{wire.ObjectProgram}, []wire.Operation{wire.OperationDelete})
	n := New(store.Subscriptions())

	ch, err := n.Register("client-a")
	require.NoError(t, err)

	n.Publish(context.Background(), programNotification(t, "p1"))
	assert.Empty(t, ch)
}

func TestPublishSkipsDisconnectedOwner(t *testing.T) {
	store := subscribedStore(t, "client-a",
		[]wire.ObjectType{wire.ObjectProgram}, []wire.Operation{wire.OperationPost})
	n := New(store.Subscriptions())

	// Nobody registered; must not panic or block.
	n.Publish(context.Background(), programNotification(t, "p1"))
	assert.Zero(t, n.Dropped())
}

func TestPublishProgramScope(t *testing.T) {
	store := memory.New()
	program, err := store.Programs().Create(context.Background(),
		wire.ProgramRequest{ProgramName: "prog-wanted"}, storage.Unrestricted)
	require.NoError(t, err)
	_, err = store.Subscriptions().Create(context.Background(), storage.NewSubscription{
		SubscriptionRequest: wire.SubscriptionRequest{
			ClientName: "client-a",
			ProgramID:  program.ID,
			ObjectOperations: []wire.SubscriptionOperation{{
				Objects:    []wire.ObjectType{wire.ObjectEvent},
				Operations: []wire.Operation{wire.OperationPost},
			}},
		},
		ClientID: "client-a",
	}, storage.Unrestricted)
	require.NoError(t, err)

	n := New(store.Subscriptions())
	ch, err := n.Register("client-a")
	require.NoError(t, err)

	other, err := wire.NewNotification(wire.OperationPost, wire.Event{
		ID:           "ev-1",
		EventRequest: wire.EventRequest{ProgramID: "prog-other"},
	})
	require.NoError(t, err)
	n.Publish(context.Background(), other)
	assert.Empty(t, ch, "event of another program must be filtered")

	wanted, err := wire.NewNotification(wire.OperationPost, wire.Event{
		ID:           "ev-2",
		EventRequest: wire.EventRequest{ProgramID: program.ID},
	})
	require.NoError(t, err)
	n.Publish(context.Background(), wanted)
	assert.Len(t, ch, 1)
}

// Backpressure: when a subscriber's buffer is full the newest notification
// is dropped and counted instead of blocking the publisher.
func TestPublishDropNewestOnOverflow(t *testing.T) {
	store := subscribedStore(t, "client-a",
		[]wire.ObjectType{wire.ObjectProgram}, []wire.Operation{wire.OperationPost})
	n := New(store.Subscriptions())

	ch, err := n.Register("client-a")
	require.NoError(t, err)

	for i := 0; i < DefaultBuffer+10; i++ {
		n.Publish(context.Background(), programNotification(t, "p"))
	}

	assert.Len(t, ch, DefaultBuffer)
	assert.Equal(t, uint64(10), n.Dropped())
}
