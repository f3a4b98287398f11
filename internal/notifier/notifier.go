// Package notifier implements the subscription fan-out: a registry of
// connected WebSocket clients, each with its own buffered outbound channel,
// fed by object create/update/delete notifications.
package notifier

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

// DefaultBuffer is the per-client channel capacity. When a client's buffer
// is full the newest notification is dropped and counted, so one slow
// consumer cannot stall the write path.
const DefaultBuffer = 256

// Notifier routes notifications to connected subscribers.
type Notifier struct {
	subscriptions storage.SubscriptionRepository
	buffer        int

	mu      sync.Mutex
	clients map[wire.Identifier]chan wire.Notification

	dropped atomic.Uint64
}

// New creates a notifier reading subscriptions from the given repository.
func New(subscriptions storage.SubscriptionRepository) *Notifier {
	return &Notifier{
		subscriptions: subscriptions,
		buffer:        DefaultBuffer,
		clients:       make(map[wire.Identifier]chan wire.Notification),
	}
}

// Register claims the outbound channel of clientID. At most one connection
// per client is allowed; a second registration fails with Conflict until
// the first is unregistered.
func (n *Notifier) Register(clientID wire.Identifier) (<-chan wire.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.clients[clientID]; ok {
		return nil, apperr.Conflict("client %q already has an open notification channel", clientID)
	}
	ch := make(chan wire.Notification, n.buffer)
	n.clients[clientID] = ch
	log.Info().Str("client_id", string(clientID)).Msg("notification channel registered")
	return ch, nil
}

// Unregister removes the client's channel and closes it, ending its sender
// loop.
func (n *Notifier) Unregister(clientID wire.Identifier) {
	n.mu.Lock()
	ch, ok := n.clients[clientID]
	delete(n.clients, clientID)
	n.mu.Unlock()

	if ok {
		close(ch)
		log.Info().Str("client_id", string(clientID)).Msg("notification channel unregistered")
	}
}

// Connected reports whether clientID currently holds a channel.
func (n *Notifier) Connected(clientID wire.Identifier) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.clients[clientID]
	return ok
}

// Dropped returns the number of notifications discarded due to full client
// buffers.
func (n *Notifier) Dropped() uint64 { return n.dropped.Load() }

// Close tears down every registered channel. Used on shutdown.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for clientID, ch := range n.clients {
		close(ch)
		delete(n.clients, clientID)
	}
}

// Publish fans a notification out to every connected client whose
// subscription filters admit it. The write behind the notification has
// already committed; failures here only log.
func (n *Notifier) Publish(ctx context.Context, notification wire.Notification) {
	byOwner, err := n.subscriptions.RetrieveByOwner(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not load subscriptions for fan-out")
		return
	}

	programID := notificationProgramID(notification)

	// Copy the matching channels out under the lock, then send without it,
	// so a blocked send can never hold up registration.
	n.mu.Lock()
	var targets []chan wire.Notification
	for owner, subs := range byOwner {
		ch, connected := n.clients[owner]
		if !connected {
			continue
		}
		for _, sub := range subs {
			if sub.WantsNotification(notification.ObjectType, notification.Operation, programID) {
				targets = append(targets, ch)
				break
			}
		}
	}
	n.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- notification:
		default:
			n.dropped.Add(1)
			log.Warn().
				Str("object_type", string(notification.ObjectType)).
				Uint64("dropped_total", n.dropped.Load()).
				Msg("subscriber buffer full, notification dropped")
		}
	}
}

// notificationProgramID extracts the program scope of a notification for
// subscription matching.
func notificationProgramID(n wire.Notification) wire.Identifier {
	switch o := n.Object.(type) {
	case wire.Program:
		return o.ID
	case wire.Event:
		return o.ProgramID
	case wire.Report:
		return o.ProgramID
	case wire.Subscription:
		return o.ProgramID
	}
	return ""
}
