package navgrid

import (
	"sync"

	"github.com/google/uuid"
)

// RefreshRequest is delivered to subscribers when a collaborator reports that
// world geometry changed.
type RefreshRequest struct {
	ID     uuid.UUID
	Reason string
}

// Subscription identifies one subscriber of a RefreshBus.
type Subscription struct {
	ID uuid.UUID
}

type refreshSubscriber struct {
	id uuid.UUID
	fn func(RefreshRequest)
}

// RefreshBus is a fire-and-forget notification channel for geometry changes.
// Raise delivers synchronously, in subscription order, so a subscriber that
// rebuilds has finished by the time Raise returns.
type RefreshBus struct {
	mu   sync.Mutex
	subs []refreshSubscriber
}

func NewRefreshBus() *RefreshBus {
	return &RefreshBus{}
}

var defaultBus = NewRefreshBus()

// DefaultBus returns the process-wide bus for hosts that want a single shared
// channel. Tests should construct their own with NewRefreshBus.
func DefaultBus() *RefreshBus {
	return defaultBus
}

func (b *RefreshBus) Subscribe(fn func(RefreshRequest)) Subscription {
	if b == nil || fn == nil {
		return Subscription{}
	}
	sub := refreshSubscriber{id: uuid.New(), fn: fn}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return Subscription{ID: sub.id}
}

// Unsubscribe removes s and reports whether it was subscribed.
func (b *RefreshBus) Unsubscribe(s Subscription) bool {
	if b == nil || s.ID == uuid.Nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == s.ID {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Raise notifies every subscriber and returns the request that was sent.
func (b *RefreshBus) Raise(reason string) RefreshRequest {
	req := RefreshRequest{ID: uuid.New(), Reason: reason}
	if b == nil {
		return req
	}
	b.mu.Lock()
	subs := append([]refreshSubscriber(nil), b.subs...)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.fn(req)
	}
	return req
}

func (b *RefreshBus) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
