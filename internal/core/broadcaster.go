// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package core

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// subscriberBuffer is the channel capacity of each subscription.
const subscriberBuffer = 100

type subscription struct {
	pattern string
	matcher glob.Glob
	ch      chan Event
}

// Broadcaster distributes persisted events to subscribers (read-model
// projections and other listeners). Delivery is fire-and-forget: a slow
// subscriber misses events rather than blocking the writer.
type Broadcaster struct {
	mu   sync.RWMutex
	subs []*subscription
}

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe creates a channel receiving every event whose type matches pattern.
// Patterns are globs over dot-separated event types: "role.*", "user.deleted", "*".
func (b *Broadcaster) Subscribe(pattern string) (<-chan Event, error) {
	matcher, err := glob.Compile(pattern, '.')
	if err != nil {
		return nil, oops.Code("EVENT_BUS_INVALID_PATTERN").With("pattern", pattern).Wrap(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{
		pattern: pattern,
		matcher: matcher,
		ch:      make(chan Event, subscriberBuffer),
	}
	b.subs = append(b.subs, sub)
	return sub.ch, nil
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.ch == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(sub.ch)
			return
		}
	}
}

// Publish sends an event to all matching subscribers. It never blocks and
// never fails; the error return satisfies publisher interfaces whose other
// implementations do I/O.
func (b *Broadcaster) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !sub.matcher.Match(event.Type) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			slog.WarnContext(ctx, "event dropped: subscriber buffer full",
				"pattern", sub.pattern,
				"stream", event.Stream,
				"event_id", event.ID.String(),
				"event_type", event.Type,
			)
		}
	}
	return nil
}
