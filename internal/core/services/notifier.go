package services

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	portssvc "github.com/SscSPs/money_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_ledger/internal/platform/logging"
)

// ChangeBroadcaster fans committed change events out to in-process subscribers.
// A panicking subscriber is logged and skipped; the others still receive the event.
type ChangeBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[int]func(context.Context, portssvc.ChangeEvent)
	nextID      int
}

// NewChangeBroadcaster creates a broadcaster without subscribers.
func NewChangeBroadcaster() *ChangeBroadcaster {
	return &ChangeBroadcaster{subscribers: make(map[int]func(context.Context, portssvc.ChangeEvent))}
}

var _ portssvc.ChangeNotifier = (*ChangeBroadcaster)(nil)

// Subscribe registers fn and returns a function that removes it again.
func (b *ChangeBroadcaster) Subscribe(fn func(context.Context, portssvc.ChangeEvent)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
	}
}

// Publish delivers each event to every subscriber synchronously, in subscription order.
func (b *ChangeBroadcaster) Publish(ctx context.Context, events ...portssvc.ChangeEvent) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.subscribers))
	for id := range b.subscribers {
		ids = append(ids, id)
	}
	subs := make([]func(context.Context, portssvc.ChangeEvent), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		subs = append(subs, b.subscribers[id])
	}
	b.mu.RUnlock()

	for _, event := range events {
		for _, fn := range subs {
			deliver(ctx, fn, event)
		}
	}
}

func deliver(ctx context.Context, fn func(context.Context, portssvc.ChangeEvent), event portssvc.ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			logging.GetLoggerFromCtx(ctx).Error("Change subscriber panicked",
				slog.String("kind", string(event.Kind)),
				slog.Any("panic", r))
		}
	}()
	fn(ctx, event)
}
