package locate

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/rotblauer/catspeak/types/fix"
)

// Feed is an in-process location source. Fixes pushed with Send are
// delivered to every open subscription, each gated by its own Options.
type Feed struct {
	feed      event.FeedOf[fix.Fix]
	closed    chan struct{}
	closeOnce sync.Once
}

func NewFeed() *Feed {
	return &Feed{closed: make(chan struct{})}
}

// Send pushes a fix to all subscriptions and returns how many received it.
// It blocks until every subscription has taken the fix.
func (f *Feed) Send(fx fix.Fix) int {
	return f.feed.Send(fx)
}

// Close marks the end of the input. Each subscription delivers what it
// has already taken, including a fix held for its interval, and then ends.
// Fixes sent after Close are not delivered.
func (f *Feed) Close() {
	f.closeOnce.Do(func() { close(f.closed) })
}

func (f *Feed) RequestPermission(ctx context.Context) (bool, error) {
	return ctx.Err() == nil, ctx.Err()
}

func (f *Feed) Subscribe(opts Options, ch chan<- fix.Fix) (event.Subscription, error) {
	// Subscribe to the feed before returning, so no fix sent after Subscribe is missed.
	in := make(chan fix.Fix, 16)
	inner := f.feed.Subscribe(in)
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer inner.Unsubscribe()
		return gate(opts, in, f.closed, ch, quit)
	}), nil
}
