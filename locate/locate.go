// Package locate is the boundary to location sources.
//
// A Locator grants (or denies) permission and opens subscriptions that
// deliver fixes on a channel. Delivery on a subscription is sequential:
// one fix at a time, in arrival order. Unsubscribe is idempotent, and
// once it returns no further fixes are sent on the channel.
package locate

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/rotblauer/catspeak/types/fix"
)

// Accuracy is a hint to the source about how hard to try.
type Accuracy int

const (
	AccuracyLowest Accuracy = iota + 1
	AccuracyLow
	AccuracyBalanced
	AccuracyHigh
	AccuracyHighest
	AccuracyBestForNavigation
)

func (a Accuracy) String() string {
	switch a {
	case AccuracyLowest:
		return "lowest"
	case AccuracyLow:
		return "low"
	case AccuracyBalanced:
		return "balanced"
	case AccuracyHigh:
		return "high"
	case AccuracyHighest:
		return "highest"
	case AccuracyBestForNavigation:
		return "best_for_navigation"
	}
	return "unknown"
}

// Options configure a subscription.
type Options struct {
	// Interval is the minimum time between delivered fixes.
	// Zero delivers every fix.
	Interval time.Duration

	Accuracy Accuracy

	// DistanceInterval is the minimum distance, in meters, between delivered fixes.
	// Zero gates by time only.
	DistanceInterval float64
}

type Locator interface {
	// RequestPermission may block, e.g. on a user prompt, until ctx is done.
	RequestPermission(ctx context.Context) (granted bool, err error)

	Subscribe(opts Options, ch chan<- fix.Fix) (event.Subscription, error)
}

var ErrPermissionDenied = errors.New("location permission denied")

// WithPermission wraps a locator with a fixed permission answer.
func WithPermission(l Locator, granted bool) Locator {
	return &policy{Locator: l, granted: granted}
}

type policy struct {
	Locator
	granted bool
}

func (p *policy) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return p.granted, nil
}

func (p *policy) Subscribe(opts Options, ch chan<- fix.Fix) (event.Subscription, error) {
	if !p.granted {
		return nil, ErrPermissionDenied
	}
	return p.Locator.Subscribe(opts, ch)
}
