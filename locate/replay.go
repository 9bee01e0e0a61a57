package locate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/rotblauer/catspeak/types"
	"github.com/rotblauer/catspeak/types/fix"
)

// Replay plays back recorded fixes, one per interval.
// The playhead is shared: a new subscription continues where the last one stopped.
// A subscription ends, with its error channel closed, once the recording is exhausted.
type Replay struct {
	// Pace overrides the subscription interval when positive.
	Pace time.Duration

	mu     sync.Mutex
	fixes  []fix.Fix
	cursor int
}

func NewReplay(fixes []fix.Fix) *Replay {
	return &Replay{fixes: fixes}
}

// ReadReplay reads a recording of fixes: NDJSON, a JSON array,
// or a FeatureCollection, in any of the shapes types.DecodeFixes accepts.
func ReadReplay(r io.Reader) (*Replay, error) {
	var fixes []fix.Fix
	err := types.ScanJSONMessages(r, func(message json.RawMessage) error {
		return types.DecodingJSONFixObject(message, func(f fix.Fix) error {
			fixes = append(fixes, f)
			return nil
		})
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return NewReplay(fixes), nil
}

// Remaining is the number of fixes not yet played.
func (r *Replay) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fixes) - r.cursor
}

func (r *Replay) RequestPermission(ctx context.Context) (bool, error) {
	return ctx.Err() == nil, ctx.Err()
}

func (r *Replay) next() (fix.Fix, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cursor >= len(r.fixes) {
		return fix.Fix{}, false
	}
	f := r.fixes[r.cursor]
	r.cursor++
	return f, true
}

func (r *Replay) Subscribe(opts Options, ch chan<- fix.Fix) (event.Subscription, error) {
	interval := opts.Interval
	if r.Pace > 0 {
		interval = r.Pace
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		var tick <-chan time.Time
		if interval > 0 {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			tick = ticker.C
		}
		for {
			f, ok := r.next()
			if !ok {
				return nil
			}
			select {
			case ch <- f:
			case <-quit:
				r.unread()
				return nil
			}
			if tick == nil {
				continue
			}
			select {
			case <-tick:
			case <-quit:
				return nil
			}
		}
	}), nil
}

// unread puts back a fix that was taken but never delivered.
func (r *Replay) unread() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cursor > 0 {
		r.cursor--
	}
}
