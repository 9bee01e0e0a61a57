package locate

import (
	"time"

	"github.com/paulmach/orb/geo"
	"github.com/rotblauer/catspeak/types/fix"
)

// gate forwards fixes from in to out, at most one per interval, latest wins.
// The first fix goes through immediately. A fix that arrives too early is held
// and delivered when the interval elapses, unless a newer fix replaces it first.
// When eof is closed, the fixes left in in are gated as usual, the held fix is
// delivered at once, and gate returns.
// It returns nil when in is closed or quit is closed.
func gate(opts Options, in <-chan fix.Fix, eof <-chan struct{}, out chan<- fix.Fix, quit <-chan struct{}) error {
	var (
		pending   *fix.Fix
		last      *fix.Fix
		next      time.Time
		timer     = time.NewTimer(time.Hour)
		timerC    <-chan time.Time
		deliverTo = func(f fix.Fix) bool {
			select {
			case out <- f:
				last = &f
				next = time.Now().Add(opts.Interval)
				return true
			case <-quit:
				return false
			}
		}
	)
	timer.Stop()
	defer timer.Stop()

	tooClose := func(f fix.Fix) bool {
		if opts.DistanceInterval <= 0 || last == nil {
			return false
		}
		return geo.Distance(last.Point, f.Point) < opts.DistanceInterval
	}

	// accept delivers f now or holds it. It reports false if quit closed.
	accept := func(f fix.Fix) bool {
		if tooClose(f) {
			return true
		}
		if opts.Interval <= 0 || !time.Now().Before(next) {
			pending = nil
			return deliverTo(f)
		}
		pending = &f
		if timerC == nil {
			timer.Reset(time.Until(next))
			timerC = timer.C
		}
		return true
	}

	for {
		select {
		case f, ok := <-in:
			if !ok {
				return nil
			}
			if !accept(f) {
				return nil
			}
		case <-timerC:
			timerC = nil
			if pending != nil {
				f := *pending
				pending = nil
				if !deliverTo(f) {
					return nil
				}
			}
		case <-eof:
			for {
				select {
				case f, ok := <-in:
					if ok && accept(f) {
						continue
					}
					if !ok && pending != nil {
						deliverTo(*pending)
					}
					return nil
				default:
					if pending != nil {
						deliverTo(*pending)
					}
					return nil
				}
			}
		case <-quit:
			return nil
		}
	}
}
