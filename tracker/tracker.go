// Package tracker runs the sampling loop: it owns the one location
// subscription, turns fixes into speeds, and dispatches threshold crossings.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/rotblauer/catspeak/alert"
	"github.com/rotblauer/catspeak/geo/crossing"
	"github.com/rotblauer/catspeak/locate"
	"github.com/rotblauer/catspeak/metrics"
	"github.com/rotblauer/catspeak/types/fix"
	"github.com/rotblauer/catspeak/types/settings"
)

var ErrRunning = errors.New("tracker already started")

// Session is the state of one subscription. It is discarded on restart.
type Session struct {
	Settings  settings.AppSettings
	LastSpeed fix.Kmh

	sub     event.Subscription
	fixes   chan fix.Fix
	done    chan struct{}
	summary *summary
}

type Tracker struct {
	mu sync.Mutex

	locator    locate.Locator
	dispatcher *alert.Dispatcher
	meters     *metrics.Meters

	session *Session
	state   atomic.Int32
	speed   atomic.Int64
	errMsg  atomic.Pointer[string]

	speedFeed event.FeedOf[fix.Reading]
	logger    *slog.Logger
}

// New returns an idle tracker. meters may be nil.
func New(locator locate.Locator, dispatcher *alert.Dispatcher, meters *metrics.Meters) *Tracker {
	t := &Tracker{
		locator:    locator,
		dispatcher: dispatcher,
		meters:     meters,
		logger:     slog.With("d", "tracker"),
	}
	t.setErr("")
	return t
}

func (t *Tracker) State() State {
	return State(t.state.Load())
}

// Speed is the most recently published speed.
func (t *Tracker) Speed() fix.Kmh {
	return fix.Kmh(t.speed.Load())
}

// Err is the message to display, or empty.
func (t *Tracker) Err() string {
	return *t.errMsg.Load()
}

func (t *Tracker) setErr(msg string) {
	t.errMsg.Store(&msg)
}

func (t *Tracker) setState(s State) {
	old := State(t.state.Swap(int32(s)))
	if old != s {
		t.logger.Debug("State", "from", old, "to", s)
	}
}

// Done is closed when the current session's processing loop exits.
// With no session it is already closed.
func (t *Tracker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		c := make(chan struct{})
		close(c)
		return c
	}
	return t.session.done
}

// SubscribeSpeed delivers every published reading to ch.
// Publishing blocks until ch receives, so subscribers must drain promptly.
func (t *Tracker) SubscribeSpeed(ch chan<- fix.Reading) event.Subscription {
	return t.speedFeed.Subscribe(ch)
}

// Start asks for location permission and, if granted, subscribes with
// the sample interval from s. It returns ErrRunning while a session is live.
// A session whose source has ended is cleared first.
// After a denial Start does not ask again; only Restart does.
func (t *Tracker) Start(ctx context.Context, s settings.AppSettings) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session != nil {
		select {
		case <-t.session.done:
			t.stop()
		default:
			return ErrRunning
		}
	}
	if t.State() == PermissionDenied {
		return locate.ErrPermissionDenied
	}
	return t.start(ctx, s)
}

// Restart tears down any running session, waits for it, and starts again.
func (t *Tracker) Restart(ctx context.Context, s settings.AppSettings) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stop()
	return t.start(ctx, s)
}

// Stop tears down the running session, if any.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stop()
	t.setState(Idle)
}

func (t *Tracker) start(ctx context.Context, s settings.AppSettings) error {
	s = s.Clone()
	t.setErr("")
	t.setState(PermissionRequested)

	granted, err := t.locator.RequestPermission(ctx)
	if err != nil {
		t.setState(Idle)
		return fmt.Errorf("request permission: %w", err)
	}
	if !granted {
		t.deny()
		return locate.ErrPermissionDenied
	}

	sess := &Session{
		Settings: s,
		fixes:    make(chan fix.Fix),
		done:     make(chan struct{}),
		summary:  newSummary(),
	}
	sub, err := t.locator.Subscribe(locate.Options{
		Interval:         s.Interval(),
		Accuracy:         locate.AccuracyBestForNavigation,
		DistanceInterval: 0,
	}, sess.fixes)
	if errors.Is(err, locate.ErrPermissionDenied) {
		t.deny()
		return err
	}
	if err != nil {
		t.setErr(err.Error())
		t.setState(Idle)
		return fmt.Errorf("subscribe: %w", err)
	}
	sess.sub = sub
	t.session = sess
	t.setState(Tracking)
	t.logger.Info("Tracking", "interval", s.Interval(), "thresholds", s.VoiceThresholds)
	go t.loop(sess)
	return nil
}

func (t *Tracker) deny() {
	t.setErr(DeniedMessage)
	t.setState(PermissionDenied)
	t.logger.Warn("Location permission denied")
}

// stop unsubscribes and joins the session loop. The caller holds mu.
func (t *Tracker) stop() {
	sess := t.session
	if sess == nil {
		return
	}
	t.session = nil
	sess.sub.Unsubscribe()
	<-sess.done
}

func (t *Tracker) loop(sess *Session) {
	defer close(sess.done)
	defer sess.summary.log(t.logger)
	for {
		select {
		case fx := <-sess.fixes:
			t.process(sess, sess.Settings, fx)
		case err := <-sess.sub.Err():
			if err != nil {
				t.logger.Warn("Location subscription failed", "error", err)
				t.setErr(err.Error())
			}
			// A source that ends on its own leaves the tracker idle.
			// Stop and Restart set their own state after joining.
			t.state.CompareAndSwap(int32(Tracking), int32(Idle))
			return
		}
	}
}

// process handles one fix completely before the next is read.
func (t *Tracker) process(sess *Session, cfg settings.AppSettings, fx fix.Fix) {
	cur := fx.Kmh()
	crossed := crossing.Crossed(sess.LastSpeed, cur, cfg.VoiceThresholds)
	if t.dispatcher != nil {
		t.dispatcher.DispatchAll(crossed, cfg.VoiceTemplate, cur)
	}
	sess.LastSpeed = cur

	at := fx.Time
	if at.IsZero() {
		at = time.Now()
	}
	reading := fix.NewReading(cur, at)
	sess.summary.add(reading)
	if t.meters != nil {
		t.meters.MarkFix(reading)
		t.meters.MarkCrossings(len(crossed))
		for range crossed {
			t.meters.MarkUtterance()
		}
	}
	t.speed.Store(int64(cur))
	t.speedFeed.Send(reading)
	t.logger.Debug("Fix", "speed", cur, "band", reading.Band, "crossed", crossed)
}
