package webd

import (
	"context"
	"sync"
	"testing"

	"github.com/rotblauer/catspeak/alert"
	"github.com/rotblauer/catspeak/locate"
	"github.com/rotblauer/catspeak/metrics"
	"github.com/rotblauer/catspeak/params"
	"github.com/rotblauer/catspeak/speech"
	"github.com/rotblauer/catspeak/state"
	"github.com/rotblauer/catspeak/tracker"
)

type recorder struct {
	mu   sync.Mutex
	said []string
}

func (r *recorder) Speak(text string, opts speech.Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.said = append(r.said, text)
}

type testDaemon struct {
	*WebDaemon
	kv      *state.Memory
	feed    *locate.Feed
	tracker *tracker.Tracker
	speaker *recorder
}

// newTestWebDaemon wires a daemon over an in-memory store and a live feed.
// The tracker is stopped on test cleanup.
func newTestWebDaemon(t *testing.T, config *params.WebDaemonConfig) *testDaemon {
	t.Helper()
	if config == nil {
		config = params.DefaultTestWebDaemonConfig()
	}
	kv := state.NewMemory()
	store := state.NewSettingsStore(kv, params.SettingsKey)
	feed := locate.NewFeed()
	rec := &recorder{}
	dispatcher := alert.NewDispatcher(rec, "")
	meters := metrics.NewMeters()
	tr := tracker.New(feed, dispatcher, meters)
	d, err := NewWebDaemon(config, Deps{
		Tracker:    tr,
		Store:      store,
		Feed:       feed,
		Dispatcher: dispatcher,
		Meters:     meters,
	}, store.Load(context.Background()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		tr.Stop()
		meters.Stop()
	})
	return &testDaemon{WebDaemon: d, kv: kv, feed: feed, tracker: tr, speaker: rec}
}
