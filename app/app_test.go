package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotblauer/catspeak/common"
	"github.com/rotblauer/catspeak/params"
	"github.com/rotblauer/catspeak/speech"
	"github.com/rotblauer/catspeak/tracker"
)

func testConfig(t *testing.T) *Config {
	config := DefaultConfig()
	config.Store.DataDir = t.TempDir()
	config.Speech.Backend = params.SpeechBackendNone
	return config
}

func TestNewSpeaker(t *testing.T) {
	for _, backend := range []string{"", params.SpeechBackendExec, params.SpeechBackendLog, params.SpeechBackendNone} {
		config := params.DefaultSpeechConfig()
		config.Backend = backend
		if _, err := NewSpeaker(config); err != nil {
			t.Errorf("%q: %v", backend, err)
		}
	}
	config := params.DefaultSpeechConfig()
	config.Backend = "parrot"
	if _, err := NewSpeaker(config); err == nil {
		t.Error("expected error")
	}
	config.Backend = params.SpeechBackendExec
	config.Timeout = time.Second
	s, _ := NewSpeaker(config)
	if m, ok := s.(speech.Multi); !ok || m[0].(*speech.Exec).Timeout != time.Second {
		t.Errorf("got %#v", s)
	}
}

func TestApp_Feed(t *testing.T) {
	defer common.SlogResetLevel(slog.LevelError + 1)()
	ctx := context.Background()
	a, err := New(ctx, testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	s, err := a.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.SampleRateMs != 300000 {
		t.Errorf("settings %+v", s)
	}
	if a.Tracker.State() != tracker.Tracking {
		t.Errorf("state %v", a.Tracker.State())
	}
}

func TestApp_Denied(t *testing.T) {
	defer common.SlogResetLevel(slog.LevelError + 1)()
	ctx := context.Background()
	config := testConfig(t)
	config.Tracker.PermissionGranted = false
	a, err := New(ctx, config)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if _, err := a.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if a.Tracker.State() != tracker.PermissionDenied || a.Tracker.Err() != tracker.DeniedMessage {
		t.Errorf("state %v err %q", a.Tracker.State(), a.Tracker.Err())
	}
}

func TestApp_Replay(t *testing.T) {
	defer common.SlogResetLevel(slog.LevelError + 1)()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ride.ndjson")
	recording := `{"coords":{"latitude":21.02,"longitude":105.85,"speed":0},"timestamp":1731952467000}
{"coords":{"latitude":21.03,"longitude":105.85,"speed":16},"timestamp":1731952468000}
{"coords":{"latitude":21.04,"longitude":105.85,"speed":34},"timestamp":1731952469000}
`
	if err := os.WriteFile(path, []byte(recording), 0600); err != nil {
		t.Fatal(err)
	}
	config := testConfig(t)
	config.Tracker.ReplayPath = path
	config.Tracker.ReplayPace = time.Millisecond
	a, err := New(ctx, config)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if a.Replay.Remaining() != 3 {
		t.Fatalf("remaining %d", a.Replay.Remaining())
	}
	if _, err := a.Start(ctx); err != nil {
		t.Fatal(err)
	}
	select {
	case <-a.Tracker.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("replay did not finish")
	}
	// 34 m/s is 122 km/h.
	if a.Tracker.Speed() != 122 {
		t.Errorf("speed %d", a.Tracker.Speed())
	}
	if s := a.Meters.Snapshot(); s.Crossings != 4 {
		t.Errorf("crossings %d", s.Crossings)
	}
}

func TestApp_MissingReplay(t *testing.T) {
	config := testConfig(t)
	config.Tracker.ReplayPath = filepath.Join(t.TempDir(), "nope.ndjson")
	if _, err := New(context.Background(), config); err == nil {
		t.Fatal("expected error")
	}
}
