package cmd

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"

	"github.com/rotblauer/catspeak/common"
	"github.com/rotblauer/catspeak/params"
	"github.com/rotblauer/catspeak/state"
	"github.com/rotblauer/catspeak/types/settings"
)

func TestAppConfig_Defaults(t *testing.T) {
	config, err := appConfig()
	if err != nil {
		t.Fatal(err)
	}
	store := params.DefaultStoreConfig()
	if config.Store.Key != store.Key || config.Store.Key == "" {
		t.Errorf("store key %q, want %q", config.Store.Key, store.Key)
	}
	if config.Store.Backend != store.Backend {
		t.Errorf("store backend %q", config.Store.Backend)
	}
	sp := params.DefaultSpeechConfig()
	if config.Speech.Backend != sp.Backend || config.Speech.Language != sp.Language {
		t.Errorf("speech %+v", config.Speech)
	}
	if !slices.Equal(config.Speech.Command, sp.Command) {
		t.Errorf("speech command %q, want %q", config.Speech.Command, sp.Command)
	}
	if config.Speech.Timeout != sp.Timeout {
		t.Errorf("speech timeout %v, want %v", config.Speech.Timeout, sp.Timeout)
	}
	if !config.Tracker.PermissionGranted {
		t.Error("permission not granted by default")
	}
}

func TestAppConfig_SettingsRoundTrip(t *testing.T) {
	defer common.SlogResetLevel(slog.LevelError + 1)()
	config, err := appConfig()
	if err != nil {
		t.Fatal(err)
	}
	config.Store.DataDir = t.TempDir()
	ctx := context.Background()
	next, err := settings.ParseInput("0.5", "40, 80", "{speed} km/h")
	if err != nil {
		t.Fatal(err)
	}

	kv, closer, err := state.Open(ctx, config.Store)
	if err != nil {
		t.Fatal(err)
	}
	if err := saveSettings(ctx, state.NewSettingsStore(kv, config.Store.Key), next); err != nil {
		t.Fatal(err)
	}
	closer.Close()

	kv, closer, err = state.Open(ctx, config.Store)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	if got := state.NewSettingsStore(kv, config.Store.Key).Load(ctx); !got.Equal(next) {
		t.Errorf("got %+v, want %+v", got, next)
	}
}

func TestSaveSettings_Failure(t *testing.T) {
	defer common.SlogResetLevel(slog.LevelError + 1)()
	kv := state.NewMemory()
	kv.SetErr = errors.New("disk full")
	next := settings.Defaults()
	next.VoiceThresholds = []int{40}
	err := saveSettings(context.Background(), state.NewSettingsStore(kv, params.SettingsKey), next)
	if !errors.Is(err, errSettingsNotSaved) {
		t.Fatalf("got %v", err)
	}
}
