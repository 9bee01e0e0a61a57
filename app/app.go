// Package app wires the store, speech, location and tracking components
// from params configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rotblauer/catspeak/alert"
	"github.com/rotblauer/catspeak/locate"
	"github.com/rotblauer/catspeak/metrics"
	"github.com/rotblauer/catspeak/metrics/influxdb"
	"github.com/rotblauer/catspeak/params"
	"github.com/rotblauer/catspeak/speech"
	"github.com/rotblauer/catspeak/state"
	"github.com/rotblauer/catspeak/tracker"
	"github.com/rotblauer/catspeak/types/settings"
)

type Config struct {
	Store   *params.StoreConfig
	Speech  *params.SpeechConfig
	Tracker *params.TrackerConfig
}

func DefaultConfig() *Config {
	return &Config{
		Store:   params.DefaultStoreConfig(),
		Speech:  params.DefaultSpeechConfig(),
		Tracker: params.DefaultTrackerConfig(),
	}
}

type App struct {
	Config *Config

	Store      *state.SettingsStore
	Feed       *locate.Feed
	Replay     *locate.Replay
	Dispatcher *alert.Dispatcher
	Tracker    *tracker.Tracker
	Meters     *metrics.Meters

	kv     io.Closer
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewSpeaker builds the speaker named by config.Backend.
func NewSpeaker(config *params.SpeechConfig) (speech.Speaker, error) {
	switch config.Backend {
	case params.SpeechBackendExec, "":
		e := speech.NewExec(config.Command)
		if config.Timeout > 0 {
			e.Timeout = config.Timeout
		}
		return speech.Multi{e, speech.Log{Logger: slog.With("d", "speech")}}, nil
	case params.SpeechBackendLog:
		return speech.Log{Logger: slog.With("d", "speech")}, nil
	case params.SpeechBackendNone:
		return speech.Nop, nil
	}
	return nil, fmt.Errorf("unknown speech backend %q", config.Backend)
}

// New opens the settings store and builds the components.
// Fixes come from a recording when config.Tracker.ReplayPath is set,
// and from the in-process feed otherwise.
func New(ctx context.Context, config *Config) (*App, error) {
	if config == nil {
		config = DefaultConfig()
	}
	a := &App{
		Config: config,
		Feed:   locate.NewFeed(),
		Meters: metrics.NewMeters(),
		logger: slog.With("d", "app"),
	}

	kv, closer, err := state.Open(ctx, config.Store)
	if err != nil {
		return nil, err
	}
	a.kv = closer
	a.Store = state.NewSettingsStore(kv, config.Store.Key)

	speaker, err := NewSpeaker(config.Speech)
	if err != nil {
		closer.Close()
		return nil, err
	}
	a.Dispatcher = alert.NewDispatcher(speaker, config.Speech.Language)

	var source locate.Locator = a.Feed
	if config.Tracker.ReplayPath != "" {
		f, err := os.Open(config.Tracker.ReplayPath)
		if err != nil {
			closer.Close()
			return nil, err
		}
		a.Replay, err = locate.ReadReplay(f)
		f.Close()
		if err != nil {
			closer.Close()
			return nil, fmt.Errorf("read replay %s: %w", config.Tracker.ReplayPath, err)
		}
		a.Replay.Pace = config.Tracker.ReplayPace
		source = a.Replay
		a.logger.Info("Replaying", "path", config.Tracker.ReplayPath, "fixes", a.Replay.Remaining())
	}
	a.Tracker = tracker.New(locate.WithPermission(source, config.Tracker.PermissionGranted), a.Dispatcher, a.Meters)
	return a, nil
}

// Start loads the settings, starts tracking, and runs the background
// meter logger and exporter. It returns the settings in effect.
// A denied permission is not an error here; the tracker shows it.
func (a *App) Start(ctx context.Context) (settings.AppSettings, error) {
	s := a.Store.Load(ctx)
	runCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.Meters.Run(runCtx, params.MetricsLogInterval)
	if influxdb.Enabled() {
		go influxdb.Run(runCtx, a.Dispatcher)
	}
	if err := a.Tracker.Start(ctx, s); err != nil && !errors.Is(err, locate.ErrPermissionDenied) {
		return s, err
	}
	return s, nil
}

func (a *App) Close() error {
	a.Tracker.Stop()
	if a.cancel != nil {
		a.cancel()
	}
	a.Meters.Stop()
	return a.kv.Close()
}
