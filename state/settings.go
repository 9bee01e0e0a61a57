package state

import (
	"context"
	"log/slog"

	"github.com/rotblauer/catspeak/types/settings"
)

// SettingsStore loads and saves the settings record under a single key.
// It does not validate; callers validate edits before saving.
type SettingsStore struct {
	KV     KV
	Key    string
	logger *slog.Logger
}

func NewSettingsStore(kv KV, key string) *SettingsStore {
	return &SettingsStore{
		KV:     kv,
		Key:    key,
		logger: slog.With("d", "settings"),
	}
}

// Load returns the stored settings merged over the defaults.
// A missing record, a read error, or an unparseable record all yield the defaults.
func (s *SettingsStore) Load(ctx context.Context) settings.AppSettings {
	raw, ok, err := s.KV.Get(ctx, s.Key)
	if err != nil {
		s.logger.Debug("Read settings failed, using defaults", "error", err)
		return settings.Defaults()
	}
	if !ok {
		s.logger.Debug("No stored settings, using defaults")
		return settings.Defaults()
	}
	out, err := settings.Decode([]byte(raw))
	if err != nil {
		s.logger.Debug("Malformed settings, using defaults", "error", err, "raw", raw)
	}
	return out
}

// Save writes the full record. Failures are logged, not returned.
func (s *SettingsStore) Save(ctx context.Context, v settings.AppSettings) {
	b, err := v.Encode()
	if err != nil {
		s.logger.Error("Encode settings", "error", err)
		return
	}
	if err := s.KV.Set(ctx, s.Key, string(b)); err != nil {
		s.logger.Error("Save settings", "error", err)
		return
	}
	s.logger.Debug("Saved settings", "settings", string(b))
}
