package state

import (
	"context"
	"fmt"
	"io"

	"github.com/rotblauer/catspeak/params"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the KV named by config. The returned closer releases it.
func Open(ctx context.Context, config *params.StoreConfig) (KV, io.Closer, error) {
	switch config.Backend {
	case params.StoreBackendBolt, "":
		b, err := OpenBolt(config.BoltPath(), params.SettingsBucket)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	case params.StoreBackendRedis:
		r := NewRedis(config.Redis.Address, config.Redis.Password, config.Redis.DB)
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", config.Redis.Address, err)
		}
		return r, r, nil
	case params.StoreBackendMemory:
		return NewMemory(), nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", config.Backend)
}
