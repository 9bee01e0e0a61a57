package params

import "path/filepath"

const (
	StoreBackendBolt   = "bolt"
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

type StoreConfig struct {
	// Backend is one of "bolt", "redis" or "memory".
	Backend string
	DataDir string
	Key     string
	Redis   RedisConfig
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Backend: StoreBackendBolt,
		DataDir: DatadirRoot,
		Key:     SettingsKey,
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
	}
}

func (c *StoreConfig) BoltPath() string {
	return filepath.Join(c.DataDir, StoreDBName)
}
