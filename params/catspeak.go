package params

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/mitchellh/go-homedir"
)

func init() {
	metrics.Enabled = true
}

const (
	StoreDBName = "catspeak.db"
	ConfigName  = "config"
	EnvPrefix   = "CATSPEAK"
)

var DefaultDatadirRoot = "~/.catspeak"

// DatadirRoot is the expanded default data directory.
var DatadirRoot = func() string {
	p, err := homedir.Expand(DefaultDatadirRoot)
	if err != nil {
		return filepath.Join(os.TempDir(), ".catspeak")
	}
	return p
}()

// SettingsKey names the persisted settings record.
var SettingsKey = "app_settings_v1"

var SettingsBucket = []byte("settings")

var (
	// CacheRecentAlertsTTL bounds how long an alert stays in the replay
	// cache offered to newly connected websocket clients.
	CacheRecentAlertsTTL = 10 * time.Minute
	CacheRecentAlertsCap = uint64(32)
)

var MetricsLogInterval = 1 * time.Minute

// ExpandDatadir resolves a leading ~ in the data directory path.
func ExpandDatadir(p string) (string, error) {
	if p == "" {
		return DatadirRoot, nil
	}
	return homedir.Expand(p)
}
