package params

import "time"

type TrackerConfig struct {
	// PermissionGranted is the static answer to location permission requests.
	PermissionGranted bool

	// ReplayPath, when set, replays fixes from an NDJSON file
	// instead of reading them from the live feed.
	ReplayPath string
	// ReplayPace overrides the sample interval between replayed fixes.
	ReplayPace time.Duration
}

func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		PermissionGranted: true,
	}
}
